package catalog

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
	"gopkg.in/yaml.v3"
)

// Workshop is a full catalog snapshot.
type Workshop struct {
	Title         string     `yaml:"title"`
	PlaygroundApp string     `yaml:"playground"`
	Exercises     []Exercise `yaml:"exercises"`
}

const workshopCacheKey = "workshop"

// FileProvider reads the workshop catalog from a YAML file and keeps the
// parsed snapshot for ttl.
type FileProvider struct {
	path  string
	cache *cache.Cache
}

func NewFileProvider(path string, ttl time.Duration) *FileProvider {
	return &FileProvider{
		path:  path,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (p *FileProvider) load() (*Workshop, error) {
	if x, found := p.cache.Get(workshopCacheKey); found {
		return x.(*Workshop), nil
	}

	raw, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	var w Workshop
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrCatalogUnavailable, p.path, err)
	}

	sort.SliceStable(w.Exercises, func(i, j int) bool { return w.Exercises[i].Number < w.Exercises[j].Number })
	for i := range w.Exercises {
		steps := w.Exercises[i].Steps
		sort.SliceStable(steps, func(a, b int) bool { return steps[a].Number < steps[b].Number })
	}
	w.Exercises = normalize(w.Exercises)

	p.cache.Set(workshopCacheKey, &w, cache.DefaultExpiration)
	return &w, nil
}

// Invalidate drops the cached snapshot so the next call re-reads the file.
func (p *FileProvider) Invalidate() {
	p.cache.Delete(workshopCacheKey)
}

func (p *FileProvider) GetExercises(ctx context.Context) ([]Exercise, error) {
	w, err := p.load()
	if err != nil {
		return nil, err
	}
	return w.Exercises, nil
}

func (p *FileProvider) GetWorkshopTitle(ctx context.Context) (string, error) {
	w, err := p.load()
	if err != nil {
		return "", err
	}
	return w.Title, nil
}

func (p *FileProvider) GetPlaygroundAppName(ctx context.Context) (string, error) {
	w, err := p.load()
	if err != nil {
		return "", err
	}
	return w.PlaygroundApp, nil
}

// StaticProvider serves a fixed in-memory workshop.
type StaticProvider struct {
	workshop Workshop
}

func NewStaticProvider(w Workshop) *StaticProvider {
	w.Exercises = normalize(w.Exercises)
	return &StaticProvider{workshop: w}
}

func (p *StaticProvider) GetExercises(ctx context.Context) ([]Exercise, error) {
	return p.workshop.Exercises, nil
}

func (p *StaticProvider) GetWorkshopTitle(ctx context.Context) (string, error) {
	return p.workshop.Title, nil
}

func (p *StaticProvider) GetPlaygroundAppName(ctx context.Context) (string, error) {
	return p.workshop.PlaygroundApp, nil
}
