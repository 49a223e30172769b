package catalog

import (
	"context"
	"errors"
	"regexp"
	"strconv"
)

// UnknownTitle is shown for a step that has neither a problem nor a solution app.
const UnknownTitle = "Unknown"

var ErrCatalogUnavailable = errors.New("workshop catalog unavailable")

type AppType string

const (
	AppProblem  AppType = "problem"
	AppSolution AppType = "solution"
)

// App is a runnable problem or solution app. Name is stable and doubles as a progress key.
type App struct {
	Name       string  `json:"name" yaml:"name"`
	Title      string  `json:"title" yaml:"title"`
	StepNumber int     `json:"stepNumber" yaml:"-"`
	Type       AppType `json:"type" yaml:"-"`
}

type Step struct {
	Number   int  `json:"stepNumber" yaml:"number"`
	Problem  *App `json:"problem,omitempty" yaml:"problem"`
	Solution *App `json:"solution,omitempty" yaml:"solution"`
}

// Title prefers the problem app, then the solution app.
func (s Step) Title() string {
	if s.Problem != nil && s.Problem.Title != "" {
		return s.Problem.Title
	}
	if s.Solution != nil && s.Solution.Title != "" {
		return s.Solution.Title
	}
	return UnknownTitle
}

// Name prefers the problem app, then the solution app.
func (s Step) Name() string {
	if s.Problem != nil && s.Problem.Name != "" {
		return s.Problem.Name
	}
	if s.Solution != nil && s.Solution.Name != "" {
		return s.Solution.Name
	}
	return UnknownTitle
}

// HasApp reports whether name belongs to this step's problem or solution.
func (s Step) HasApp(name string) bool {
	if name == "" {
		return false
	}
	return (s.Problem != nil && s.Problem.Name == name) ||
		(s.Solution != nil && s.Solution.Name == name)
}

type Exercise struct {
	Number int    `json:"exerciseNumber" yaml:"number"`
	Title  string `json:"title" yaml:"title"`
	Steps  []Step `json:"steps" yaml:"steps"`
}

func (e Exercise) Step(number int) (Step, bool) {
	for _, s := range e.Steps {
		if s.Number == number {
			return s, true
		}
	}
	return Step{}, false
}

// App returns the problem or solution app of a step.
func (e Exercise) App(appType AppType, stepNumber int) *App {
	step, ok := e.Step(stepNumber)
	if !ok {
		return nil
	}
	switch appType {
	case AppProblem:
		return step.Problem
	case AppSolution:
		return step.Solution
	}
	return nil
}

func (e Exercise) HasApp(name string) bool {
	for _, s := range e.Steps {
		if s.HasApp(name) {
			return true
		}
	}
	return false
}

// FindExercise looks an exercise up by number.
func FindExercise(exercises []Exercise, number int) (Exercise, bool) {
	for _, e := range exercises {
		if e.Number == number {
			return e, true
		}
	}
	return Exercise{}, false
}

// Provider is the external workshop-content collaborator. Implementations
// own their caching; callers treat every result as a read-only snapshot.
type Provider interface {
	GetExercises(ctx context.Context) ([]Exercise, error)
	GetWorkshopTitle(ctx context.Context) (string, error)
	GetPlaygroundAppName(ctx context.Context) (string, error)
}

var appNamePattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(problem|solution)`)

// ParseAppName extracts numbers and type from names like "01.02.problem.forms".
func ParseAppName(name string) (exerciseNumber, stepNumber int, appType AppType, ok bool) {
	m := appNamePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, "", false
	}
	exerciseNumber, _ = strconv.Atoi(m[1])
	stepNumber, _ = strconv.Atoi(m[2])
	return exerciseNumber, stepNumber, AppType(m[3]), true
}

// normalize fills the app fields derived from their step.
func normalize(exercises []Exercise) []Exercise {
	for i := range exercises {
		for j := range exercises[i].Steps {
			step := &exercises[i].Steps[j]
			if step.Problem != nil {
				step.Problem.StepNumber = step.Number
				step.Problem.Type = AppProblem
			}
			if step.Solution != nil {
				step.Solution.StepNumber = step.Number
				step.Solution.Type = AppSolution
			}
		}
	}
	return exercises
}
