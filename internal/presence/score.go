package presence

import (
	"math"
	"strings"
	"time"

	"workshop-app-be/internal/model"
)

// ScorePolicy computes the relevance of another learner's last observation
// for the viewer at the given location. Results outside [0,1] are tolerated
// downstream but policies should stay inside it.
type ScorePolicy interface {
	Score(viewer *model.Location, ev Event, now time.Time) float64
}

const (
	PolicyDistance  = "distance"
	PolicyStaleness = "staleness"
)

// DistancePolicy scores 1 on an exact exercise+step match and decays
// linearly with the step and exercise delta otherwise.
type DistancePolicy struct {
	StepDecay     float64
	ExerciseDecay float64
	Floor         float64
}

func DefaultDistancePolicy() DistancePolicy {
	return DistancePolicy{StepDecay: 0.15, ExerciseDecay: 0.25, Floor: 0.1}
}

func (p DistancePolicy) Score(viewer *model.Location, ev Event, _ time.Time) float64 {
	if viewer == nil || ev.Location == nil || viewer.Exercise == nil || ev.Location.Exercise == nil {
		return p.Floor
	}
	// an unknown title on either side is not a mismatch
	if viewer.WorkshopTitle != "" && ev.Location.WorkshopTitle != "" &&
		!strings.EqualFold(viewer.WorkshopTitle, ev.Location.WorkshopTitle) {
		return p.Floor
	}
	if viewer.SameStep(ev.Location) {
		return 1
	}

	exerciseDelta := absInt(viewer.Exercise.ExerciseNumber - ev.Location.Exercise.ExerciseNumber)
	stepDelta := absInt(viewer.Exercise.StepNumber - ev.Location.Exercise.StepNumber)
	if exerciseDelta > 0 {
		// steps of different exercises are not comparable
		stepDelta = 0
	}
	score := 1 - p.ExerciseDecay*float64(exerciseDelta) - p.StepDecay*float64(stepDelta)
	return clamp(score, p.Floor, 1)
}

// StalenessPolicy halves the inner score every HalfLife since the event was
// observed. An exact match stays at 1 while the record is live.
type StalenessPolicy struct {
	Inner    ScorePolicy
	HalfLife time.Duration
	Floor    float64
}

func (p StalenessPolicy) Score(viewer *model.Location, ev Event, now time.Time) float64 {
	base := p.Inner.Score(viewer, ev, now)
	if base >= 1 || p.HalfLife <= 0 || ev.Timestamp.IsZero() {
		return base
	}
	age := now.Sub(ev.Timestamp)
	if age <= 0 {
		return base
	}
	decayed := base * math.Pow(0.5, float64(age)/float64(p.HalfLife))
	return clamp(decayed, p.Floor, 1)
}

// NewScorePolicy resolves a configured policy name. Unknown names fall back
// to the distance policy.
func NewScorePolicy(name string, halfLife time.Duration) ScorePolicy {
	distance := DefaultDistancePolicy()
	if strings.EqualFold(name, PolicyStaleness) {
		return StalenessPolicy{Inner: distance, HalfLife: halfLife, Floor: distance.Floor}
	}
	return distance
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
