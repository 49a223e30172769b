package progress

import "workshop-app-be/internal/catalog"

// ClassTag is the visual completion class of a navigation item.
// ClassNone means progress is unknown and nothing should be decorated.
type ClassTag string

const (
	ClassNone       ClassTag = ""
	ClassNotStarted ClassTag = "not-started"
	ClassInProgress ClassTag = "in-progress"
	ClassComplete   ClassTag = "complete"
)

// Oracle answers completion questions over one catalog and one progress snapshot.
// All methods are pure and safe for concurrent use.
type Oracle struct {
	exercises []catalog.Exercise
	state     *State
}

func NewOracle(exercises []catalog.Exercise, state *State) *Oracle {
	return &Oracle{exercises: exercises, state: state}
}

// Items lists an exercise's tracked entries: instructions, each step, finished.
func (o *Oracle) Items(exerciseNumber int) []Item {
	exercise, ok := catalog.FindExercise(o.exercises, exerciseNumber)
	if !ok {
		return nil
	}
	return itemsOf(exercise)
}

func itemsOf(exercise catalog.Exercise) []Item {
	items := make([]Item, 0, len(exercise.Steps)+2)
	items = append(items, Item{ExerciseNumber: exercise.Number, Type: TypeInstructions})
	for _, step := range exercise.Steps {
		items = append(items, Item{ExerciseNumber: exercise.Number, StepNumber: step.Number, Type: TypeStep})
	}
	items = append(items, Item{ExerciseNumber: exercise.Number, Type: TypeFinished})
	return items
}

func (o *Oracle) allItems() []Item {
	var items []Item
	for _, e := range o.exercises {
		items = append(items, itemsOf(e)...)
	}
	return items
}

func (o *Oracle) ClassForStep(exerciseNumber, stepNumber int, typ ItemType) ClassTag {
	if o.state == nil {
		return ClassNone
	}
	if o.state.IsComplete(exerciseNumber, stepNumber, typ) {
		return ClassComplete
	}
	return ClassNotStarted
}

// ClassForExercise is complete when every item of the exercise is complete,
// in progress when some are, not started otherwise.
func (o *Oracle) ClassForExercise(exerciseNumber int) ClassTag {
	if o.state == nil {
		return ClassNone
	}
	items := o.Items(exerciseNumber)
	if len(items) == 0 {
		return ClassNone
	}
	done := 0
	for _, it := range items {
		if o.state.IsComplete(it.ExerciseNumber, it.StepNumber, it.Type) {
			done++
		}
	}
	switch {
	case done == len(items):
		return ClassComplete
	case done > 0:
		return ClassInProgress
	default:
		return ClassNotStarted
	}
}

// NextIncompleteRoute scans in catalog order starting just after the
// selection, wrapping around once, and returns the first incomplete item.
// The selected item itself is never returned. Nil means nothing is left.
func (o *Oracle) NextIncompleteRoute(sel Selection) *Route {
	if o.state == nil {
		return nil
	}
	items := o.allItems()
	n := len(items)
	if n == 0 {
		return nil
	}

	current := -1
	if it, ok := sel.item(); ok {
		for i, candidate := range items {
			if candidate == it {
				current = i
				break
			}
		}
	}

	for k := 1; k <= n; k++ {
		i := (current + k + n) % n
		if i == current {
			continue
		}
		it := items[i]
		if !o.state.IsComplete(it.ExerciseNumber, it.StepNumber, it.Type) {
			r := it.Route()
			return &r
		}
	}
	return nil
}

// IsPlaygroundIn reports whether the playground app belongs to one of the exercise's steps.
func (o *Oracle) IsPlaygroundIn(exerciseNumber int, playgroundAppName string) bool {
	if playgroundAppName == "" {
		return false
	}
	exercise, ok := catalog.FindExercise(o.exercises, exerciseNumber)
	if !ok {
		return false
	}
	return exercise.HasApp(playgroundAppName)
}

func (o *Oracle) IsPlaygroundStep(exerciseNumber, stepNumber int, playgroundAppName string) bool {
	exercise, ok := catalog.FindExercise(o.exercises, exerciseNumber)
	if !ok {
		return false
	}
	step, ok := exercise.Step(stepNumber)
	return ok && step.HasApp(playgroundAppName)
}

// PlaygroundExercise finds the exercise owning the playground app, falling
// back to the number encoded in the app name.
func (o *Oracle) PlaygroundExercise(playgroundAppName string) (int, bool) {
	if playgroundAppName == "" {
		return 0, false
	}
	for _, e := range o.exercises {
		if e.HasApp(playgroundAppName) {
			return e.Number, true
		}
	}
	if n, _, _, ok := catalog.ParseAppName(playgroundAppName); ok {
		return n, true
	}
	return 0, false
}
