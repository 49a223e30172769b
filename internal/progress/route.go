package progress

import (
	"fmt"
	"strconv"
	"strings"
)

// Selection is derived from the current route parameters and never stored.
// Zero numbers mean "not set".
type Selection struct {
	ExerciseNumber int    `json:"exerciseNumber,omitempty"`
	StepNumber     int    `json:"stepNumber,omitempty"`
	Type           string `json:"type,omitempty"`
	Finished       bool   `json:"finished,omitempty"`
}

// ParseSelection reads raw route params. A step param of "finished" selects
// the exercise's elaboration page.
func ParseSelection(exercise, step, typ string) Selection {
	var sel Selection
	if n, err := strconv.Atoi(strings.TrimSpace(exercise)); err == nil && n > 0 {
		sel.ExerciseNumber = n
	}
	step = strings.TrimSpace(step)
	if step == string(TypeFinished) {
		sel.Finished = sel.ExerciseNumber > 0
	} else if n, err := strconv.Atoi(step); err == nil && n > 0 && sel.ExerciseNumber > 0 {
		sel.StepNumber = n
	}
	if sel.StepNumber > 0 {
		sel.Type = strings.TrimSpace(typ)
	}
	return sel
}

// item returns the navigation item this selection points at.
func (s Selection) item() (Item, bool) {
	switch {
	case s.ExerciseNumber == 0:
		return Item{}, false
	case s.Finished:
		return Item{ExerciseNumber: s.ExerciseNumber, Type: TypeFinished}, true
	case s.StepNumber > 0:
		return Item{ExerciseNumber: s.ExerciseNumber, StepNumber: s.StepNumber, Type: TypeStep}, true
	default:
		return Item{ExerciseNumber: s.ExerciseNumber, Type: TypeInstructions}, true
	}
}

// Item is one progress-tracked navigation entry.
type Item struct {
	ExerciseNumber int
	StepNumber     int
	Type           ItemType
}

func (i Item) Route() Route {
	return Route{
		ExerciseNumber: i.ExerciseNumber,
		StepNumber:     i.StepNumber,
		Type:           i.Type,
		Path:           i.Path(),
	}
}

func (i Item) Path() string {
	switch i.Type {
	case TypeFinished:
		return fmt.Sprintf("/%02d/finished", i.ExerciseNumber)
	case TypeStep:
		return fmt.Sprintf("/%02d/%02d", i.ExerciseNumber, i.StepNumber)
	default:
		return fmt.Sprintf("/%02d", i.ExerciseNumber)
	}
}

type Route struct {
	ExerciseNumber int      `json:"exerciseNumber"`
	StepNumber     int      `json:"stepNumber,omitempty"`
	Type           ItemType `json:"type"`
	Path           string   `json:"path"`
}
