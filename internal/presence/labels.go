package presence

import (
	"fmt"
	"strings"

	"workshop-app-be/internal/model"
)

// Labels holds the copy used around the face pile.
type Labels struct {
	Noun          string // singular, e.g. "Epic Web Dev"
	AnonymousName string
	LearningHost  string
}

func DefaultLabels() Labels {
	return Labels{
		Noun:          "Epic Web Dev",
		AnonymousName: "An EPIC Web Dev",
		LearningHost:  "epicweb.dev",
	}
}

// OverflowLabel describes learners hidden behind the cap. Expanded menus
// use the verbose form.
func (l Labels) OverflowLabel(overflow int, expanded bool) string {
	noun := l.Noun
	if overflow != 1 {
		noun += "s"
	}
	if expanded {
		return fmt.Sprintf("%d more %s working now", overflow, noun)
	}
	return fmt.Sprintf("%d %s working now", overflow, noun)
}

func OverflowBadge(overflow int, expanded bool) string {
	if expanded {
		return fmt.Sprintf("+%d", overflow)
	}
	return fmt.Sprintf("%d", overflow)
}

type LocationLabel struct {
	Line1 string `json:"line1,omitempty"`
	Line2 string `json:"line2,omitempty"`
}

// LocationLabelFor renders "01/02 - problem" style coordinates under the
// workshop title. nil when there is nothing to show.
func LocationLabelFor(loc *model.Location) *LocationLabel {
	if loc == nil {
		return nil
	}
	label := &LocationLabel{Line1: loc.WorkshopTitle}
	if ex := loc.Exercise; ex != nil {
		var parts []string
		for _, n := range []int{ex.ExerciseNumber, ex.StepNumber} {
			if n > 0 {
				parts = append(parts, fmt.Sprintf("%02d", n))
			}
		}
		label.Line2 = strings.Join(parts, "/")
		if ex.Type != "" {
			if label.Line2 != "" {
				label.Line2 += " - "
			}
			label.Line2 += ex.Type
		}
	}
	if label.Line1 == "" && label.Line2 == "" {
		return nil
	}
	return label
}

// Tooltip is the headline shown over an avatar, e.g. "Kody is working with you on".
func (l Labels) Tooltip(r Record, currentUserID string) string {
	name := r.Learner.Name
	if name == "" {
		name = l.AnonymousName
	}
	if LocationLabelFor(r.Location) == nil {
		return name
	}
	verb := "working"
	if l.LearningHost != "" && strings.Contains(r.Location.Origin, l.LearningHost) {
		verb = "learning"
	}
	if r.Score == 1 && r.Learner.ID != currentUserID {
		return fmt.Sprintf("%s is %s with you on", name, verb)
	}
	return fmt.Sprintf("%s is %s on", name, verb)
}
