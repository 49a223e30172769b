package presence

// Face is a presence record decorated for display.
type Face struct {
	Record
	Alt      string         `json:"alt"`
	Tooltip  string         `json:"tooltip"`
	Location *LocationLabel `json:"locationLabel,omitempty"`
	Classes  ScoreClasses   `json:"classes"`
}

type FacePile struct {
	Faces         []Face `json:"faces"`
	Total         int    `json:"total"`
	Overflow      int    `json:"overflow"`
	OverflowLabel string `json:"overflowLabel,omitempty"`
	OverflowBadge string `json:"overflowBadge,omitempty"`
	Expanded      bool   `json:"expanded"`
}

// BuildFacePile decorates a snapshot. It returns nil when nobody is present.
func (l Labels) BuildFacePile(view View, expanded bool, currentUserID string) *FacePile {
	if view.Total == 0 {
		return nil
	}
	pile := &FacePile{
		Faces:    make([]Face, 0, len(view.Records)),
		Total:    view.Total,
		Overflow: view.Overflow,
		Expanded: expanded,
	}
	for _, r := range view.Records {
		alt := r.Learner.Name
		if alt == "" {
			alt = l.Noun
		}
		face := Face{Record: r, Alt: alt, Classes: ClassesFor(r.Score)}
		if !r.Promotional {
			face.Tooltip = l.Tooltip(r, currentUserID)
			face.Location = LocationLabelFor(r.Location)
		}
		pile.Faces = append(pile.Faces, face)
	}
	if view.Overflow > 0 {
		pile.OverflowLabel = l.OverflowLabel(view.Overflow, expanded)
		pile.OverflowBadge = OverflowBadge(view.Overflow, expanded)
	}
	return pile
}
