package model

// Learner is the identity of a workshop user as seen by other learners.
// It is immutable once observed; a new observation replaces it wholesale.
type Learner struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// ExerciseLocation points into the workshop's exercise/step coordinate space.
// StepNumber 0 means the exercise intro.
type ExerciseLocation struct {
	ExerciseNumber int    `json:"exerciseNumber"`
	StepNumber     int    `json:"stepNumber,omitempty"`
	Type           string `json:"type,omitempty"`
}

// Location is where a learner currently is. Origin is the referring
// context (a deployed site or a local workshop app).
type Location struct {
	Exercise      *ExerciseLocation `json:"exercise,omitempty"`
	Origin        string            `json:"origin,omitempty"`
	WorkshopTitle string            `json:"workshopTitle,omitempty"`
}

// SameStep reports whether both locations sit on the same exercise and step.
func (l *Location) SameStep(other *Location) bool {
	if l == nil || other == nil || l.Exercise == nil || other.Exercise == nil {
		return false
	}
	return l.Exercise.ExerciseNumber == other.Exercise.ExerciseNumber &&
		l.Exercise.StepNumber == other.Exercise.StepNumber
}

// CurrentUser is the optional logged-in user of the request.
type CurrentUser struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// DisplayName falls back to the email like the account link does.
func (u *CurrentUser) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
