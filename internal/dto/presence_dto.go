// FILE: internal/dto/presence_dto.go
package dto

// Presence feed wire format. Every message is a full replacement of the
// learner's state, never a patch.

type PresenceUser struct {
	ID        string `json:"id" validate:"required,max=128"`
	Name      string `json:"name,omitempty" validate:"max=256"`
	AvatarURL string `json:"avatarUrl,omitempty" validate:"max=2048"`
}

type PresenceExercise struct {
	ExerciseNumber int    `json:"exerciseNumber" validate:"gte=0"`
	StepNumber     int    `json:"stepNumber,omitempty" validate:"gte=0"`
	Type           string `json:"type,omitempty" validate:"max=32"`
}

type PresenceLocation struct {
	Exercise      *PresenceExercise `json:"exercise,omitempty"`
	Origin        string            `json:"origin,omitempty" validate:"max=2048"`
	WorkshopTitle string            `json:"workshopTitle,omitempty" validate:"max=512"`
}

type PresenceEventMessage struct {
	Type     string            `json:"type,omitempty" validate:"omitempty,oneof=update leave"`
	User     *PresenceUser     `json:"user" validate:"required"`
	Location *PresenceLocation `json:"location,omitempty"`
	// Unix milliseconds
	Timestamp int64  `json:"timestamp,omitempty" validate:"gte=0"`
	Seq       uint64 `json:"seq,omitempty"`
}

type PresenceQuery struct {
	Expanded       bool   `query:"expanded"`
	ExerciseNumber string `query:"exerciseNumber"`
	StepNumber     string `query:"stepNumber"`
	Type           string `query:"type"`
}

type IngestResponse struct {
	Status string `json:"status"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Learners    int    `json:"learners"`
	Subscribers int    `json:"subscribers"`
	Sockets     int    `json:"sockets"`
}
