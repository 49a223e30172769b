// FILE: internal/entity/progress_entity.go
// Domain entity for recorded progress
package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProgressCompletion marks one exercise item as done for a user
type ProgressCompletion struct {
	Id             uuid.UUID
	UserId         string
	AppName        string // problem/solution app, empty for instructions and finished
	ExerciseNumber int
	StepNumber     int
	Type           string
	CompletedAt    time.Time
}
