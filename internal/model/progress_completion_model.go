// FILE: internal/model/progress_completion_model.go
// GORM model for the progress_completions table, written by the content service
package model

import (
	"time"

	"github.com/google/uuid"
)

// ProgressCompletion is one completed navigation item of a learner.
// StepNumber is 0 for instructions and finished rows.
type ProgressCompletion struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         string    `gorm:"type:varchar(128);index;not null"`
	AppName        string    `gorm:"type:varchar(255)"`
	ExerciseNumber int       `gorm:"not null"`
	StepNumber     int       `gorm:"default:0"`
	Type           string    `gorm:"type:varchar(20);not null"` // instructions, step, finished
	CompletedAt    time.Time `gorm:"autoCreateTime"`
}

func (ProgressCompletion) TableName() string {
	return "progress_completions"
}
