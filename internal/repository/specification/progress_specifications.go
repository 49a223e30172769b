package specification

import "gorm.io/gorm"

// ByUserID filters progress rows of one learner
type ByUserID struct {
	UserID string
}

func (s ByUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// ByExercise narrows progress rows to one exercise
type ByExercise struct {
	ExerciseNumber int
}

func (s ByExercise) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("exercise_number = ?", s.ExerciseNumber)
}
