// FILE: internal/mapper/progress_mapper.go
// Mapper for ProgressCompletion entity <-> model <-> progress record conversion
package mapper

import (
	"workshop-app-be/internal/entity"
	"workshop-app-be/internal/model"
	"workshop-app-be/internal/progress"
)

type ProgressMapper struct{}

func NewProgressMapper() *ProgressMapper {
	return &ProgressMapper{}
}

func (m *ProgressMapper) ToEntity(model *model.ProgressCompletion) *entity.ProgressCompletion {
	if model == nil {
		return nil
	}
	return &entity.ProgressCompletion{
		Id:             model.Id,
		UserId:         model.UserId,
		AppName:        model.AppName,
		ExerciseNumber: model.ExerciseNumber,
		StepNumber:     model.StepNumber,
		Type:           model.Type,
		CompletedAt:    model.CompletedAt,
	}
}

func (m *ProgressMapper) ToModel(entity *entity.ProgressCompletion) *model.ProgressCompletion {
	if entity == nil {
		return nil
	}
	return &model.ProgressCompletion{
		Id:             entity.Id,
		UserId:         entity.UserId,
		AppName:        entity.AppName,
		ExerciseNumber: entity.ExerciseNumber,
		StepNumber:     entity.StepNumber,
		Type:           entity.Type,
		CompletedAt:    entity.CompletedAt,
	}
}

// ToRecords converts completions into the oracle's input.
func (m *ProgressMapper) ToRecords(completions []*entity.ProgressCompletion) []progress.Record {
	records := make([]progress.Record, 0, len(completions))
	for _, c := range completions {
		if c == nil {
			continue
		}
		records = append(records, progress.Record{
			AppName:        c.AppName,
			ExerciseNumber: c.ExerciseNumber,
			StepNumber:     c.StepNumber,
			Type:           progress.ItemType(c.Type),
		})
	}
	return records
}
