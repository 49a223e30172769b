// FILE: internal/repository/implementation/progress_repository_impl.go
// Implementation of ProgressRepository over the content service's postgres tables
package implementation

import (
	"context"

	"workshop-app-be/internal/entity"
	"workshop-app-be/internal/mapper"
	"workshop-app-be/internal/model"
	"workshop-app-be/internal/repository/contract"
	"workshop-app-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ProgressRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProgressMapper
}

func NewProgressRepository(db *gorm.DB) contract.ProgressRepository {
	return &ProgressRepositoryImpl{
		db:     db,
		mapper: mapper.NewProgressMapper(),
	}
}

func (r *ProgressRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ProgressRepositoryImpl) FindByUser(ctx context.Context, userID string, specs ...specification.Specification) ([]*entity.ProgressCompletion, error) {
	var rows []model.ProgressCompletion
	specs = append([]specification.Specification{specification.ByUserID{UserID: userID}}, specs...)
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ProgressCompletion{}), specs...)
	if err := query.Order("exercise_number ASC, step_number ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	completions := make([]*entity.ProgressCompletion, 0, len(rows))
	for i := range rows {
		completions = append(completions, r.mapper.ToEntity(&rows[i]))
	}
	return completions, nil
}
