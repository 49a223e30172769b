// FILE: internal/repository/contract/progress_repository.go
// Read side of the external progress store
package contract

import (
	"context"

	"workshop-app-be/internal/entity"
	"workshop-app-be/internal/repository/specification"
)

type ProgressRepository interface {
	FindByUser(ctx context.Context, userID string, specs ...specification.Specification) ([]*entity.ProgressCompletion, error)
}
