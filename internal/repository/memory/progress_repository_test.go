package memory

import (
	"context"
	"testing"

	"workshop-app-be/internal/entity"
	"workshop-app-be/internal/repository/specification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressRepository_SaveAndFind(t *testing.T) {
	repo := NewProgressRepository()
	ctx := context.Background()

	repo.Save("u1", &entity.ProgressCompletion{ExerciseNumber: 1, Type: "instructions"})
	repo.Save("u1", &entity.ProgressCompletion{ExerciseNumber: 1, StepNumber: 1, Type: "step", AppName: "01.01.problem"})
	repo.Save("u1", &entity.ProgressCompletion{ExerciseNumber: 1, StepNumber: 1, Type: "step"})
	repo.Save("u1", &entity.ProgressCompletion{ExerciseNumber: 2, Type: "instructions"})
	repo.Save("u2", &entity.ProgressCompletion{ExerciseNumber: 3, Type: "finished"})

	all, err := repo.FindByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for _, c := range all {
		assert.Equal(t, "u1", c.UserId)
		assert.False(t, c.CompletedAt.IsZero())
	}

	first, err := repo.FindByUser(ctx, "u1", specification.ByExercise{ExerciseNumber: 1})
	require.NoError(t, err)
	assert.Len(t, first, 2)

	none, err := repo.FindByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)

	repo.Delete("u2")
	gone, _ := repo.FindByUser(ctx, "u2")
	assert.Empty(t, gone)
}

func TestProgressRepository_ReturnsCopies(t *testing.T) {
	repo := NewProgressRepository()
	repo.Save("u1", &entity.ProgressCompletion{ExerciseNumber: 1, Type: "instructions"})

	got, _ := repo.FindByUser(context.Background(), "u1")
	got[0].ExerciseNumber = 99

	again, _ := repo.FindByUser(context.Background(), "u1")
	assert.Equal(t, 1, again[0].ExerciseNumber)
}

func TestProgressRepository_HonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewProgressRepository().FindByUser(ctx, "u1")
	assert.ErrorIs(t, err, context.Canceled)
}
