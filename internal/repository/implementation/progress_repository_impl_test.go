package implementation

import (
	"context"
	"log"
	"os"
	"testing"

	"workshop-app-be/internal/model"
	"workshop-app-be/internal/repository/specification"
	"workshop-app-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressRepository_Postgres(t *testing.T) {
	if err := godotenv.Load("../../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err)

	tx := gormDB.Begin()
	require.NoError(t, tx.Error)
	defer tx.Rollback()

	require.NoError(t, tx.AutoMigrate(&model.ProgressCompletion{}))

	userID := "integration-" + uuid.NewString()
	rows := []model.ProgressCompletion{
		{UserId: userID, AppName: "02.01.problem", ExerciseNumber: 2, StepNumber: 1, Type: "step"},
		{UserId: userID, ExerciseNumber: 1, Type: "instructions"},
		{UserId: userID, AppName: "01.01.problem", ExerciseNumber: 1, StepNumber: 1, Type: "step"},
		{UserId: "someone-else", ExerciseNumber: 1, Type: "instructions"},
	}
	require.NoError(t, tx.Create(&rows).Error)

	repo := NewProgressRepository(tx)
	ctx := context.Background()

	t.Run("ordered by exercise then step", func(t *testing.T) {
		got, err := repo.FindByUser(ctx, userID)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "instructions", got[0].Type)
		assert.Equal(t, "01.01.problem", got[1].AppName)
		assert.Equal(t, 2, got[2].ExerciseNumber)
	})

	t.Run("narrowed to one exercise", func(t *testing.T) {
		got, err := repo.FindByUser(ctx, userID, specification.ByExercise{ExerciseNumber: 2})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "02.01.problem", got[0].AppName)
	})

	t.Run("unknown learner", func(t *testing.T) {
		got, err := repo.FindByUser(ctx, "nobody-"+uuid.NewString())
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
