package database

import (
	"testing"
	"time"

	"gym/internal/config"
	"gym/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrateSQLite(t *testing.T) {
	db, err := Open(config.DBConfig{Driver: "sqlite", DSN: MemoryDSN(t.Name()), ConnMaxLifetime: time.Minute})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, table := range []interface{}{&models.User{}, &models.Trainee{}, &models.Trainer{}, &models.TraineeTrainer{}, &models.Training{}, &models.TrainingType{}, &models.Session{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}

	// migrating twice is harmless
	assert.NoError(t, Migrate(db))
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(config.DBConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestMemoryDSN(t *testing.T) {
	assert.Equal(t, "file:TestX_sub_case?mode=memory&cache=shared&_cslike=true&_fk=1", MemoryDSN("TestX/sub case"))
}
