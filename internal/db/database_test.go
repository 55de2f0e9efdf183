package db

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/teamchat/internal/models"
)

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}

// Runs against a real postgres when TEAMCHAT_TEST_DATABASE_URL is set.
func TestPostgres_MigrateAndTranslateErrors(t *testing.T) {
	dsn := os.Getenv("TEAMCHAT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEAMCHAT_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	gdb, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, Migrate(gdb))
	require.NoError(t, Ping(ctx, gdb))

	name := "it" + uuid.NewString()[:8]
	u := models.User{UUID: uuid.NewString(), Username: name, Email: name + "@example.com", PasswordHash: "x"}
	require.NoError(t, gdb.WithContext(ctx).Create(&u).Error)
	t.Cleanup(func() { gdb.Delete(&models.User{}, u.ID) })

	dup := models.User{UUID: uuid.NewString(), Username: name, Email: "other-" + name + "@example.com", PasswordHash: "x"}
	err = gdb.WithContext(ctx).Create(&dup).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
