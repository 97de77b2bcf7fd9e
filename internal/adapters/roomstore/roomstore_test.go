package roomstore

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dkeye/whowasi/internal/core"
	"github.com/dkeye/whowasi/internal/domain"
)

func newSQLiteStore(t *testing.T) *Gorm {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every new connection would get its own empty in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := NewGorm(db)
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func stores(t *testing.T) map[string]core.RoomStore {
	return map[string]core.RoomStore{
		"memory": NewMemory(),
		"gorm":   newSQLiteStore(t),
	}
}

func TestStore_InsertAssignsIdentity(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			room := &domain.Room{Code: "A1B2C3", Name: "Study", PasswordHash: "$argon2id$x"}

			require.NoError(t, store.Insert(ctx, room))
			assert.NotEmpty(t, room.ID)
			assert.False(t, room.CreatedAt.IsZero())

			got, err := store.FindByCode(ctx, "A1B2C3")
			require.NoError(t, err)
			assert.Equal(t, room.ID, got.ID)
			assert.Equal(t, "Study", got.Name)
			assert.Equal(t, "$argon2id$x", got.PasswordHash)
			assert.Nil(t, got.ExpiresAt)
		})
	}
}

func TestStore_ExpiresAtRoundTrips(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			exp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			require.NoError(t, store.Insert(ctx, &domain.Room{Code: "EXP001", Name: "x", ExpiresAt: &exp}))

			got, err := store.FindByCode(ctx, "EXP001")
			require.NoError(t, err)
			require.NotNil(t, got.ExpiresAt)
			assert.True(t, exp.Equal(*got.ExpiresAt))
		})
	}
}

func TestStore_FindByCodeMissing(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.FindByCode(context.Background(), "ZZZZZZ")
			assert.ErrorIs(t, err, core.ErrNoSuchRoom)
		})
	}
}

func TestStore_DuplicateCode(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Insert(ctx, &domain.Room{Code: "DUP123", Name: "first"}))

			err := store.Insert(ctx, &domain.Room{Code: "DUP123", Name: "second"})
			assert.ErrorIs(t, err, core.ErrDuplicateCode)

			got, err := store.FindByCode(ctx, "DUP123")
			require.NoError(t, err)
			assert.Equal(t, "first", got.Name)
		})
	}
}

func TestStore_Ping(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, store.Ping(context.Background()))
		})
	}
}
