package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("autoswap"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpg.Open(dsn))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Token{}))

	return db
}

func TestTokenStore(t *testing.T) {
	db := setupTestDB(t)
	store := NewTokenStore(db)
	ctx := context.Background()

	const addr = "0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984"

	_, err := store.Get(ctx, 1, addr)
	assert.ErrorIs(t, err, ErrNotFound)

	tok := &Token{
		ChainID:   1,
		Address:   addr,
		Symbol:    "UNI",
		Name:      "Uniswap",
		Decimals:  18,
		FetchedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.Save(ctx, tok))

	got, err := store.Get(ctx, 1, addr)
	require.NoError(t, err)
	assert.Equal(t, "UNI", got.Symbol)
	assert.Equal(t, uint8(18), got.Decimals)

	// same key on another chain is a different row
	_, err = store.Get(ctx, 5, addr)
	assert.ErrorIs(t, err, ErrNotFound)

	tok.Name = "Uniswap Token"
	require.NoError(t, store.Save(ctx, tok))

	got, err = store.Get(ctx, 1, addr)
	require.NoError(t, err)
	assert.Equal(t, "Uniswap Token", got.Name)
}
