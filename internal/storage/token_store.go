package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("not found")

type TokenStore struct {
	db *gorm.DB
}

func NewTokenStore(db *gorm.DB) *TokenStore {
	return &TokenStore{db: db}
}

func (s *TokenStore) Get(ctx context.Context, chainID int64, address string) (*Token, error) {
	var t Token
	err := s.db.WithContext(ctx).
		Where("chain_id = ? AND address = ?", chainID, address).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token %s: %w", address, err)
	}

	return &t, nil
}

// Save inserts t or refreshes the stored metadata.
func (s *TokenStore) Save(ctx context.Context, t *Token) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(t).Error
	if err != nil {
		return fmt.Errorf("failed to save token %s: %w", t.Address, err)
	}

	return nil
}
