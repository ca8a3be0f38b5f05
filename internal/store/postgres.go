package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Postgres is the gorm-backed ConfigStore. Unknown arenas read as defaults
// and are created on first write.
type Postgres struct {
	db *gorm.DB
}

func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening config database: %w", err)
	}
	if err := db.AutoMigrate(&ArenaConfig{}); err != nil {
		return nil, fmt.Errorf("migrating config schema: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (s *Postgres) GetArenaConfig(ctx context.Context, arenaID string) (ArenaConfig, error) {
	var cfg ArenaConfig
	err := s.db.WithContext(ctx).First(&cfg, "arena_id = ?", arenaID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return defaultConfig(arenaID), nil
	}
	if err != nil {
		return ArenaConfig{}, fmt.Errorf("loading arena config: %w", err)
	}
	return cfg, nil
}

func (s *Postgres) SetArenaConfig(ctx context.Context, arenaID string, patch ConfigPatch) (ArenaConfig, error) {
	cfg, err := s.GetArenaConfig(ctx, arenaID)
	if err != nil {
		return ArenaConfig{}, err
	}
	cfg, err = applyPatch(cfg, patch)
	if err != nil {
		return ArenaConfig{}, err
	}
	if err := s.db.WithContext(ctx).Save(&cfg).Error; err != nil {
		return ArenaConfig{}, fmt.Errorf("saving arena config: %w", err)
	}
	return cfg, nil
}
