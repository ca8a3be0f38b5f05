package store

import (
	"context"
	"sync"
)

// Memory is an in-process ConfigStore used when no database is configured,
// and in tests.
type Memory struct {
	mu      sync.Mutex
	configs map[string]ArenaConfig
}

func NewMemory() *Memory {
	return &Memory{configs: make(map[string]ArenaConfig)}
}

func (s *Memory) GetArenaConfig(_ context.Context, arenaID string) (ArenaConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg, ok := s.configs[arenaID]; ok {
		return cfg, nil
	}
	return defaultConfig(arenaID), nil
}

func (s *Memory) SetArenaConfig(ctx context.Context, arenaID string, patch ConfigPatch) (ArenaConfig, error) {
	cfg, err := s.GetArenaConfig(ctx, arenaID)
	if err != nil {
		return ArenaConfig{}, err
	}
	cfg, err = applyPatch(cfg, patch)
	if err != nil {
		return ArenaConfig{}, err
	}
	s.mu.Lock()
	s.configs[arenaID] = cfg
	s.mu.Unlock()
	return cfg, nil
}
