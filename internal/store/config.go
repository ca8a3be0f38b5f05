// Package store persists per-arena configuration: how teams are formed, how
// captains are chosen, how the map is selected, and which maps are in the
// active pool.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/Diblo/csgo-league-bot/internal/draft"
	"github.com/Diblo/csgo-league-bot/internal/former"
)

var ErrPoolTooSmall = errors.New("map pool cannot have fewer than 3 maps")
var ErrUnknownMap = errors.New("unknown map")
var ErrInvalidMethod = errors.New("invalid method")

// MinMapPool is the smallest active pool a captains draft can run on.
const MinMapPool = 3

type ArenaConfig struct {
	ArenaID       string   `gorm:"primaryKey" json:"arena_id"`
	TeamMethod    string   `json:"team_method"`
	CaptainMethod string   `json:"captain_method"`
	MapMethod     string   `json:"map_method"`
	MapPool       []string `gorm:"serializer:json" json:"map_pool"`
}

// ActiveMaps resolves the configured pool against the map catalog.
func (c ArenaConfig) ActiveMaps() []draft.GameMap {
	return draft.MapsByDevName(c.MapPool)
}

// ConfigPatch is a partial update to an arena's configuration. Nil method
// fields are left unchanged; AddMaps/RemoveMaps edit the active pool.
type ConfigPatch struct {
	TeamMethod    *string  `json:"team_method,omitempty"`
	CaptainMethod *string  `json:"captain_method,omitempty"`
	MapMethod     *string  `json:"map_method,omitempty"`
	AddMaps       []string `json:"add_maps,omitempty"`
	RemoveMaps    []string `json:"remove_maps,omitempty"`
}

type ConfigStore interface {
	GetArenaConfig(ctx context.Context, arenaID string) (ArenaConfig, error)
	SetArenaConfig(ctx context.Context, arenaID string, patch ConfigPatch) (ArenaConfig, error)
}

func defaultConfig(arenaID string) ArenaConfig {
	pool := make([]string, len(draft.Catalog))
	for i, m := range draft.Catalog {
		pool[i] = m.DevName
	}
	return ArenaConfig{
		ArenaID:       arenaID,
		TeamMethod:    former.TeamCaptains,
		CaptainMethod: former.CaptainVolunteer,
		MapMethod:     former.MapRandom,
		MapPool:       pool,
	}
}

// applyPatch validates and applies a patch to a config. Both store
// implementations share it so validation cannot drift.
func applyPatch(cfg ArenaConfig, patch ConfigPatch) (ArenaConfig, error) {
	if patch.TeamMethod != nil {
		if !slices.Contains([]string{former.TeamCaptains, former.TeamAutobalance, former.TeamRandom}, *patch.TeamMethod) {
			return cfg, fmt.Errorf("%w: team method %q", ErrInvalidMethod, *patch.TeamMethod)
		}
		cfg.TeamMethod = *patch.TeamMethod
	}
	if patch.CaptainMethod != nil {
		if !slices.Contains([]string{former.CaptainVolunteer, former.CaptainRank, former.CaptainRandom}, *patch.CaptainMethod) {
			return cfg, fmt.Errorf("%w: captain method %q", ErrInvalidMethod, *patch.CaptainMethod)
		}
		cfg.CaptainMethod = *patch.CaptainMethod
	}
	if patch.MapMethod != nil {
		if !slices.Contains([]string{former.MapCaptains, former.MapVote, former.MapRandom}, *patch.MapMethod) {
			return cfg, fmt.Errorf("%w: map method %q", ErrInvalidMethod, *patch.MapMethod)
		}
		cfg.MapMethod = *patch.MapMethod
	}

	pool := slices.Clone(cfg.MapPool)
	for _, devName := range patch.AddMaps {
		if _, ok := draft.MapByDevName(devName); !ok {
			return cfg, fmt.Errorf("%w: %q", ErrUnknownMap, devName)
		}
		if !slices.Contains(pool, devName) {
			pool = append(pool, devName)
		}
	}
	for _, devName := range patch.RemoveMaps {
		if _, ok := draft.MapByDevName(devName); !ok {
			return cfg, fmt.Errorf("%w: %q", ErrUnknownMap, devName)
		}
		if i := slices.Index(pool, devName); i >= 0 {
			pool = slices.Delete(pool, i, i+1)
		}
	}
	if len(pool) < MinMapPool {
		return cfg, ErrPoolTooSmall
	}
	cfg.MapPool = pool
	return cfg, nil
}
