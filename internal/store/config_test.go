package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Diblo/csgo-league-bot/internal/former"
)

func strptr(s string) *string { return &s }

func TestMemory_Defaults(t *testing.T) {
	s := NewMemory()

	cfg, err := s.GetArenaConfig(context.Background(), "arena-1")
	require.NoError(t, err)

	assert.Equal(t, "arena-1", cfg.ArenaID)
	assert.Equal(t, former.TeamCaptains, cfg.TeamMethod)
	assert.Equal(t, former.CaptainVolunteer, cfg.CaptainMethod)
	assert.Equal(t, former.MapRandom, cfg.MapMethod)
	assert.Len(t, cfg.ActiveMaps(), 9)
}

func TestMemory_PatchPersistsPerArena(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	_, err := s.SetArenaConfig(ctx, "arena-1", ConfigPatch{
		TeamMethod: strptr(former.TeamAutobalance),
		MapMethod:  strptr(former.MapCaptains),
		RemoveMaps: []string{"de_cache", "de_cbble"},
	})
	require.NoError(t, err)

	cfg, err := s.GetArenaConfig(ctx, "arena-1")
	require.NoError(t, err)
	assert.Equal(t, former.TeamAutobalance, cfg.TeamMethod)
	assert.Equal(t, former.MapCaptains, cfg.MapMethod)
	assert.Len(t, cfg.MapPool, 7)
	assert.NotContains(t, cfg.MapPool, "de_cache")

	// Other arenas keep their defaults.
	other, err := s.GetArenaConfig(ctx, "arena-2")
	require.NoError(t, err)
	assert.Equal(t, former.TeamCaptains, other.TeamMethod)
	assert.Len(t, other.MapPool, 9)
}

func TestApplyPatch_Validation(t *testing.T) {
	cases := []struct {
		name    string
		patch   ConfigPatch
		wantErr error
	}{
		{
			name:    "unknown team method",
			patch:   ConfigPatch{TeamMethod: strptr("elo")},
			wantErr: ErrInvalidMethod,
		},
		{
			name:    "unknown captain method",
			patch:   ConfigPatch{CaptainMethod: strptr("coinflip")},
			wantErr: ErrInvalidMethod,
		},
		{
			name:    "unknown map method",
			patch:   ConfigPatch{MapMethod: strptr("roulette")},
			wantErr: ErrInvalidMethod,
		},
		{
			name:    "adding a map outside the catalog",
			patch:   ConfigPatch{AddMaps: []string{"de_anubis"}},
			wantErr: ErrUnknownMap,
		},
		{
			name:    "removing a map outside the catalog",
			patch:   ConfigPatch{RemoveMaps: []string{"de_anubis"}},
			wantErr: ErrUnknownMap,
		},
		{
			name: "pool shrunk below the floor",
			patch: ConfigPatch{RemoveMaps: []string{
				"de_cache", "de_cbble", "de_dust2", "de_inferno",
				"de_mirage", "de_nuke", "de_overpass",
			}},
			wantErr: ErrPoolTooSmall,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewMemory()
			_, err := s.SetArenaConfig(context.Background(), "arena-1", tc.patch)
			assert.ErrorIs(t, err, tc.wantErr)

			// A rejected patch must not leak partial changes.
			cfg, gerr := s.GetArenaConfig(context.Background(), "arena-1")
			require.NoError(t, gerr)
			assert.Equal(t, defaultConfig("arena-1"), cfg)
		})
	}
}

func TestApplyPatch_AddIsIdempotentRemoveMissingIsNoop(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	_, err := s.SetArenaConfig(ctx, "arena-1", ConfigPatch{RemoveMaps: []string{"de_train"}})
	require.NoError(t, err)

	cfg, err := s.SetArenaConfig(ctx, "arena-1", ConfigPatch{
		AddMaps:    []string{"de_train", "de_train", "de_dust2"},
		RemoveMaps: []string{"de_cache", "de_cache"},
	})
	require.NoError(t, err)

	assert.Len(t, cfg.MapPool, 8)
	assert.Contains(t, cfg.MapPool, "de_train")
	assert.NotContains(t, cfg.MapPool, "de_cache")
}
