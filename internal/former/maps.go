package former

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/Diblo/csgo-league-bot/internal/draft"
	"github.com/Diblo/csgo-league-bot/internal/session"
	"github.com/Diblo/csgo-league-bot/internal/surface"
)

var ErrEmptyMapPool = errors.New("map pool is empty")

// Map method names, as stored in arena configuration.
const (
	MapCaptains = "captains"
	MapVote     = "vote"
	MapRandom   = "random"
)

// MapFormer picks one of the map-selection policies per arena config.
type MapFormer struct {
	DraftTimeout time.Duration
	Log          *zap.Logger
}

// Form selects the match map using the arena's configured method. The surface
// and captains are only used by the captains method.
func (f *MapFormer) Form(ctx context.Context, method string, pool []draft.GameMap, captain1, captain2 draft.Participant, surf *surface.Surface) (session.MapResult, error) {
	switch method {
	case MapCaptains:
		return session.RunMapDraft(ctx, surf, captain1, captain2, pool, f.DraftTimeout, f.Log)
	case MapVote:
		// TODO: build a real voting menu over 2-3 maps; until then vote
		// behaves exactly like random.
		fallthrough
	case MapRandom:
		m, err := RandomMap(pool)
		return session.MapResult{Map: m}, err
	default:
		return session.MapResult{}, fmt.Errorf("%w: %q", ErrUnknownMapMethod, method)
	}
}

// RandomMap draws uniformly from the active pool. The pool size floor (>= 3)
// is enforced by configuration, not here.
func RandomMap(pool []draft.GameMap) (draft.GameMap, error) {
	if len(pool) == 0 {
		return draft.GameMap{}, ErrEmptyMapPool
	}
	return pool[rand.IntN(len(pool))], nil
}
