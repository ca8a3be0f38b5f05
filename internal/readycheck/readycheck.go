// Package readycheck runs the one-shot timed confirmation round that gates
// match formation.
package readycheck

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Diblo/csgo-league-bot/internal/draft"
	"github.com/Diblo/csgo-league-bot/internal/surface"
	"github.com/Diblo/csgo-league-bot/pkg/types"
)

// ReadySignal is the single affirmative control offered to every queued
// player.
const ReadySignal = surface.Signal("ready")

// Timeout is how long players get to confirm.
const Timeout = 60 * time.Second

// Result is the resolution of a ready check. AllReady means every player
// confirmed before the deadline; otherwise Missing holds whoever never did.
type Result struct {
	AllReady  bool
	Responded []draft.Participant
	Missing   []draft.Participant
}

// Run drives a ready check over the surface until everyone confirms or the
// deadline elapses. Cancellation of ctx (supersession, shutdown) returns the
// context error; the caller must discard the outcome.
func Run(ctx context.Context, surf *surface.Surface, players []draft.Participant, timeout time.Duration, log *zap.Logger) (Result, error) {
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	surf.Offer(ReadySignal)
	responded := make(map[string]bool, len(players))
	surf.Render(view(players, responded, timeout))

	inQueue := make(map[string]bool, len(players))
	for _, p := range players {
		inQueue[p.ID] = true
	}

	for {
		choice, err := surf.AwaitChoice(wctx, func(sig surface.Signal, participant string) bool {
			return sig == ReadySignal && inQueue[participant]
		})
		if err != nil {
			if errors.Is(err, surface.ErrChoiceTimeout) {
				return resolve(players, responded), nil
			}
			return Result{}, err
		}

		// Duplicate confirmations are idempotent: no state change, no
		// re-render.
		if responded[choice.Participant] {
			continue
		}
		responded[choice.Participant] = true
		log.Debug("player readied up", zap.String("participant", choice.Participant))

		if len(responded) == len(players) {
			return resolve(players, responded), nil
		}
		surf.Render(view(players, responded, timeout))
	}
}

func resolve(players []draft.Participant, responded map[string]bool) Result {
	res := Result{AllReady: len(responded) == len(players)}
	for _, p := range players {
		if responded[p.ID] {
			res.Responded = append(res.Responded, p)
		} else {
			res.Missing = append(res.Missing, p)
		}
	}
	return res
}

func view(players []draft.Participant, responded map[string]bool, timeout time.Duration) types.PanelView {
	var roster strings.Builder
	for _, p := range players {
		if responded[p.ID] {
			fmt.Fprintf(&roster, "✅  %s\n", p.Name)
		} else {
			fmt.Fprintf(&roster, "•  %s\n", p.Name)
		}
	}
	return types.PanelView{
		Title:       "Queue has filled up!",
		Description: fmt.Sprintf("Press ready below to ready up (%d min)", int(timeout.Minutes())),
		Fields:      []types.Field{{Name: "__Players__", Value: roster.String()}},
		Signals:     []types.SignalOption{{ID: string(ReadySignal), Label: "✅ Ready"}},
	}
}
