package session

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

// MapResult is the outcome of a map ban. Incomplete means the session hit its
// deadline before a single map survived; Left then holds the maps still alive.
type MapResult struct {
	Map        draft.GameMap
	Left       []draft.GameMap
	Incomplete bool
}

func banSignal(m draft.GameMap) surface.Signal {
	return surface.Signal("ban:" + m.DevName)
}

// RunMapDraft drives a captain map ban to completion over the surface. A
// deadline yields an Incomplete result; ctx cancellation returns its error
// and the outcome must be discarded.
func RunMapDraft(ctx context.Context, surf *surface.Surface, captain1, captain2 draft.Participant, pool []draft.GameMap, timeout time.Duration, log *zap.Logger) (MapResult, error) {
	state := draft.NewMapState(captain1, captain2, pool)

	isCaptain := map[string]bool{captain1.ID: true, captain2.ID: true}

	for _, m := range state.Left {
		surf.Offer(banSignal(m))
	}
	surf.Render(mapView("Map bans have begun!", state))

	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		choice, err := surf.AwaitChoice(wctx, func(sig surface.Signal, participant string) bool {
			_, ok := strings.CutPrefix(string(sig), "ban:")
			return ok && isCaptain[participant]
		})
		if err != nil {
			if errors.Is(err, surface.ErrChoiceTimeout) {
				log.Warn("map draft hit deadline", zap.Int("bans", state.Turn))
				return MapResult{Left: state.Left, Incomplete: true}, nil
			}
			return MapResult{}, err
		}

		devName, _ := strings.CutPrefix(string(choice.Signal), "ban:")
		banner := state.ActiveBanner()
		events, next, berr := draft.ApplyBan(state, draft.Ban{Banner: choice.Participant, DevName: devName})
		state = next

		if berr != nil {
			// Same policy as the team draft: an invalid ban is a no-op but
			// the reason is surfaced.
			surf.Render(mapView(banRejectionTitle(berr, state), state))
			continue
		}

		var bannedName string
		for _, ev := range events {
			if ev.Type == draft.EvtMapBanned {
				bannedName = ev.Map.Name
			}
		}
		surf.Revoke(surface.Signal("ban:" + devName))

		if decided, ok := state.Decided(); ok {
			log.Info("map draft complete", zap.String("map", decided.DevName))
			return MapResult{Map: decided, Left: state.Left}, nil
		}
		surf.Render(mapView(fmt.Sprintf("**%s** banned %s", banner.Name, bannedName), state))
	}
}

func banRejectionTitle(err error, s draft.MapState) string {
	switch {
	case errors.Is(err, draft.ErrWrongTurn):
		return fmt.Sprintf("It is %s's turn to ban", s.ActiveBanner().Name)
	case errors.Is(err, draft.ErrMapUnavailable):
		return "That map has already been banned"
	default:
		return "That ban is not allowed"
	}
}

func mapView(title string, s draft.MapState) types.PanelView {
	var maps strings.Builder
	var signals []types.SignalOption
	for _, m := range s.Pool {
		if s.Available(m.DevName) {
			fmt.Fprintf(&maps, "%s  %s\n", m.Emoji, m.Name)
			signals = append(signals, types.SignalOption{ID: string(banSignal(m)), Label: m.Emoji + " " + m.Name})
		} else {
			fmt.Fprintf(&maps, "✖️  ~~%s~~\n", m.Name)
		}
	}

	info := fmt.Sprintf("**Captain 1:** %s\n**Captain 2:** %s\n**Current Choice:** %s",
		s.Captains[0].Name, s.Captains[1].Name, s.ActiveBanner().Name)

	return types.PanelView{
		Title:   title,
		Footer:  "Press any of the map icons below to ban the corresponding map",
		Fields:  []types.Field{{Name: "__Maps Left__", Value: maps.String()}, {Name: "__Info__", Value: info}},
		Signals: signals,
	}
}
