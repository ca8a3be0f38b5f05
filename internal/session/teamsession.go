// Package session runs the turn-based negotiation sessions (team draft, map
// ban) on top of a choice surface. Each session owns its surface wait loop;
// all draft state transitions go through the pure cores in internal/draft.
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

// DraftTimeout bounds a whole draft session. It is absolute from session
// start, not extended by activity.
const DraftTimeout = 600 * time.Second

var keycaps = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣", "🔟"}

func keycap(i int) string {
	if i < len(keycaps) {
		return keycaps[i]
	}
	return fmt.Sprintf("#%d", i+1)
}

// TeamResult is the outcome of a team draft. Incomplete means the session hit
// its deadline; Teams and Pool then hold the partial standings and must not be
// used as a roster.
type TeamResult struct {
	Teams      [2][]draft.Participant
	Pool       []draft.Participant
	Incomplete bool
}

func pickSignal(p draft.Participant) surface.Signal {
	return surface.Signal("pick:" + p.ID)
}

// RunTeamDraft drives a captain draft to completion over the surface.
// captains may be empty (volunteer bootstrap) or hold the two pre-selected
// captains in team order. A deadline yields an Incomplete result; ctx
// cancellation returns its error and the outcome must be discarded.
func RunTeamDraft(ctx context.Context, surf *surface.Surface, players []draft.Participant, captains []draft.Participant, timeout time.Duration, log *zap.Logger) (TeamResult, error) {
	state := draft.NewTeamState(players)
	for i, c := range captains {
		state = state.SeatCaptain(i, c.ID)
	}
	// Seeding the captains may leave a single draftee; they are assigned
	// without waiting for a pick.
	_, state = draft.Settle(state)

	inDraft := make(map[string]bool, len(players))
	names := make(map[string]string, len(players))
	for _, p := range players {
		inDraft[p.ID] = true
		names[p.ID] = p.Name
	}

	for _, p := range state.Pool {
		surf.Offer(pickSignal(p))
	}
	surf.Render(teamView("Team draft has begun!", players, state))

	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for !state.Complete() {
		choice, err := surf.AwaitChoice(wctx, func(sig surface.Signal, participant string) bool {
			_, ok := strings.CutPrefix(string(sig), "pick:")
			return ok && inDraft[participant]
		})
		if err != nil {
			if errors.Is(err, surface.ErrChoiceTimeout) {
				log.Warn("team draft hit deadline", zap.Int("picks", state.Turn))
				return TeamResult{Teams: state.Teams, Pool: state.Pool, Incomplete: true}, nil
			}
			return TeamResult{}, err
		}

		pickeeID, _ := strings.CutPrefix(string(choice.Signal), "pick:")
		before := state
		events, next, perr := draft.ApplyPick(state, draft.Pick{Picker: choice.Participant, Pickee: pickeeID})
		state = next

		var title string
		if perr != nil {
			title = rejectionTitle(perr, names[choice.Participant])
		} else if draft.ContainsEvent(events, draft.EvtPlayerPicked) {
			title = fmt.Sprintf("**Team %s** picked %s", captainName(state, choice.Participant, names), names[pickeeID])
		} else {
			title = fmt.Sprintf("%s volunteered as captain", names[choice.Participant])
		}

		// Anyone who left the pool this turn can no longer be picked.
		for _, p := range before.Pool {
			if !state.InPool(p.ID) {
				surf.Revoke(pickSignal(p))
			}
		}

		if state.Complete() {
			log.Info("team draft complete",
				zap.Int("team1", len(state.Teams[0])), zap.Int("team2", len(state.Teams[1])))
			return TeamResult{Teams: state.Teams, Pool: state.Pool}, nil
		}
		surf.Render(teamView(title, players, state))
	}

	return TeamResult{Teams: state.Teams, Pool: state.Pool}, nil
}

func captainName(s draft.TeamState, pickerID string, names map[string]string) string {
	for _, team := range s.Teams {
		if len(team) > 0 && team[0].ID == pickerID {
			return team[0].Name
		}
	}
	return names[pickerID]
}

func rejectionTitle(err error, picker string) string {
	switch {
	case errors.Is(err, draft.ErrWrongTurn):
		return fmt.Sprintf("It is not %s's turn to pick", picker)
	case errors.Is(err, draft.ErrTeamFull):
		return fmt.Sprintf("Team %s is full", picker)
	case errors.Is(err, draft.ErrNotCaptain):
		return fmt.Sprintf("%s is not a team captain", picker)
	case errors.Is(err, draft.ErrNotInPool):
		return "That player is no longer available"
	default:
		return "That pick is not allowed"
	}
}

func teamView(title string, players []draft.Participant, s draft.TeamState) types.PanelView {
	v := types.PanelView{
		Title:  title,
		Footer: "Press any of the numbers below to pick the corresponding player",
	}

	var left strings.Builder
	var signals []types.SignalOption
	for i, p := range players {
		if s.InPool(p.ID) {
			fmt.Fprintf(&left, "%s  %s\n", keycap(i), p.Name)
			signals = append(signals, types.SignalOption{ID: string(pickSignal(p)), Label: keycap(i) + " " + p.Name})
		} else {
			fmt.Fprintf(&left, "✖️  ~~%s~~\n", p.Name)
		}
	}
	v.Fields = append(v.Fields, types.Field{Name: "__Players Left__", Value: left.String()})

	for _, team := range s.Teams {
		name := "__Team__"
		value := "_Empty_"
		if len(team) > 0 {
			name = fmt.Sprintf("__Team %s__", team[0].Name)
			var members []string
			for _, p := range team {
				members = append(members, p.Name)
			}
			value = strings.Join(members, "\n")
		}
		v.Fields = append(v.Fields, types.Field{Name: name, Value: value})
	}

	v.Signals = signals
	return v
}
