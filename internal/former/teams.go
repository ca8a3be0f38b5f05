// Package former dispatches the configured team-formation and map-selection
// policies, delegating to a draft session when the policy calls for one.
package former

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Diblo/csgo-league-bot/internal/draft"
	"github.com/Diblo/csgo-league-bot/internal/session"
	"github.com/Diblo/csgo-league-bot/internal/surface"
)

var ErrOddPlayerCount = errors.New("cannot randomly split an odd number of players")
var ErrUnknownTeamMethod = errors.New("unknown team method")
var ErrUnknownCaptainMethod = errors.New("unknown captain method")
var ErrUnknownMapMethod = errors.New("unknown map method")

// Team method names, as stored in arena configuration.
const (
	TeamCaptains    = "captains"
	TeamAutobalance = "autobalance"
	TeamRandom      = "random"
)

// Captain method names.
const (
	CaptainVolunteer = "volunteer"
	CaptainRank      = "rank"
	CaptainRandom    = "random"
)

// Scorer fetches the numeric score per participant from the league API.
type Scorer interface {
	GetScores(ctx context.Context, ids []string) (map[string]float64, error)
}

// TeamFormer picks one of the team-formation policies per arena config.
type TeamFormer struct {
	Scorer       Scorer
	DraftTimeout time.Duration
	Log          *zap.Logger
}

// Form builds the two teams using the arena's configured method. The surface
// is only used by the captains method.
func (f *TeamFormer) Form(ctx context.Context, method, captainMethod string, players []draft.Participant, surf *surface.Surface) (session.TeamResult, error) {
	switch method {
	case TeamRandom:
		teams, err := RandomTeams(players)
		return session.TeamResult{Teams: teams}, err
	case TeamAutobalance:
		teams, err := BalancedTeams(ctx, players, f.Scorer)
		return session.TeamResult{Teams: teams}, err
	case TeamCaptains:
		captains, err := f.pickCaptains(ctx, captainMethod, players)
		if err != nil {
			return session.TeamResult{}, err
		}
		return session.RunTeamDraft(ctx, surf, players, captains, f.DraftTimeout, f.Log)
	default:
		return session.TeamResult{}, fmt.Errorf("%w: %q", ErrUnknownTeamMethod, method)
	}
}

func (f *TeamFormer) pickCaptains(ctx context.Context, method string, players []draft.Participant) ([]draft.Participant, error) {
	switch method {
	case CaptainVolunteer:
		// The first two players to self-select through the picking protocol
		// become captains.
		return nil, nil
	case CaptainRank:
		ranked, err := sortByScore(ctx, players, f.Scorer)
		if err != nil {
			return nil, err
		}
		return ranked[:2], nil
	case CaptainRandom:
		perm := rand.Perm(len(players))
		return []draft.Participant{players[perm[0]], players[perm[1]]}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCaptainMethod, method)
	}
}

// RandomTeams shuffles the players uniformly and splits them into two
// contiguous halves. The count must be even.
func RandomTeams(players []draft.Participant) ([2][]draft.Participant, error) {
	if len(players)%2 != 0 {
		return [2][]draft.Participant{}, ErrOddPlayerCount
	}
	shuffled := make([]draft.Participant, len(players))
	copy(shuffled, players)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	half := len(shuffled) / 2
	return [2][]draft.Participant{shuffled[:half:half], shuffled[half:]}, nil
}

// BalancedTeams seeds each team with one of the two highest scorers, then
// greedily hands the next-highest remaining scorer to whichever team is below
// quota and has the lower score sum. Deterministic given identical scores and
// input order.
func BalancedTeams(ctx context.Context, players []draft.Participant, scorer Scorer) ([2][]draft.Participant, error) {
	var teams [2][]draft.Participant

	scores, err := scorer.GetScores(ctx, ids(players))
	if err != nil {
		return teams, fmt.Errorf("fetching scores: %w", err)
	}
	ranked := rankedByScore(players, scores)

	quota := (len(players) + 1) / 2
	var sums [2]float64

	assign := func(teamIdx int, p draft.Participant) {
		teams[teamIdx] = append(teams[teamIdx], p)
		sums[teamIdx] += scores[p.ID]
	}

	assign(0, ranked[0])
	assign(1, ranked[1])

	for _, p := range ranked[2:] {
		switch {
		case len(teams[0]) >= quota:
			assign(1, p)
		case len(teams[1]) >= quota:
			assign(0, p)
		case sums[0] <= sums[1]:
			assign(0, p)
		default:
			assign(1, p)
		}
	}
	return teams, nil
}

// sortByScore returns the players ordered by descending score, ties keeping
// their original pool order.
func sortByScore(ctx context.Context, players []draft.Participant, scorer Scorer) ([]draft.Participant, error) {
	scores, err := scorer.GetScores(ctx, ids(players))
	if err != nil {
		return nil, fmt.Errorf("fetching scores: %w", err)
	}
	return rankedByScore(players, scores), nil
}

func rankedByScore(players []draft.Participant, scores map[string]float64) []draft.Participant {
	ranked := make([]draft.Participant, len(players))
	copy(ranked, players)
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i].ID] > scores[ranked[j].ID]
	})
	return ranked
}

func ids(players []draft.Participant) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.ID
	}
	return out
}
