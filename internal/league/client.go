// Package league wraps the CS:GO league web API: player statistics, match
// server allocation, and queue maintenance.
package league

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Diblo/csgo-league-bot/internal/draft"
)

// ErrNoServers is returned when the API cannot allocate a match server. The
// coordinator surfaces it once and never retries.
var ErrNoServers = errors.New("no match servers available")

// PlayerStats is the slice of the API's player record that balancing cares
// about.
type PlayerStats struct {
	ID    string  `json:"discord"`
	Name  string  `json:"discord_name"`
	Score float64 `json:"score"`
}

// MatchServer is an allocated server for one match.
type MatchServer struct {
	ID   string `json:"match_id"`
	IP   string `json:"ip"`
	Port int    `json:"port"`
}

// ConnectURL formats the steam URL to join the server.
func (m MatchServer) ConnectURL() string {
	return fmt.Sprintf("steam://connect/%s:%d", m.IP, m.Port)
}

// ConnectCommand formats the console command to join the server.
func (m MatchServer) ConnectCommand() string {
	return fmt.Sprintf("connect %s:%d", m.IP, m.Port)
}

type Client struct {
	base string
	key  string
	http *http.Client
	log  *zap.Logger
}

func NewClient(baseURL, apiKey string, log *zap.Logger) *Client {
	return &Client{
		base: baseURL,
		key:  apiKey,
		http: &http.Client{Timeout: 10 * time.Second},
		log:  log,
	}
}

// GetPlayers fetches the stats of multiple players by ID.
func (c *Client) GetPlayers(ctx context.Context, ids []string) ([]PlayerStats, error) {
	body := map[string][]string{"discordIds": ids}
	var players []PlayerStats
	if err := c.do(ctx, http.MethodPost, "/players/discord", body, &players); err != nil {
		return nil, fmt.Errorf("fetching players: %w", err)
	}
	return players, nil
}

// GetScores implements former.Scorer. Players unknown to the API score zero.
func (c *Client) GetScores(ctx context.Context, ids []string) (map[string]float64, error) {
	players, err := c.GetPlayers(ctx, ids)
	if err != nil {
		return nil, err
	}
	scores := make(map[string]float64, len(ids))
	for _, id := range ids {
		scores[id] = 0
	}
	for _, p := range players {
		scores[p.ID] = p.Score
	}
	return scores, nil
}

// StartMatch requests a server for the two finalized rosters.
func (c *Client) StartMatch(ctx context.Context, teamOne, teamTwo []draft.Participant) (MatchServer, error) {
	body := map[string]map[string]string{
		"team_one": roster(teamOne),
		"team_two": roster(teamTwo),
	}
	var server MatchServer
	if err := c.do(ctx, http.MethodPost, "/match/start", body, &server); err != nil {
		c.log.Warn("match allocation failed", zap.Error(err))
		return MatchServer{}, fmt.Errorf("%w: %v", ErrNoServers, err)
	}
	return server, nil
}

// RemoveParticipants drops players from an arena's queue. Used after a ready
// check partially times out.
func (c *Client) RemoveParticipants(ctx context.Context, arenaID string, ids []string) error {
	body := map[string]any{"arena": arenaID, "discordIds": ids}
	if err := c.do(ctx, http.MethodPost, "/queue/remove", body, nil); err != nil {
		return fmt.Errorf("removing queued players: %w", err)
	}
	return nil
}

func roster(team []draft.Participant) map[string]string {
	out := make(map[string]string, len(team))
	for _, p := range team {
		out[p.ID] = p.Name
	}
	return out
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("authentication", c.key)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
