package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Diblo/csgo-league-bot/internal/draft"
	"github.com/Diblo/csgo-league-bot/internal/match"
	"github.com/Diblo/csgo-league-bot/internal/store"
)

type fillRequest struct {
	Participants []draft.Participant `json:"participants"`
}

// Fill is the queue collaborator's entry point: the queue posts the
// capacity-sized participant list here when it fills. Formation runs
// asynchronously; progress is on the arena's panel feed.
func Fill(c *match.Coordinator, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		arena := chi.URLParam(r, "arena")

		var req fillRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if len(req.Participants) < 2 {
			http.Error(w, "need at least 2 participants", http.StatusBadRequest)
			return
		}
		for _, p := range req.Participants {
			if p.ID == "" {
				http.Error(w, "participant missing id", http.StatusBadRequest)
				return
			}
		}

		log.Info("queue filled", zap.String("arena", arena), zap.Int("players", len(req.Participants)))
		c.StartFormation(arena, req.Participants)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "forming"})
	}
}

func GetConfig(s store.ConfigStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := s.GetArenaConfig(r.Context(), chi.URLParam(r, "arena"))
		if err != nil {
			http.Error(w, "failed to load config", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cfg)
	}
}

func PatchConfig(s store.ConfigStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch store.ConfigPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		cfg, err := s.SetArenaConfig(r.Context(), chi.URLParam(r, "arena"), patch)
		switch {
		case errors.Is(err, store.ErrPoolTooSmall),
			errors.Is(err, store.ErrUnknownMap),
			errors.Is(err, store.ErrInvalidMethod):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case err != nil:
			http.Error(w, "failed to save config", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cfg)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
