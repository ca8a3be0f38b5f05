package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Diblo/csgo-league-bot/internal/match"
	"github.com/Diblo/csgo-league-bot/internal/panel"
	"github.com/Diblo/csgo-league-bot/internal/store"
	"github.com/Diblo/csgo-league-bot/internal/ws"
)

func SetupRoutes(c *match.Coordinator, s store.ConfigStore, panels *panel.Hub, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/arenas/{arena}/fill", Fill(c, log))
	r.Get("/arenas/{arena}/config", GetConfig(s))
	r.Patch("/arenas/{arena}/config", PatchConfig(s))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(panels, log))
	return r
}
