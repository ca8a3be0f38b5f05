package ws

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"math/big"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/Diblo/csgo-league-bot/internal/panel"
	"github.com/Diblo/csgo-league-bot/internal/surface"
	"github.com/Diblo/csgo-league-bot/pkg/types"
)

// Handler attaches a websocket client to an arena's panel feed. The client
// receives every rendered view and may emit choice signals tagged with its
// participant identity. Clients without a participant query param are
// spectators: they receive views but their signals are dropped upstream.
func Handler(h *panel.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		arena := r.URL.Query().Get("arena")
		if arena == "" {
			http.Error(w, "missing arena", http.StatusBadRequest)
			return
		}
		participant := r.URL.Query().Get("participant")

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan types.ServerMessage, 8)
		clientID := randID(6)

		h.Join(arena, clientID, out)
		defer h.Leave(arena, clientID)

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for update := range out {
				payload, _ := json.Marshal(update)
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"Error","error":"bad json"}`))
				continue
			}

			if cm.Type != "Signal" || cm.Signal == "" || participant == "" {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"Error","error":"unknown type"}`))
				continue
			}

			log.Debug("choice signal received",
				zap.String("arena", arena), zap.String("signal", cm.Signal), zap.String("participant", participant))
			h.Deliver(arena, surface.Signal(cm.Signal), participant)
		}
	}
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		num, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		b[i] = charset[num.Int64()]
	}
	return string(b)
}
