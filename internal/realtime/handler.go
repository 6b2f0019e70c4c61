package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/checkit/checkit-server/internal/service"
	"github.com/checkit/checkit-server/internal/service/auth"
)

// Handler upgrades authenticated clients to websocket connections and runs
// their subscription for the lifetime of the connection.
type Handler struct {
	jwtService auth.JWTService
	broker     *Broker
	queries    service.QueryService
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewHandler creates a new realtime Handler.
func NewHandler(
	jwtService auth.JWTService,
	broker *Broker,
	queries service.QueryService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		jwtService: jwtService,
		broker:     broker,
		queries:    queries,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin browsers are expected; the credential gate below
			// is the access control.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With("component", "realtime_handler"),
	}
}

// ServeWS handles GET /ws. The credential is verified before the upgrade:
// a missing or invalid token is refused with 401 and the client never
// receives a single event.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := credentialFromRequest(r)
	if token == "" {
		http.Error(w, "missing credential", http.StatusUnauthorized)
		return
	}

	claims, err := h.jwtService.ValidateToken(r.Context(), token)
	if err != nil {
		h.logger.Debug("websocket handshake rejected", "error", err)
		http.Error(w, "invalid credential", http.StatusUnauthorized)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	h.serve(r.Context(), ws, claims.UID)
}

// serve runs one connection until the client disconnects. The deferred
// releases tear down the subscriber and the socket on every exit path,
// including abnormal disconnects.
func (h *Handler) serve(ctx context.Context, ws *websocket.Conn, uid string) {
	log := h.logger.With("uid", uid)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	conn := NewConn(ws, log)
	defer conn.Close()

	subscriber := h.broker.Subscribe(uid)
	defer subscriber.Close()

	subscription := NewSubscription(uid, h.queries, conn, log)
	go subscription.Run(ctx, subscriber.Events())

	log.Info("client connected")

	for {
		frame, err := conn.ReadFrame()
		if err != nil {
			break
		}

		switch frame.Event {
		case EventSearchTasks:
			var query string
			if err := json.Unmarshal(frame.Data, &query); err != nil {
				log.Debug("ignoring malformed searchTasks payload", "error", err)
				continue
			}
			subscription.Search(ctx, query)
		default:
			log.Debug("ignoring unknown inbound event", "event", frame.Event)
		}
	}

	log.Info("client disconnected")
}

// credentialFromRequest extracts the signed token from the handshake: the
// token query parameter, falling back to a bearer Authorization header.
func credentialFromRequest(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
