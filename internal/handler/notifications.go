package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/observability/metrics"
	"github.com/aryan0dhankhar/wellpulse/internal/service"
)

// NotificationHub pushes notifications to the websocket connections of
// their recipient. It implements service.Publisher.
type NotificationHub struct {
	mu             sync.RWMutex
	clients        map[string]map[*hubClient]struct{}
	allowedOrigins []string
	logger         *slog.Logger
}

type hubClient struct {
	send chan []byte
}

func NewNotificationHub(allowedOrigins []string, logger *slog.Logger) *NotificationHub {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationHub{
		clients:        map[string]map[*hubClient]struct{}{},
		allowedOrigins: allowedOrigins,
		logger:         logger,
	}
}

var _ service.Publisher = (*NotificationHub)(nil)

// Publish queues n for every connection of n.UserID. Slow clients drop messages.
func (h *NotificationHub) Publish(n domain.Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		h.logger.Error("failed to encode notification", slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[n.UserID] {
		select {
		case c.send <- payload:
		default:
			h.logger.Warn("notification dropped for slow client", slog.String("user_id", n.UserID))
		}
	}
}

// Clients returns the number of open connections
func (h *NotificationHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

func (h *NotificationHub) register(userID string) *hubClient {
	c := &hubClient{send: make(chan []byte, 16)}
	h.mu.Lock()
	if h.clients[userID] == nil {
		h.clients[userID] = map[*hubClient]struct{}{}
	}
	h.clients[userID][c] = struct{}{}
	h.mu.Unlock()
	metrics.SetNotificationClients(h.Clients())
	return c
}

func (h *NotificationHub) unregister(userID string, c *hubClient) {
	h.mu.Lock()
	delete(h.clients[userID], c)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
	h.mu.Unlock()
	metrics.SetNotificationClients(h.Clients())
}

// upgrader is initialized per-request to use the hub's allowed origins
func (h *NotificationHub) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// non-browser clients
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if allowed == "*" || origin == allowed {
					return true
				}
			}
			h.logger.Warn("websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
}

// ServeHTTP handles GET /ws/notifications
func (h *NotificationHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := caller(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	upgrader := h.getUpgrader()
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer ws.Close()

	c := h.register(claims.UserID)
	defer h.unregister(claims.UserID, c)
	h.logger.Debug("notification client connected", slog.String("user_id", claims.UserID))

	// reader: the client sends nothing useful, but reads surface the close
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Heartbeat ping to keep connection alive
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case msg := <-c.send:
			if err := ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.logger.Debug("websocket closed", slog.String("user_id", claims.UserID))
				}
				return
			}
		case <-ticker.C:
			_ = ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second))
		}
	}
}

// NotificationHandler serves the stored notification inbox
type NotificationHandler struct {
	svc    *service.NotificationService
	logger *slog.Logger
}

func NewNotificationHandler(svc *service.NotificationService, logger *slog.Logger) *NotificationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationHandler{svc: svc, logger: logger}
}

// InboxResponse is the caller's notifications plus the unread count
type InboxResponse struct {
	Items  []domain.Notification `json:"items"`
	Unread int                   `json:"unread"`
}

// List handles GET /api/me/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, err := caller(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	items, err := h.svc.List(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	unread, err := h.svc.UnreadCount(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, InboxResponse{Items: items, Unread: unread})
}

// MarkRead handles POST /api/me/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims, err := caller(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	n, err := h.svc.MarkRead(r.Context(), claims.UserID, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}
