package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"createform/internal/metrics"
	"createform/internal/repository"
	"createform/internal/service"
	"createform/internal/transport/rest/middleware"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Owner token is checked before upgrading
	},
}

// FeedSource opens live submission subscriptions (implemented by service.SubmissionService)
type FeedSource interface {
	Subscribe(ctx context.Context, ownerID, surveyID string) (*repository.Subscription, error)
}

// Handler handles WebSocket connections
type Handler struct {
	hub     *Hub
	feeds   FeedSource
	metrics *metrics.Recorder
	log     *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, feeds FeedSource, m *metrics.Recorder, log *zap.Logger) *Handler {
	return &Handler{
		hub:     hub,
		feeds:   feeds,
		metrics: m,
		log:     log,
	}
}

// SurveyFeed handles GET /v1/ws/surveys/{surveyId}/submissions.
// The owner receives a snapshot of the latest submissions whenever the count changes,
// plus every submission_recorded event of the survey.
func (h *Handler) SurveyFeed(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyId"]
	ownerID := middleware.GetOwnerID(r.Context())
	if ownerID == "" {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	// The subscription outlives this handler call
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	sub, err := h.feeds.Subscribe(ctx, ownerID, surveyID)
	if err != nil {
		cancel()
		switch {
		case errors.Is(err, service.ErrForbidden):
			http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		case errors.Is(err, service.ErrSurveyNotFound):
			http.Error(w, `{"error":"survey not found"}`, http.StatusNotFound)
		default:
			h.log.Error("failed to open submission feed", zap.String("survey_id", surveyID), zap.Error(err))
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		}
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		sub.Close()
		cancel()
		h.log.Warn("WebSocket upgrade error", zap.Error(err))
		return
	}

	conn := &Connection{
		SurveyID: surveyID,
		OwnerID:  ownerID,
		Send:     make(chan []byte, 256),
		Hub:      h.hub,
	}
	h.hub.Register(conn)
	h.metrics.FeedOpened()

	go h.writePump(wsConn, conn)
	go h.feedPump(conn, sub)
	go h.readPump(wsConn, conn, func() {
		sub.Close()
		cancel()
		h.metrics.FeedClosed()
	})
}

// feedPump forwards subscription snapshots to the connection until the subscription ends
func (h *Handler) feedPump(conn *Connection, sub *repository.Subscription) {
	for snap := range sub.C {
		h.hub.SendTo(conn, MsgSnapshot, snap)
	}
	if err := sub.Err(); err != nil && !errors.Is(err, context.Canceled) {
		h.log.Warn("submission feed stopped", zap.String("survey_id", conn.SurveyID), zap.Error(err))
	}
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection, onClose func()) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
		onClose()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn("WebSocket error", zap.Error(err))
			}
			break
		}
		// Dashboards are receive-only
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
