package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Dashboard message types
const (
	MsgSnapshot           MessageType = "submissions_snapshot"
	MsgSubmissionRecorded MessageType = "submission_recorded"
	MsgSurveyDeleted      MessageType = "survey_deleted"
	MsgError              MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans survey events out to the dashboards watching them
type Hub struct {
	// surveyID -> connections
	conns map[string]map[*Connection]struct{}

	mu  sync.RWMutex
	log *zap.Logger

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	disconnect chan string
	done       chan struct{}
	stopOnce   sync.Once
}

// Connection represents one dashboard WebSocket
type Connection struct {
	SurveyID string
	OwnerID  string
	Send     chan []byte
	Hub      *Hub
}

// BroadcastMessage is a message to deliver. A nil To reaches every connection of the survey.
type BroadcastMessage struct {
	SurveyID string
	To       *Connection
	Message  *Message
}

// NewHub creates a new WebSocket hub
func NewHub(log *zap.Logger) *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]struct{}),
		log:        log,
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		disconnect: make(chan string, 16),
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.SurveyID] == nil {
				h.conns[conn.SurveyID] = make(map[*Connection]struct{})
			}
			h.conns[conn.SurveyID][conn] = struct{}{}
			h.mu.Unlock()
			h.log.Info("dashboard connected", zap.String("survey_id", conn.SurveyID), zap.String("owner_id", conn.OwnerID))

		case conn := <-h.unregister:
			h.mu.Lock()
			if h.remove(conn) {
				h.log.Info("dashboard disconnected", zap.String("survey_id", conn.SurveyID))
			}
			h.mu.Unlock()

		case surveyID := <-h.disconnect:
			data, _ := json.Marshal(&Message{Type: MsgSurveyDeleted, Payload: json.RawMessage(`{}`)})
			h.mu.Lock()
			for conn := range h.conns[surveyID] {
				select {
				case conn.Send <- data:
				default:
				}
				h.remove(conn)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.log.Error("failed to encode message", zap.Error(err))
				continue
			}

			h.mu.RLock()
			for conn := range h.conns[msg.SurveyID] {
				if msg.To != nil && msg.To != conn {
					continue
				}
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for _, conns := range h.conns {
				for conn := range conns {
					h.remove(conn)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

// remove drops a registered connection and closes its send channel. Callers hold mu.
func (h *Hub) remove(conn *Connection) bool {
	conns, ok := h.conns[conn.SurveyID]
	if !ok {
		return false
	}
	if _, ok := conns[conn]; !ok {
		return false
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(h.conns, conn.SurveyID)
	}
	close(conn.Send)
	return true
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Stop disconnects every dashboard and stops the hub
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Connections returns how many dashboards watch the survey
func (h *Hub) Connections(surveyID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[surveyID])
}

// BroadcastToSurvey sends a message to every dashboard of the survey (implements service.Broadcaster)
func (h *Hub) BroadcastToSurvey(surveyID string, msgType string, payload interface{}) {
	h.send(&BroadcastMessage{SurveyID: surveyID}, msgType, payload)
}

// SendTo sends a message to one connection
func (h *Hub) SendTo(conn *Connection, msgType MessageType, payload interface{}) {
	h.send(&BroadcastMessage{SurveyID: conn.SurveyID, To: conn}, string(msgType), payload)
}

// DisconnectSurvey closes every dashboard of the survey (implements service.Broadcaster)
func (h *Hub) DisconnectSurvey(surveyID string) {
	select {
	case h.disconnect <- surveyID:
	case <-h.done:
	}
}

func (h *Hub) send(msg *BroadcastMessage, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("failed to encode payload", zap.String("type", msgType), zap.Error(err))
		return
	}
	msg.Message = &Message{
		Type:    MessageType(msgType),
		Payload: data,
	}

	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}
