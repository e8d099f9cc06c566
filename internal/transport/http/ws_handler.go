package http

import (
	"context"
	"encoding/json"
	"net/http"

	"eco-quiz-engine/internal/app"
	"eco-quiz-engine/internal/domain"
	"eco-quiz-engine/internal/pkg/logger"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service     *app.GameService
	defaultBank string
	log         *logger.Logger
	upgrader    websocket.Upgrader
}

func NewWSHandler(service *app.GameService, defaultBank string, log *logger.Logger) *WSHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &WSHandler{
		service:     service,
		defaultBank: defaultBank,
		log:         log.With("component", "ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	OptionIndex *int `json:"optionIndex"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type rejectedPayload struct {
	Action   string          `json:"action"`
	Snapshot domain.Snapshot `json:"snapshot"`
}

type createdPayload struct {
	PlayID   string          `json:"playId"`
	BankID   string          `json:"bankId"`
	Snapshot domain.Snapshot `json:"snapshot"`
}

type transition func(ctx context.Context, playID string) (domain.Snapshot, bool, error)

// ServeWS upgrades HTTP requests to websockets and runs one play-through per connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	bankID := r.URL.Query().Get("bankId")
	if bankID == "" {
		bankID = h.defaultBank
	}
	playerID := r.URL.Query().Get("playerId")
	displayName := r.URL.Query().Get("name")
	if bankID == "" || playerID == "" || displayName == "" {
		http.Error(w, "missing bankId, playerId, or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	play, err := h.service.Create(ctx, bankID, playerID, displayName)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.End(context.Background(), play.ID())

	updates, cancel, err := h.service.Subscribe(ctx, play.ID())
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	log := h.log.With("play_id", play.ID(), "bank_id", bankID)
	log.Info("play connected")

	out := newOutbox(16)
	closeSignals := make(chan struct{})
	updatesDone := make(chan struct{})

	// single writer: gorilla connections allow one concurrent writer
	go out.run(conn, log)

	// the first update is the initial snapshot; it goes out as "created"
	initial := <-updates
	out.push(outboundMessage[any]{Type: "created", Payload: createdPayload{PlayID: play.ID(), BankID: bankID, Snapshot: initial}})

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				if !out.push(outboundMessage[any]{Type: "snapshot", Payload: update}) {
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	simple := map[string]transition{
		"start":         h.service.Start,
		"advance":       h.service.Advance,
		"nextLevel":     h.service.NextLevel,
		"previousLevel": h.service.PreviousLevel,
	}

read:
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}

		var (
			snap     domain.Snapshot
			accepted bool
			err      error
		)
		switch {
		case inbound.Type == "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.OptionIndex == nil {
				if !out.push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}) {
					break read
				}
				continue
			}
			snap, accepted, err = h.service.Answer(ctx, play.ID(), *payload.OptionIndex)
		case simple[inbound.Type] != nil:
			snap, accepted, err = simple[inbound.Type](ctx, play.ID())
		default:
			if !out.push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}) {
				break read
			}
			continue
		}

		var reply *outboundMessage[any]
		switch {
		case err != nil:
			reply = &outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
		case !accepted:
			reply = &outboundMessage[any]{Type: "rejected", Payload: rejectedPayload{Action: inbound.Type, Snapshot: snap}}
		}
		if reply != nil && !out.push(*reply) {
			break read
		}
	}

	log.Info("play disconnected")
	close(closeSignals)
	<-updatesDone
	out.close()
}

// outbox queues messages for the single writer goroutine. Once the writer
// stops pushes fail instead of blocking, and a write error closes the
// connection so a pending read returns too.
type outbox struct {
	send chan outboundMessage[any]
	done chan struct{}
}

func newOutbox(size int) *outbox {
	return &outbox{send: make(chan outboundMessage[any], size), done: make(chan struct{})}
}

func (o *outbox) run(conn *websocket.Conn, log *logger.Logger) {
	defer close(o.done)
	for msg := range o.send {
		if err := conn.WriteJSON(msg); err != nil {
			log.Debug("ws write error", "error", err)
			_ = conn.Close()
			return
		}
	}
}

// push reports false once the writer has stopped.
func (o *outbox) push(msg outboundMessage[any]) bool {
	select {
	case <-o.done:
		return false
	default:
	}
	select {
	case o.send <- msg:
		return true
	case <-o.done:
		return false
	}
}

// close ends the queue and waits for the writer to finish.
func (o *outbox) close() {
	close(o.send)
	<-o.done
}
