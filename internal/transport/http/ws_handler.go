package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"classquiz-service/internal/app"
	"classquiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

// Tracker marks attempt liveness in an external store. Optional; a nil
// tracker disables tracking.
type Tracker interface {
	Track(ctx context.Context, quiz domain.Quiz, studentName string)
	Untrack(ctx context.Context, quizID, studentName string)
}

// WSHandler drives one attempt session per websocket connection: the
// student connects with a quiz ID and a name, receives tick and answer
// snapshots, and gets the result, standings, and badges on finalization.
type WSHandler struct {
	service  *app.QuizService
	tracker  Tracker
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, tracker Tracker) *WSHandler {
	return &WSHandler{
		service: service,
		tracker: tracker,
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
	Question int `json:"question"`
	Option   int `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type finalPayload struct {
	Result    domain.Result             `json:"result"`
	Standings []domain.LeaderboardEntry `json:"standings"`
	Badges    domain.Badges             `json:"badges"`
}

// ServeWS upgrades the request and runs the attempt protocol until the
// socket closes or the session finishes.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	studentName := r.URL.Query().Get("name")
	if quizID == "" || studentName == "" {
		http.Error(w, "missing quizId or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session, err := h.service.StartAttempt(r.Context(), quizID, studentName)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer session.Close()

	if h.tracker != nil {
		quiz, qerr := h.service.GetQuiz(r.Context(), quizID)
		if qerr == nil {
			h.tracker.Track(r.Context(), quiz, studentName)
			defer h.tracker.Untrack(context.Background(), quizID, studentName)
		}
	}

	snapshots, cancel := session.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	pumpDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	// Forward session snapshots; the first Finished snapshot also carries
	// the result, standings, and badges.
	go func() {
		defer close(pumpDone)
		finished := false
		for {
			select {
			case snap, ok := <-snapshots:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "session", Payload: snap}:
				case <-closeSignals:
					return
				}
				if snap.State == app.StateFinished && !finished {
					finished = true
					h.sendFinal(r.Context(), send, closeSignals, quizID, studentName, snap)
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			if err := session.SelectAnswer(payload.Question, payload.Option); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		case "submit":
			if _, err := session.Submit(); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		case "cancel":
			if err := session.Cancel(); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-pumpDone
	close(send)
	<-writerDone
}

func (h *WSHandler) sendFinal(ctx context.Context, send chan<- outboundMessage[any], closeSignals <-chan struct{}, quizID, studentName string, snap app.AttemptSnapshot) {
	final := finalPayload{}
	if snap.Result != nil {
		final.Result = *snap.Result
	}
	if standings, err := h.service.Standings(ctx, quizID); err == nil {
		final.Standings = standings
	} else {
		log.Printf("standings for quiz %s: %v", quizID, err)
	}
	if badges, err := h.service.BadgesFor(ctx, studentName); err == nil {
		final.Badges = badges
	} else {
		log.Printf("badges for %s: %v", studentName, err)
	}
	select {
	case send <- outboundMessage[any]{Type: "finished", Payload: final}:
	case <-closeSignals:
	}
}
