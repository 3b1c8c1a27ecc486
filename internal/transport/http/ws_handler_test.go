package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"classquiz-service/internal/app"
	"classquiz-service/internal/domain"
	"classquiz-service/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	quizzes := memory.NewQuizStore()
	if err := quizzes.SaveQuiz(context.Background(), sampleQuiz()); err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	reader := memory.NewQuizCache(quizzes, time.Minute)
	service := app.NewQuizService(quizzes, reader, memory.NewResultStore(), memory.NewNoteStore(), nil)
	wsHandler := NewWSHandler(service, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	return httptest.NewServer(mux)
}

func TestWebSocketAttemptFlow(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?quizId=quiz-1&name=Alice"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The first snapshot shows the running session.
	msgType, payload := readNext(conn, t, "session")
	if msgType != "session" {
		t.Fatalf("expected session snapshot, got %s", msgType)
	}
	if payload["state"] != string(app.StateActive) {
		t.Fatalf("expected active state, got %v", payload["state"])
	}

	answer := map[string]any{
		"type": "answer",
		"payload": map[string]any{
			"question": 0,
			"option":   1,
		},
	}
	if err := conn.WriteJSON(answer); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	if err := conn.WriteJSON(map[string]any{"type": "submit"}); err != nil {
		t.Fatalf("write submit: %v", err)
	}

	// Read until the finished message; tick snapshots may interleave.
	var final map[string]any
	for i := 0; i < 10; i++ {
		typ, p := readNext(conn, t, "")
		if typ == "error" {
			t.Fatalf("unexpected error message: %v", p)
		}
		if typ == "finished" {
			final = p
			break
		}
	}
	if final == nil {
		t.Fatalf("never received the finished message")
	}

	result, ok := final["result"].(map[string]any)
	if !ok {
		t.Fatalf("finished payload missing result: %v", final)
	}
	if result["score"] != float64(1) || result["total"] != float64(1) {
		t.Fatalf("expected 1/1, got %v", result)
	}
	standings, ok := final["standings"].([]any)
	if !ok || len(standings) != 1 {
		t.Fatalf("expected one leaderboard entry, got %v", final["standings"])
	}
}

func TestWebSocketRejectsBlankName(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?quizId=quiz-1&name=%20%20"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	msgType, payload := readNext(conn, t, "error")
	if msgType != "error" {
		t.Fatalf("expected error for blank name, got %s", msgType)
	}
	if payload["message"] == "" {
		t.Fatalf("expected error message, got %v", payload)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:         "quiz-1",
		Title:      "Everyday Grammar",
		Difficulty: domain.DifficultyEasy,
		Questions: []domain.Question{
			{
				Text:         "Which sentence is correct?",
				Options:      []string{"He go.", "He goes.", "He going.", "He gone."},
				CorrectIndex: 1,
			},
		},
		DurationMinutes: 5,
		CreatedAt:       time.Now(),
	}
}
