package gen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"classquiz-service/internal/app"
	"classquiz-service/internal/domain"
)

// Client calls an external AI quiz-generation endpoint. The service is an
// opaque producer: the client checks only structural shape (question
// count, option count, index range), never semantic correctness. Any
// failure discards the payload; no partial quiz reaches the caller.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

type generatedQuestion struct {
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

type generateResponse struct {
	Title     string              `json:"title"`
	Subject   string              `json:"subject"`
	Questions []generatedQuestion `json:"questions"`
}

// Generate requests a quiz from the generation endpoint.
func (c *Client) Generate(ctx context.Context, req app.GenerationRequest) (domain.Quiz, error) {
	if req.QuestionCount <= 0 {
		return domain.Quiz{}, fmt.Errorf("%w: question count must be positive", domain.ErrGeneration)
	}
	if req.Topic == "" && req.Document == "" {
		return domain.Quiz{}, fmt.Errorf("%w: topic or document required", domain.ErrGeneration)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("%w: encode request: %v", domain.ErrGeneration, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/generate", bytes.NewReader(body))
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Quiz{}, fmt.Errorf("%w: endpoint returned %s", domain.ErrGeneration, resp.Status)
	}

	var payload generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Quiz{}, fmt.Errorf("%w: decode response: %v", domain.ErrGeneration, err)
	}

	quiz, err := buildQuiz(payload, req)
	if err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// buildQuiz validates the response shape and maps it to a domain quiz.
func buildQuiz(payload generateResponse, req app.GenerationRequest) (domain.Quiz, error) {
	if payload.Title == "" {
		return domain.Quiz{}, fmt.Errorf("%w: response missing title", domain.ErrGeneration)
	}
	if len(payload.Questions) != req.QuestionCount {
		return domain.Quiz{}, fmt.Errorf("%w: asked for %d questions, got %d", domain.ErrGeneration, req.QuestionCount, len(payload.Questions))
	}

	questions := make([]domain.Question, 0, len(payload.Questions))
	for i, q := range payload.Questions {
		if q.Text == "" {
			return domain.Quiz{}, fmt.Errorf("%w: question %d has no text", domain.ErrGeneration, i)
		}
		if len(q.Options) != domain.OptionsPerQuestion {
			return domain.Quiz{}, fmt.Errorf("%w: question %d has %d options, want %d", domain.ErrGeneration, i, len(q.Options), domain.OptionsPerQuestion)
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return domain.Quiz{}, fmt.Errorf("%w: question %d correct index %d out of range", domain.ErrGeneration, i, q.CorrectIndex)
		}
		questions = append(questions, domain.Question{
			Text:         q.Text,
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
			Explanation:  q.Explanation,
		})
	}

	return domain.Quiz{
		Title:      payload.Title,
		Subject:    payload.Subject,
		Difficulty: req.Difficulty,
		Questions:  questions,
	}, nil
}
