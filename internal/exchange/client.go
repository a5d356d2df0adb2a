// Package exchange talks to an OpenAI-compatible chat completion endpoint,
// mapping interview turns and report generation onto strict JSON replies.
package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parley-dev/parley/internal/config"
	"github.com/parley-dev/parley/internal/report"
	"github.com/parley-dev/parley/internal/session"
)

const openingMessage = "Begin the interview now. Ask your first question."

// Client implements session.Exchange over HTTP chat completions.
type Client struct {
	httpClient *http.Client
	endpoint   string
	model      string
	apiKey     string
	logger     *slog.Logger
}

// NewClient builds an exchange client from configuration, resolving the API
// key from the environment up front so a missing key fails before a session
// starts.
func NewClient(cfg config.LLMConfig, logger *slog.Logger) (*Client, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("environment variable %s is not set", cfg.APIKeyEnv)
	}

	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second},
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		model:      cfg.Model,
		apiKey:     apiKey,
		logger:     logger,
	}, nil
}

// Conversation accumulates the message history for one interview session.
type Conversation struct {
	id       string
	messages []chatMessage
}

// ID returns the conversation identifier.
func (c *Conversation) ID() string {
	return c.id
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type turnPayload struct {
	Evaluation   string `json:"evaluation"`
	NextQuestion string `json:"next_question"`
}

// Open starts a conversation and returns the first question.
func (c *Client) Open(ctx context.Context, language session.Language) (session.ExchangeContext, session.TurnResult, error) {
	conv := &Conversation{
		id: uuid.NewString(),
		messages: []chatMessage{
			{Role: "system", Content: interviewerPrompt(language)},
			{Role: "user", Content: openingMessage},
		},
	}

	turn, raw, err := c.requestTurn(ctx, conv.messages)
	if err != nil {
		return nil, session.TurnResult{}, err
	}
	conv.messages = append(conv.messages, chatMessage{Role: "assistant", Content: raw})

	c.logInfo("conversation opened", "conversation_id", conv.id, "language", string(language))
	return conv, session.TurnResult{NextQuestion: turn.NextQuestion}, nil
}

// Submit sends one answer and returns its evaluation plus the next question.
func (c *Client) Submit(ctx context.Context, ec session.ExchangeContext, answer string) (session.TurnResult, error) {
	conv, ok := ec.(*Conversation)
	if !ok {
		return session.TurnResult{}, session.ErrNoExchangeContext
	}

	messages := append(append([]chatMessage(nil), conv.messages...), chatMessage{Role: "user", Content: answer})
	turn, raw, err := c.requestTurn(ctx, messages)
	if err != nil {
		return session.TurnResult{}, err
	}

	// History advances only on success so a retried answer replays cleanly.
	conv.messages = append(messages, chatMessage{Role: "assistant", Content: raw})

	return session.TurnResult{Evaluation: turn.Evaluation, NextQuestion: turn.NextQuestion}, nil
}

// Close grades the answered turns into a report card. The grading request is
// standalone: it carries the transcript, not the conversation history.
func (c *Client) Close(ctx context.Context, closed []session.Turn, language session.Language) (report.Card, error) {
	if len(closed) == 0 {
		return report.Card{}, fmt.Errorf("no answered questions to grade")
	}

	messages := []chatMessage{
		{Role: "system", Content: reportPrompt(language)},
		{Role: "user", Content: renderTranscript(closed)},
	}

	content, err := c.complete(ctx, messages)
	if err != nil {
		return report.Card{}, err
	}

	var card report.Card
	if err := json.Unmarshal([]byte(extractJSON(content)), &card); err != nil {
		return report.Card{}, fmt.Errorf("parse report: %w", err)
	}
	if err := report.Validate(card); err != nil {
		return report.Card{}, fmt.Errorf("invalid report: %w", err)
	}
	return card, nil
}

// requestTurn runs one completion and decodes it as a turn payload.
func (c *Client) requestTurn(ctx context.Context, messages []chatMessage) (turnPayload, string, error) {
	content, err := c.complete(ctx, messages)
	if err != nil {
		return turnPayload{}, "", err
	}

	var turn turnPayload
	if err := json.Unmarshal([]byte(extractJSON(content)), &turn); err != nil {
		return turnPayload{}, "", fmt.Errorf("parse turn reply: %w", err)
	}
	if strings.TrimSpace(turn.NextQuestion) == "" {
		return turnPayload{}, "", fmt.Errorf("turn reply missing next question")
	}
	return turn, content, nil
}

// complete performs one chat completion round trip.
func (c *Client) complete(ctx context.Context, messages []chatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{Model: c.model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var decoded chatResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("chat completion failed: status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if decoded.Error != nil && decoded.Error.Message != "" {
			return "", fmt.Errorf("chat completion failed: %s (status %d)", decoded.Error.Message, resp.StatusCode)
		}
		return "", fmt.Errorf("chat completion failed: status %d", resp.StatusCode)
	}
	if len(decoded.Choices) == 0 || strings.TrimSpace(decoded.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("chat completion returned no content")
	}

	c.logInfo("chat completion",
		"model", c.model,
		"messages", len(messages),
		"duration_ms", time.Since(started).Milliseconds())

	return decoded.Choices[0].Message.Content, nil
}

func (c *Client) logInfo(message string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Info(message, args...)
}

// renderTranscript formats answered turns for the grading prompt.
func renderTranscript(closed []session.Turn) string {
	var b strings.Builder
	for _, turn := range closed {
		fmt.Fprintf(&b, "Q%d: %s\nA%d: %s\n\n", turn.Seq, turn.Question, turn.Seq, turn.Answer)
	}
	return strings.TrimSpace(b.String())
}

// extractJSON strips code fences and surrounding prose from a model reply,
// keeping the outermost JSON object.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
		content = strings.TrimSpace(content)
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return content
}
