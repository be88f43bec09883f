// Package ai talks to the remote AI collaborator. Every call is an
// opaque HTTP round trip: a failure surfaces as fault.ErrUnavailable
// and is never retried here.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/taskrooms/taskrooms/internal/config"
	"github.com/taskrooms/taskrooms/internal/fault"
	"github.com/taskrooms/taskrooms/internal/httpclient"
	"github.com/taskrooms/taskrooms/internal/logutil"
	"github.com/taskrooms/taskrooms/internal/tasks"
)

// ErrNotConfigured is returned when no AI endpoint is configured.
var ErrNotConfigured = errors.New("ai collaborator not configured")

// ParsedTask is the structured output of natural-language task parsing.
type ParsedTask struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date,omitempty"`
}

// PrioritySuggestion is the output of priority suggestion.
type PrioritySuggestion struct {
	Priority string `json:"priority"`
	Reason   string `json:"reason"`
}

// Summary is the output of task summarization.
type Summary struct {
	Summary string `json:"summary"`
}

// Client calls the AI service over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *httpclient.Client
	logger  *slog.Logger
}

// NewClient creates a Client from config. An empty base URL yields a
// client whose calls all fail with ErrNotConfigured.
func NewClient(cfg *config.AIConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http: httpclient.New(httpclient.Options{
			TimeoutMS:        cfg.TimeoutMS,
			MaxResponseBytes: cfg.MaxResponseBytes,
		}),
		logger: logutil.NoopIfNil(logger),
	}
}

// ParseTask turns free text into a structured task draft.
func (c *Client) ParseTask(ctx context.Context, text string) (*ParsedTask, error) {
	var out ParsedTask
	if err := c.call(ctx, "/v1/parse-task", map[string]any{"input": text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SuggestPriority proposes a priority for a task description. deadline
// may be empty.
func (c *Client) SuggestPriority(ctx context.Context, text, deadline string) (*PrioritySuggestion, error) {
	payload := map[string]any{"description": text}
	if deadline != "" {
		payload["deadline"] = deadline
	}
	var out PrioritySuggestion
	if err := c.call(ctx, "/v1/suggest-priority", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Summarize produces a summary of the given tasks over a period
// ("daily" or "weekly"). An empty task list short-circuits locally
// without a remote call.
func (c *Client) Summarize(ctx context.Context, taskList []*tasks.Task, period string) (*Summary, error) {
	if len(taskList) == 0 {
		return &Summary{Summary: "No tasks to summarize for this period."}, nil
	}
	var out Summary
	if err := c.call(ctx, "/v1/summarize", map[string]any{"tasks": taskList, "period": period}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) call(ctx context.Context, path string, payload any, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("%w: %w", fault.ErrUnavailable, ErrNotConfigured)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	status, respBody, err := c.http.Do(ctx, req)
	if err != nil {
		c.logger.Warn("ai call failed", "path", path, "error", err)
		return fmt.Errorf("%w: ai call: %v", fault.ErrUnavailable, err)
	}
	if status != http.StatusOK {
		c.logger.Warn("ai call rejected", "path", path, "status", status)
		return fmt.Errorf("%w: ai service returned status %d", fault.ErrUnavailable, status)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: decode ai response: %v", fault.ErrUnavailable, err)
	}
	return nil
}
