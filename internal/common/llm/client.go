// internal/common/llm/client.go
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"churn-analytics/internal/common/config"
	"churn-analytics/internal/common/errors"
)

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client talks to a chat-completions style endpoint. Both the risk
// classifier and the campaign recommendation generator go through it.
type Client struct {
	config *config.ClassifierConfig
	client *http.Client
}

func NewClient(cfg *config.ClassifierConfig) *Client {
	return &Client{
		config: cfg,
		client: &http.Client{
			// No client timeout, the per-request context bounds each call
		},
	}
}

// Complete sends one user prompt and returns the first choice's
// content. Transport failures and non-OK statuses are retried with
// exponential backoff up to the configured attempt budget; the whole
// call is bounded by the configured timeout.
func (c *Client) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.config.Timeout)*time.Millisecond)
	defer cancel()

	body, _ := json.Marshal(chatRequest{
		Model:       c.config.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
	})

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", errors.NewClassifierUnavailableError(ctx.Err())
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+"/chat/completions", bytes.NewBuffer(body))
		if err != nil {
			return "", errors.NewClassifierUnavailableError(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		}

		resp, lastErr = c.client.Do(req)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			return "", errors.NewClassifierUnavailableError(ctx.Err())
		}
	}

	if lastErr != nil || resp == nil {
		if lastErr == nil {
			lastErr = fmt.Errorf("no successful response after retries")
		}
		return "", errors.NewClassifierUnavailableError(lastErr)
	}
	defer resp.Body.Close()

	var apiResponse chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", errors.NewClassifierMalformedOutputError(fmt.Sprintf("decode error: %v", err))
	}
	if len(apiResponse.Choices) == 0 {
		return "", errors.NewClassifierMalformedOutputError("response contains no choices")
	}
	return apiResponse.Choices[0].Message.Content, nil
}
