// Package mage turns a plain chore description into the epic
// "fantasy" description shown to players. It is a thin client over a
// chat-completion API; the rest of the application treats it as
// "string in, string out" and degrades to the original description
// when the mage is unavailable.
package mage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.openai.com/v1/chat/completions"
	defaultModel   = "gpt-3.5-turbo"
	maxRetries     = 3
	initialDelay   = 1 * time.Second
)

// systemPrompt instructs the model to answer with the transformed
// sentence only, in the tone of a wizard's quest log.
const systemPrompt = "You turn mundane to-do items into epic one-line quests " +
	"set in a world of wizards and magic. Examples: 'review my classmate's notes' " +
	"becomes 'Decipher the ancient glyphs of a fellow mage's grimoire'; " +
	"'feed my dog' becomes 'Feed the guardian beast of the royal palace'. " +
	"Reply with the transformed sentence only, nothing else."

// ErrDisabled is returned by Transform when the client was built
// without an API key.
var ErrDisabled = errors.New("mage is not configured")

// Client calls the text-generation API.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

// New returns a Client. An empty apiKey yields a disabled client
// whose Transform always returns ErrDisabled; callers fall back to
// the original description.
func New(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   defaultModel,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Transform converts an original mission description into its fantasy
// counterpart. Transient failures (429 and 5xx) are retried with
// exponential backoff; anything else fails immediately.
func (c *Client) Transform(ctx context.Context, original string) (string, error) {
	if c.apiKey == "" {
		return "", ErrDisabled
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: original},
		},
	})
	if err != nil {
		return "", err
	}

	delay := initialDelay
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		out, retryable, err := c.post(ctx, payload)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
	}
	return "", fmt.Errorf("mage: giving up after %d attempts: %w", maxRetries, lastErr)
}

func (c *Client) post(ctx context.Context, payload []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", true, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, err
	}

	if resp.StatusCode != http.StatusOK {
		var ae apiError
		msg := string(body)
		if json.Unmarshal(body, &ae) == nil && ae.Error.Message != "" {
			msg = ae.Error.Message
		}
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", retryable, fmt.Errorf("mage: api status %d: %s", resp.StatusCode, msg)
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", false, fmt.Errorf("mage: decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", false, errors.New("mage: empty response")
	}
	return cr.Choices[0].Message.Content, false, nil
}
