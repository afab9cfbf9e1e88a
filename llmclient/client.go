package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"insight-agent/config"
	apperrors "insight-agent/errors"
	"insight-agent/types"
)

type chatRequest struct {
	Model    string               `json:"model"`
	Messages []types.AgentMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message types.AgentMessage `json:"message"`
	} `json:"choices"`
}

// Client talks to an OpenAI-compatible chat completion endpoint. Whether
// the client is usable at all is a pure predicate over configuration read
// at startup; absence of credentials is an expected operating mode, not
// an error.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.LLMRequestTimeout},
		logger:     logger,
	}
}

// Configured reports whether model credentials are present. Callers check
// this per request rather than caching the answer at process start.
func (c *Client) Configured() bool {
	return c.cfg.LLMHost != "" && c.cfg.LLMAPIKey != ""
}

// Chat performs a non-streaming chat completion call and returns the
// concatenated text of all returned segments. The call is never retried;
// callers fall back to the heuristic responder on any failure.
func (c *Client) Chat(ctx context.Context, messages []types.AgentMessage) (string, error) {
	reqBody := chatRequest{
		Model:    c.cfg.LLMModel,
		Messages: messages,
		Stream:   false,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/chat/completions", strings.TrimRight(c.cfg.LLMHost, "/"))
	c.logger.Debug("Sending chat completion request",
		zap.String("model", c.cfg.LLMModel),
		zap.Int("messages", len(messages)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.LLMAPIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrLLMCommunication, err.Error())
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.WrapErrorf(apperrors.ErrLLMCommunication,
			"llm server status %s: %s", resp.Status, string(bodyBytes))
	}

	var cr chatResponse
	if err := json.Unmarshal(bodyBytes, &cr); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("no response choices from llm server")
	}

	var text strings.Builder
	for _, choice := range cr.Choices {
		text.WriteString(choice.Message.Content)
	}
	return text.String(), nil
}
