package copilot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/synthworks/tabsynth/pkg/constants"
	"github.com/synthworks/tabsynth/pkg/errors"
)

// ClientConfig contains configuration for the text-generation oracle.
type ClientConfig struct {
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Model   string        `json:"model" yaml:"model"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Client talks to an Ollama-compatible text-generation endpoint. It is used
// by the copilot to answer questions about uploaded datasets.
type Client struct {
	config *ClientConfig
	http   *http.Client
	logger *logrus.Logger
}

// NewClient creates an oracle client with defaults filled in.
func NewClient(config *ClientConfig, logger *logrus.Logger) *Client {
	if config == nil {
		config = &ClientConfig{}
	}
	if config.BaseURL == "" {
		config.BaseURL = constants.DefaultOracleURL
	}
	if config.Model == "" {
		config.Model = constants.DefaultOracleModel
	}
	if config.Timeout == 0 {
		config.Timeout = constants.DefaultOracleTimeout
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Client{
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate sends a prompt to the oracle and returns its completion. A
// non-empty contextBlock is prepended so answers are grounded in the dataset
// under discussion.
func (c *Client) Generate(ctx context.Context, prompt, contextBlock string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.NewValidationError(errors.CodeInvalidInput, "prompt cannot be empty")
	}

	full := prompt
	if contextBlock != "" {
		full = fmt.Sprintf("Use the following dataset summary to answer.\n\n%s\nQuestion: %s", contextBlock, prompt)
	}

	body, err := json.Marshal(generateRequest{
		Model:  c.config.Model,
		Prompt: full,
		Stream: false,
	})
	if err != nil {
		return "", errors.WrapError(err, errors.ErrorTypeInternal, errors.CodeInternalError, "failed to marshal oracle request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", errors.WrapError(err, errors.ErrorTypeInternal, errors.CodeInternalError, "failed to build oracle request")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.WrapError(errors.ErrOracleUnavailable, errors.ErrorTypeNetwork,
			errors.CodeNetworkError, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", errors.NewNetworkError(errors.CodeNetworkError,
			fmt.Sprintf("oracle returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload))))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.WrapError(err, errors.ErrorTypeNetwork, errors.CodeNetworkError, "failed to decode oracle response")
	}

	c.logger.WithFields(logrus.Fields{
		"model":    c.config.Model,
		"duration": time.Since(start),
	}).Debug("Oracle completion received")

	return out.Response, nil
}

// Healthy reports whether the oracle endpoint is reachable.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
