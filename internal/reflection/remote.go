package reflection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ReflectRequest is the body of POST /api/reflect.
type ReflectRequest struct {
	MemoryText string `json:"memoryText"`
}

// ReflectResponse is the answer of POST /api/reflect.
type ReflectResponse struct {
	Reflection string `json:"reflection"`
}

// RemoteClient is a Reflector backed by another echosign server's
// /api/reflect endpoint.
type RemoteClient struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewRemoteClient posts to baseURL + "/api/reflect".
func NewRemoteClient(baseURL string, logger *zap.Logger) *RemoteClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteClient{
		url:        strings.TrimRight(baseURL, "/") + "/api/reflect",
		httpClient: &http.Client{Timeout: 20 * time.Second},
		logger:     logger,
	}
}

// Reflect posts memoryText. Network errors, non-2xx answers and malformed
// bodies yield FallbackError; an empty reflection yields
// FallbackEmptyAnswer.
func (c *RemoteClient) Reflect(ctx context.Context, memoryText string) string {
	if strings.TrimSpace(memoryText) == "" {
		return FallbackEmptyMemory
	}
	reflection, err := c.post(ctx, memoryText)
	if err != nil {
		c.logger.Warn("remote reflection failed", zap.String("url", c.url), zap.Error(err))
		return FallbackError
	}
	if strings.TrimSpace(reflection) == "" {
		return FallbackEmptyAnswer
	}
	return reflection
}

func (c *RemoteClient) post(ctx context.Context, memoryText string) (string, error) {
	body, err := json.Marshal(ReflectRequest{MemoryText: memoryText})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("reflect returned %d", resp.StatusCode)
	}
	var out ReflectResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	return out.Reflection, nil
}
