package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ppiankov/naysayer/internal/util"
)

// newHTTPClient builds the client used by the HTTP-based providers.
// A zero timeout in config falls back to fallback.
func newHTTPClient(config Config, fallback time.Duration) *http.Client {
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout <= 0 {
		timeout = fallback
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		},
	}
}

// postJSON sends in as a JSON body and decodes a 200 response into out.
// On any other status, describe turns the body into an error message;
// it returns "" when the body is not a recognizable provider error.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, in, out any, describe func([]byte) string) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if msg := describe(data); msg != "" {
			return fmt.Errorf("API error (%d): %s", resp.StatusCode, msg)
		}
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, string(data))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
