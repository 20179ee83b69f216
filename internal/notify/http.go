package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const sendTimeout = 5 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: sendTimeout}
}

// postJSON POSTs body as JSON to url. A non-2xx response becomes an error
// carrying the status and the start of the response body. sign, when
// non-nil, may add headers computed from the encoded body.
func postJSON(ctx context.Context, client *http.Client, name, url string, body any, sign func(h http.Header, raw []byte)) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: marshal payload: %w", name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if sign != nil {
		sign(req.Header, raw)
	}
	resp, err := client.Do(req) // #nosec G107 -- URL comes from user configuration
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		msg := strings.TrimSpace(string(snippet))
		if msg == "" {
			return fmt.Errorf("%s: returned %d", name, resp.StatusCode)
		}
		return fmt.Errorf("%s: returned %d: %s", name, resp.StatusCode, msg)
	}
	return nil
}
