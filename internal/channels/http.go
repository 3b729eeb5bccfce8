package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/anuncios-backend/pkg/enums"
)

const (
	defaultHTTPTimeout          = 20 * time.Second
	responseBodyReadLimit int64 = 4096
)

// Option configures the HTTP surface shared by every adapter.
type Option func(*httpBase)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(b *httpBase) {
		if client != nil {
			b.httpClient = client
		}
	}
}

// WithBaseURL overrides the remote API base URL.
func WithBaseURL(baseURL string) Option {
	return func(b *httpBase) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			b.baseURL = trimmed
		}
	}
}

type httpBase struct {
	channel    enums.Channel
	httpClient *http.Client
	baseURL    string
}

func newHTTPBase(channel enums.Channel, defaultBaseURL string, opts []Option) httpBase {
	base := httpBase{
		channel:    channel,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		baseURL:    defaultBaseURL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&base)
		}
	}
	return base
}

func (b httpBase) buildURL(segments ...string) string {
	parts := []string{strings.TrimRight(b.baseURL, "/")}
	for _, seg := range segments {
		parts = append(parts, strings.Trim(seg, "/"))
	}
	return strings.Join(parts, "/")
}

// postJSON sends body as JSON and decodes a 2xx response into out.
func (b httpBase) postJSON(ctx context.Context, client *http.Client, url string, body any, headers http.Header, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return ChannelError(b.channel, ReasonInvalidResponse, fmt.Errorf("marshal request: %w", err))
	}
	return b.postRaw(ctx, client, url, payload, headers, out)
}

func (b httpBase) postRaw(ctx context.Context, client *http.Client, url string, payload []byte, headers http.Header, out any) error {
	if client == nil {
		client = b.httpClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return ChannelError(b.channel, ReasonNetwork, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ChannelError(b.channel, ReasonTimeout, err)
		}
		return ChannelError(b.channel, ReasonNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return ChannelError(b.channel, ReasonRejected, fmt.Errorf("status %d: %s", resp.StatusCode, remoteErrorMessage(msg)))
	}

	if out == nil {
		return nil
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return ChannelError(b.channel, ReasonNetwork, fmt.Errorf("read response: %w", err))
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return ChannelError(b.channel, ReasonInvalidResponse, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// remoteErrorMessage prefers the Graph/Google style {"error":{"message":...}} body.
func remoteErrorMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return strings.TrimSpace(string(body))
}
