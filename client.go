package mintport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://mint.intuit.com"

// ErrNoCredential is returned when the credential source has no API key,
// i.e. the user is not authenticated. It is terminal for the current run:
// retrying cannot produce a key.
var ErrNoCredential = errors.New("mintport: no API credential available")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("mintport: request failed with status %d", e.StatusCode)
}

// IsAuthError reports whether err means the run cannot proceed without the
// user re-authenticating.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrNoCredential) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized
}

// CredentialSource supplies the ephemeral API key the host page holds in
// memory. An empty key means the user is not authenticated.
type CredentialSource interface {
	Credential(ctx context.Context) (string, error)
	// Invalidate discards a cached key. The client calls it when the API
	// answers 401, so the next run fetches a fresh key.
	Invalidate(ctx context.Context) error
}

// Doer abstracts *http.Client for tests.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// ClientConfig configures a Client. The zero value is usable.
type ClientConfig struct {
	// BaseURL of the vendor API. Defaults to the production host.
	BaseURL string
	// HTTP is the transport to use. Defaults to http.DefaultClient.
	HTTP Doer
	// Logger defaults to a nop logger.
	Logger *zap.Logger
}

// Client issues authenticated requests against the vendor's internal API.
type Client struct {
	baseURL string
	http    Doer
	creds   CredentialSource
	log     *zap.Logger
}

// NewClient returns a Client reading its API key from creds.
func NewClient(creds CredentialSource, cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.HTTP == nil {
		cfg.HTTP = http.DefaultClient
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Client{baseURL: cfg.BaseURL, http: cfg.HTTP, creds: creds, log: cfg.Logger}
}

// authorizationHeader builds the vendor's API-key authorization scheme.
func authorizationHeader(key string) string {
	return fmt.Sprintf("Intuit_APIKey intuit_apikey=%s,intuit_apikey_version=1.0", key)
}

// do performs one authenticated request and returns the response body.
// Non-2xx responses become a *StatusError; a 401 additionally invalidates the
// cached credential.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	key, err := c.creds.Credential(ctx)
	if err != nil {
		return nil, fmt.Errorf("mintport: reading credential: %w", err)
	}
	if key == "" {
		return nil, ErrNoCredential
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("mintport: encoding request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", authorizationHeader(key))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	c.log.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusUnauthorized {
			if err := c.creds.Invalidate(ctx); err != nil {
				c.log.Warn("invalidating credential", zap.Error(err))
			}
		}
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	return io.ReadAll(resp.Body)
}

// doJSON performs a request and decodes the JSON response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("mintport: decoding %s response: %w", path, err)
	}
	return nil
}

// doText performs a request and returns the response body as text.
func (c *Client) doText(ctx context.Context, method, path string, body any) (string, error) {
	raw, err := c.do(ctx, method, path, body)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
