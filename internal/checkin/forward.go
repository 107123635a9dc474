package checkin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	tokenCacheKey         = "access_token"
	tokenLeeway           = 30 * time.Second
	maxBackendBody        = 64 << 10
	defaultForwardTimeout = 10 * time.Second
)

// ForwardPayload is the body accepted by the peer insertion endpoint.
type ForwardPayload struct {
	Name       string  `json:"nome"`
	NationalID *string `json:"cpf"`
	MeetingURL string  `json:"link_zoom"`
	ClientIP   *string `json:"ip"`
}

// ForwardResult is either Forwarded (Body set) or ForwardFailed (Err set).
type ForwardResult struct {
	Body any
	Err  error
}

// OK reports whether the peer accepted the check-in.
func (r ForwardResult) OK() bool { return r.Err == nil }

func Forwarded(body any) ForwardResult { return ForwardResult{Body: body} }

func ForwardFailed(reason error) ForwardResult {
	return ForwardResult{Err: fmt.Errorf("%w: %v", ErrForwardUnavailable, reason)}
}

// Forwarder hands a validated check-in to a peer instance.
type Forwarder interface {
	Forward(ctx context.Context, p ForwardPayload) ForwardResult
}

// ForwarderConfig configures HTTPForwarder.
type ForwarderConfig struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration // <= 0 = 10s
	Client   *http.Client  // nil = http.DefaultClient
}

// HTTPForwarder obtains a service token with the password grant and posts the check-in
// to the peer insertion endpoint. Tokens are cached until shortly before they expire.
type HTTPForwarder struct {
	baseURL  string
	client   *http.Client
	oauth    *oauth2.Config
	username string
	password string
	timeout  time.Duration
	tokens   *cache.Cache
	logger   *zap.Logger
}

func NewHTTPForwarder(cfg ForwarderConfig, logger *zap.Logger) *HTTPForwarder {
	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultForwardTimeout
	}
	return &HTTPForwarder{
		baseURL: cfg.BaseURL,
		client:  client,
		oauth: &oauth2.Config{
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.BaseURL + "/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		username: cfg.Username,
		password: cfg.Password,
		timeout:  timeout,
		tokens:   cache.New(cache.NoExpiration, 10*time.Minute),
		logger:   logger,
	}
}

// Forward never returns an error; failures are reported in the result.
func (f *HTTPForwarder) Forward(ctx context.Context, p ForwardPayload) ForwardResult {
	token, err := f.token(ctx)
	if err != nil {
		return ForwardFailed(err)
	}

	body, err := json.Marshal(p)
	if err != nil {
		return ForwardFailed(err)
	}
	postCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(postCtx, http.MethodPost, f.baseURL+"/zoom/checkin", bytes.NewReader(body))
	if err != nil {
		return ForwardFailed(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := f.client.Do(req)
	if err != nil {
		return ForwardFailed(err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBackendBody))
	if err != nil {
		f.logger.Warn("read peer response body", zap.Int("status", resp.StatusCode), zap.Error(err))
	}

	if resp.StatusCode == http.StatusUnauthorized {
		f.tokens.Delete(tokenCacheKey)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ForwardFailed(fmt.Errorf("peer returned %d", resp.StatusCode))
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		out = map[string]any{"ok": true}
	}
	return Forwarded(out)
}

func (f *HTTPForwarder) token(ctx context.Context) (string, error) {
	if v, ok := f.tokens.Get(tokenCacheKey); ok {
		return v.(string), nil
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, f.client)
	tok, err := f.oauth.PasswordCredentialsToken(ctx, f.username, f.password)
	if err != nil {
		return "", fmt.Errorf("token: %w", err)
	}
	if !tok.Expiry.IsZero() {
		if ttl := time.Until(tok.Expiry) - tokenLeeway; ttl > 0 {
			f.tokens.Set(tokenCacheKey, tok.AccessToken, ttl)
		}
	}
	f.logger.Debug("service token issued", zap.Time("expiry", tok.Expiry))
	return tok.AccessToken, nil
}
