// Package metrics talks to the energy data platform that serves indicator
// values: a signed login exchange yields a bearer token, then one POST per
// formula and time bucket returns the value as the platform printed it.
package metrics

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/abramin/wattson/internal/domain"
)

// Value is one fetched data point. Raw keeps the platform's own number
// formatting so replies and diffs render exactly what was served.
type Value struct {
	Raw  string
	Unit string
}

// Source fetches one indicator value per call.
type Source interface {
	Fetch(ctx context.Context, formulaID, timeString string, timeType domain.TimeType) (Value, error)
}

// Client implements Source against the platform HTTP API.
type Client struct {
	cfg  Config
	http *http.Client

	mu        sync.Mutex
	token     string
	tokenFrom time.Time
}

// NewClient creates a platform client. The token is fetched lazily on the
// first query and cached for cfg.TokenTTL.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
	}
}

type loginRequest struct {
	AppID       string `json:"appId"`
	UserName    string `json:"userName"`
	TenancyName string `json:"tenancyName"`
	Timestamp   int64  `json:"timestamp"`
	Enc         string `json:"enc"`
}

type queryRequest struct {
	ExpressionList map[string]string `json:"expressionList"`
	Clock          string            `json:"clock"`
	TimegranID     string            `json:"timegranId"`
}

// Fetch queries one formula at one time bucket, retrying transport-level
// failures up to cfg.MaxRetries times within a single timeout budget.
func (c *Client) Fetch(ctx context.Context, formulaID, timeString string, timeType domain.TimeType) (Value, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	var lastErr error
	attempts := 1 + c.cfg.MaxRetries

	for i := 0; i < attempts; i++ {
		v, err := c.fetchOnce(ctx, formulaID, timeString, timeType)
		if err == nil {
			return v, nil
		}
		lastErr = err

		// Don't retry on context cancellation/timeout
		if ctx.Err() != nil {
			break
		}
		// Only transport failures are worth another attempt.
		if errors.Is(err, ErrLoginFailed) || errors.Is(err, ErrNoValue) {
			return Value{}, err
		}
	}

	if ctx.Err() != nil {
		return Value{}, ErrTimeout
	}
	if isConnectionError(lastErr) {
		return Value{}, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
	}
	return Value{}, fmt.Errorf("%w: %v", ErrRetryExhausted, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, formulaID, timeString string, timeType domain.TimeType) (Value, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return Value{}, err
	}

	body := queryRequest{
		ExpressionList: map[string]string{formulaID: formulaID},
		Clock:          timeString,
		TimegranID:     string(timeType),
	}
	respBody, err := c.post(ctx, c.cfg.QueryURL, body, token)
	if err != nil {
		return Value{}, err
	}

	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return Value{}, fmt.Errorf("decoding query response: %w", err)
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return Value{}, fmt.Errorf("%w: formula %s at %s", ErrNoValue, formulaID, timeString)
	}
	return parseValue(resp.Data, formulaID)
}

// ensureToken returns the cached bearer token, logging in again when the
// cache is empty or older than the TTL.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Since(c.tokenFrom) < c.cfg.TokenTTL {
		return c.token, nil
	}

	ts := time.Now().UnixMilli()
	source := fmt.Sprintf("%s:%s:%s:%d:%s",
		c.cfg.TenantName, c.cfg.AppKey, c.cfg.UserName, ts, c.cfg.AppSecret)
	body := loginRequest{
		AppID:       c.cfg.AppKey,
		UserName:    c.cfg.UserName,
		TenancyName: c.cfg.TenantName,
		Timestamp:   ts,
		Enc:         md5Upper(source),
	}

	respBody, err := c.post(ctx, c.cfg.LoginURL, body, "")
	if err != nil {
		return "", err
	}
	token, err := tokenFromLogin(respBody)
	if err != nil {
		return "", err
	}
	c.token = token
	c.tokenFrom = time.Now()
	return token, nil
}

func (c *Client) post(ctx context.Context, url string, body any, token string) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("platform returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// tokenFromLogin digs the token out of the login payload. Deployments
// differ: it arrives at data.token, as a top-level token, or as data
// holding the bare string.
func tokenFromLogin(raw []byte) (string, error) {
	var resp struct {
		Token string          `json:"token"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decoding login response: %w", err)
	}
	if len(resp.Data) > 0 {
		var nested struct {
			Token string `json:"token"`
		}
		if json.Unmarshal(resp.Data, &nested) == nil && nested.Token != "" {
			return nested.Token, nil
		}
	}
	if resp.Token != "" {
		return resp.Token, nil
	}
	if len(resp.Data) > 0 {
		var bare string
		if json.Unmarshal(resp.Data, &bare) == nil && bare != "" {
			return bare, nil
		}
	}
	return "", ErrLoginFailed
}

// parseValue extracts the scalar for formulaID from the data payload.
// Shapes seen in the wild: {"value": v, "unit": u}, {formulaID: v}, or a
// single-key map under some alias.
func parseValue(raw json.RawMessage, formulaID string) (Value, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Value{}, fmt.Errorf("%w: unexpected payload shape", ErrNoValue)
	}

	unit := ""
	if u, ok := fields["unit"]; ok {
		_ = json.Unmarshal(u, &unit)
	}

	if v, ok := fields["value"]; ok {
		s, err := scalarString(v)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrNoValue, err)
		}
		return Value{Raw: s, Unit: unit}, nil
	}
	if v, ok := fields[formulaID]; ok {
		s, err := scalarString(v)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrNoValue, err)
		}
		return Value{Raw: s, Unit: unit}, nil
	}

	var only json.RawMessage
	n := 0
	for k, v := range fields {
		if k == "unit" {
			continue
		}
		only = v
		n++
	}
	if n == 1 {
		s, err := scalarString(only)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrNoValue, err)
		}
		return Value{Raw: s, Unit: unit}, nil
	}
	return Value{}, fmt.Errorf("%w: formula %s not in payload", ErrNoValue, formulaID)
}

// scalarString renders a JSON scalar as the exact text the platform sent,
// so "435.1200" does not collapse to "435.12".
func scalarString(raw json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	default:
		return "", fmt.Errorf("not a scalar: %T", v)
	}
}

func md5Upper(source string) string {
	sum := md5.Sum([]byte(source))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}
