package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"wanotif/internal/domain"
)

const (
	DefaultBaseURL    = "https://graph.facebook.com"
	DefaultAPIVersion = "v20.0"
)

type Client struct {
	Token         string
	PhoneNumberID string
	HTTP          *http.Client

	BaseURL    string
	APIVersion string
}

// Response is whatever the provider answered, 2xx or not.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

func (r Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// ErrorMessage extracts error.message from a Graph error body.
func (r Response) ErrorMessage() string {
	var env struct {
		Error struct {
			Message string `json:"message"`
			Code    int    `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(r.Body, &env); err != nil || env.Error.Message == "" {
		return ""
	}
	if env.Error.Code != 0 {
		return fmt.Sprintf("%s (code %d)", env.Error.Message, env.Error.Code)
	}
	return env.Error.Message
}

// MessageID returns the wamid of an accepted message, if any.
func (r Response) MessageID() string {
	var env struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(r.Body, &env); err != nil || len(env.Messages) == 0 {
		return ""
	}
	return env.Messages[0].ID
}

// ErrMalformedResponse is returned when the provider body is not JSON.
var ErrMalformedResponse = errors.New("whatsapp: malformed response body")

// CheckConfig reports missing credentials without touching the network.
func (c *Client) CheckConfig() error {
	var missing []string
	if strings.TrimSpace(c.Token) == "" {
		missing = append(missing, "META_WA_TOKEN")
	}
	if strings.TrimSpace(c.PhoneNumberID) == "" {
		missing = append(missing, "PHONE_NUMBER_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("whatsapp: missing configuration: %s", strings.Join(missing, ", "))
	}
	// an empty BaseURL falls back to the Graph host; a set one must be absolute
	if c.BaseURL != "" {
		u, err := url.Parse(strings.TrimSpace(c.BaseURL))
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("whatsapp: invalid configuration: WA_BASE_URL %q is not an absolute URL", c.BaseURL)
		}
	}
	return nil
}

// Send performs exactly one POST. Non-2xx answers are returned, not raised;
// only connectivity problems and unreadable bodies come back as errors.
func (c *Client) Send(ctx context.Context, to string, payload domain.MessagePayload) (Response, error) {
	body, err := json.Marshal(buildEnvelope(to, payload))
	if err != nil {
		return Response{}, fmt.Errorf("whatsapp: marshal envelope: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("whatsapp: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.Token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{StatusCode: resp.StatusCode}, fmt.Errorf("whatsapp: read body: %w", err)
	}
	if !json.Valid(b) {
		return Response{StatusCode: resp.StatusCode}, fmt.Errorf("%w (status %d)", ErrMalformedResponse, resp.StatusCode)
	}
	return Response{StatusCode: resp.StatusCode, Body: json.RawMessage(b)}, nil
}

func (c *Client) endpoint() string {
	version := strings.Trim(c.APIVersion, "/")
	if version == "" {
		version = DefaultAPIVersion
	}
	return strings.TrimRight(c.baseURL(), "/") + "/" + version + "/" + c.PhoneNumberID + "/messages"
}

func (c *Client) baseURL() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return c.BaseURL
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

// Transient reports provider conditions that indicate the provider itself is
// unhealthy: timeouts, throttling and 5xx.
func Transient(err error, httpStatus int) bool {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return true
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return true
		}
		return false
	}
	if httpStatus == http.StatusTooManyRequests || httpStatus == http.StatusRequestTimeout {
		return true
	}
	return httpStatus >= 500 && httpStatus <= 599
}
