package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/avast/retry-go/v4"

	"go-payments.backend/internal/domain/entities"
	domainerrors "go-payments.backend/internal/domain/errors"
	"go-payments.backend/internal/usecases"
)

const defaultTimeout = 15 * time.Second

// Client talks to the payments backend over HTTP. The session token is a
// cookie set by the generate-token endpoint, so the client keeps a cookie
// jar and must not be shared across user sessions.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a backend client rooted at baseURL.
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Jar:     jar,
			Timeout: defaultTimeout,
		},
	}, nil
}

// GetUser fetches the profile for address. Returns ErrUnauthorized when the
// session cookie is missing or stale and ErrNotFound for unknown addresses.
func (c *Client) GetUser(ctx context.Context, address string) (*entities.User, error) {
	var user entities.User
	if err := c.getJSON(ctx, "/users/"+address, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GenerateToken exchanges a signed login message for a session cookie.
func (c *Client) GenerateToken(ctx context.Context, address, message, signature string) error {
	body := map[string]string{
		"userAddress": address,
		"message":     message,
		"signature":   signature,
	}
	return c.postJSON(ctx, "/generate-token", body, nil)
}

// CreateTemplate persists a dispatched batch as a payment template.
func (c *Client) CreateTemplate(ctx context.Context, input *usecases.CreateTemplateInput) error {
	return c.postJSON(ctx, "/templates/"+input.UserAddress, input, nil)
}

// ListTemplates returns the templates owned by address.
func (c *Client) ListTemplates(ctx context.Context, address string) ([]entities.PaymentTemplate, error) {
	var templates []entities.PaymentTemplate
	if err := c.getJSON(ctx, "/templates/"+address, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// DeleteTemplate cancels the template with the given id.
func (c *Client) DeleteTemplate(ctx context.Context, id uint) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/templates/%d", c.baseURL, id), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domainerrors.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	return statusError(resp)
}

// ListAssets returns the supported asset catalog.
func (c *Client) ListAssets(ctx context.Context) ([]entities.Asset, error) {
	var assets []entities.Asset
	if err := c.getJSON(ctx, "/assets", &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// getJSON performs a GET with bounded retries. Only idempotent reads are
// retried; writes go through postJSON exactly once.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := c.http.Do(req)
			if err != nil {
				return fmt.Errorf("%w: %v", domainerrors.ErrBackendUnavailable, err)
			}
			defer resp.Body.Close()
			if err := statusError(resp); err != nil {
				return retry.Unrecoverable(err)
			}
			return json.NewDecoder(resp.Body).Decode(out)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domainerrors.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	if err := statusError(resp); err != nil {
		return err
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func statusError(resp *http.Response) error {
	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return domainerrors.ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		return domainerrors.ErrForbidden
	case resp.StatusCode == http.StatusNotFound:
		return domainerrors.ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return domainerrors.ErrAlreadyExists
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: backend returned %d", domainerrors.ErrBackendUnavailable, resp.StatusCode)
	default:
		return fmt.Errorf("%w: backend returned %d", domainerrors.ErrBadRequest, resp.StatusCode)
	}
}
