package platform

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rflorenc/scm-migration-workbench/internal/models"
)

// pageSize is the number of records requested per list call.
const pageSize = 200

// tokenSkew renews tokens slightly before they expire.
const tokenSkew = 30 * time.Second

// Client is a shared HTTP client for one tenant. It obtains OAuth2 access
// tokens with the client-credentials grant and reuses them until they expire.
type Client struct {
	apiURL       string
	authURL      string
	clientID     string
	clientSecret string
	scope        string
	httpClient   *http.Client

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewClient creates a Client from a Tenant.
func NewClient(t *models.Tenant) *Client {
	transport := &http.Transport{}
	if t.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &Client{
		apiURL:       t.APIBase(),
		authURL:      t.AuthURL,
		clientID:     t.ClientID,
		clientSecret: t.ClientSecret,
		scope:        t.Scope(),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   60 * time.Second,
		},
	}
}

// tokenResponse is the OAuth2 token endpoint response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Token returns a valid access token, fetching a new one when needed.
func (c *Client) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.expires) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}, "scope": {c.scope}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading token response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("token request: HTTP %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("parsing token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}
	c.token = tr.AccessToken
	c.expires = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenSkew)
	return c.token, nil
}

// Get performs an authenticated GET request and returns the response body.
func (c *Client) Get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}

	u := c.apiURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, fmt.Errorf("GET %s: HTTP %d: %s", path, resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

// GetJSON performs an authenticated GET and unmarshals the response into dest.
func (c *Client) GetJSON(ctx context.Context, path string, params url.Values, dest interface{}) error {
	body, err := c.Get(ctx, path, params)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dest)
}

// listResponse is the offset/limit list envelope used by the config API.
type listResponse struct {
	Data   []models.Resource `json:"data"`
	Offset int               `json:"offset"`
	Limit  int               `json:"limit"`
	Total  int               `json:"total"`
}

// GetAll fetches all pages of a list endpoint, returning all records.
func (c *Client) GetAll(ctx context.Context, path string, params url.Values) ([]models.Resource, error) {
	var all []models.Resource
	offset := 0

	for {
		q := url.Values{}
		for k, v := range params {
			q[k] = v
		}
		q.Set("limit", strconv.Itoa(pageSize))
		q.Set("offset", strconv.Itoa(offset))

		var page listResponse
		if err := c.GetJSON(ctx, path, q, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Data...)
		offset += len(page.Data)

		if len(page.Data) == 0 || offset >= page.Total {
			break
		}
	}
	return all, nil
}

// Ping verifies the credentials by fetching a token.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Token(ctx)
	return err
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
