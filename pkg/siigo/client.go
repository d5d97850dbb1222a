package siigo

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jecaicedo27/toppingfrozen-backend/pkg/config"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/errors"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/logger"
)

// tokens are refreshed slightly before SIIGO expires them
const tokenExpirySkew = 60 * time.Second

var (
	errLoggerRequired      = stderrors.New("siigo logger is required")
	errCredentialsRequired = stderrors.New("siigo credentials provider is required")
)

// CredentialsProvider resolves the current SIIGO credentials, typically from
// the encrypted system_config store.
type CredentialsProvider interface {
	SiigoCredentials(ctx context.Context) (Credentials, error)
}

// Client talks to the SIIGO REST API with centralized auth, token caching,
// and error mapping.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	partnerID   string
	credentials CredentialsProvider
	logger      *logger.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient initializes the SIIGO wrapper.
func NewClient(cfg config.SiigoConfig, creds CredentialsProvider, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	if creds == nil {
		return nil, errCredentialsRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, stderrors.New("siigo base url is required")
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		partnerID:   strings.TrimSpace(cfg.PartnerID),
		credentials: creds,
		logger:      logg,
	}, nil
}

// InvalidateToken drops the cached token so the next call re-authenticates.
// Called after credential updates.
func (c *Client) InvalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.tokenExpiry = time.Time{}
	c.mu.Unlock()
}

// TestConnection authenticates with the current credentials.
func (c *Client) TestConnection(ctx context.Context) ConnectionStatus {
	c.InvalidateToken()
	if _, err := c.accessToken(ctx); err != nil {
		status := ConnectionStatus{Connected: false, Message: err.Error()}
		if appErr := errors.As(err); appErr != nil && appErr.Code() == errors.CodeRateLimit {
			status.RateLimited = true
			status.Message = "SIIGO API rate limit reached"
		}
		return status
	}
	return ConnectionStatus{Connected: true, Message: "authenticated"}
}

// GetCustomerByNIT looks up a customer by identification number.
func (c *Client) GetCustomerByNIT(ctx context.Context, nit string) (*Customer, error) {
	nit = strings.TrimSpace(nit)
	if nit == "" {
		return nil, errors.New(errors.CodeValidation, "nit is required")
	}

	query := url.Values{"identification": {nit}}
	var out listResponse[Customer]
	if err := c.doJSON(ctx, http.MethodGet, "/customers?"+query.Encode(), nil, &out); err != nil {
		return nil, err
	}
	if len(out.Results) == 0 {
		return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("customer with nit %s not found in SIIGO", nit))
	}
	return &out.Results[0], nil
}

// SearchCustomers queries customers by name fragment.
func (c *Client) SearchCustomers(ctx context.Context, term string) ([]Customer, error) {
	term = strings.TrimSpace(term)
	if len(term) < 3 {
		return nil, errors.New(errors.CodeValidation, "search term must be at least 3 characters")
	}

	query := url.Values{"name": {term}}
	var out listResponse[Customer]
	if err := c.doJSON(ctx, http.MethodGet, "/customers?"+query.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// GetCustomerInvoices returns the most recent invoices for a customer.
func (c *Client) GetCustomerInvoices(ctx context.Context, customerID string, pageSize int) ([]Invoice, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, errors.New(errors.CodeValidation, "customer id is required")
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	query := url.Values{
		"customer_id": {customerID},
		"page_size":   {fmt.Sprint(pageSize)},
	}
	var out listResponse[Invoice]
	if err := c.doJSON(ctx, http.MethodGet, "/invoices?"+query.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// accessToken returns a cached token or authenticates for a fresh one.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		token := c.token
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	creds, err := c.credentials.SiigoCredentials(ctx)
	if err != nil {
		return "", errors.Wrap(errors.CodeDependency, err, "loading siigo credentials")
	}
	if creds.Username == "" || creds.AccessKey == "" {
		return "", errors.New(errors.CodeStateConflict, "SIIGO credentials are not configured")
	}

	body, err := json.Marshal(authRequest{Username: creds.Username, AccessKey: creds.AccessKey})
	if err != nil {
		return "", errors.Wrap(errors.CodeInternal, err, "encoding siigo auth request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(errors.CodeInternal, err, "building siigo auth request")
	}
	req.Header.Set("Content-Type", "application/json")
	c.setPartnerHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(errors.CodeDependency, err, "calling siigo auth")
	}
	defer resp.Body.Close()

	if err := c.checkStatus(ctx, resp, "auth"); err != nil {
		return "", err
	}

	var auth authResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return "", errors.Wrap(errors.CodeDependency, err, "decoding siigo auth response")
	}
	if auth.AccessToken == "" {
		return "", errors.New(errors.CodeDependency, "SIIGO auth returned an empty token")
	}

	expiry := time.Now().Add(time.Duration(auth.ExpiresIn)*time.Second - tokenExpirySkew)
	c.mu.Lock()
	c.token = auth.AccessToken
	c.tokenExpiry = expiry
	c.mu.Unlock()

	return auth.AccessToken, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body io.Reader, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "building siigo request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	c.setPartnerHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(errors.CodeDependency, err, "calling siigo api")
	}
	defer resp.Body.Close()

	if err := c.checkStatus(ctx, resp, path); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "decoding siigo response")
	}
	return nil
}

func (c *Client) checkStatus(ctx context.Context, resp *http.Response, path string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	ctx = c.logger.WithFields(ctx, map[string]any{
		"siigo_path":   path,
		"siigo_status": resp.StatusCode,
	})

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		c.logger.Warn(ctx, "siigo rate limit reached")
		return errors.New(errors.CodeRateLimit, "SIIGO API rate limit reached, retry later")
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.logger.Warn(ctx, "siigo rejected credentials")
		return errors.New(errors.CodeDependency, "SIIGO rejected the configured credentials")
	default:
		c.logger.Error(ctx, "siigo request failed", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload))))
		return errors.New(errors.CodeDependency, fmt.Sprintf("SIIGO request failed with status %d", resp.StatusCode))
	}
}

func (c *Client) setPartnerHeader(req *http.Request) {
	if c.partnerID != "" {
		req.Header.Set("Partner-Id", c.partnerID)
	}
}
