package bcb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/interfaces"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/models"
)

const (
	// DefaultBaseURL is the base URL for the SGS API.
	DefaultBaseURL = "https://api.bcb.gov.br/dados/serie"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultInterval is the default minimum gap between requests.
	DefaultInterval = 200 * time.Millisecond
)

// Client is an SGS API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// Compile-time assertion
var _ interfaces.IndicatorSource = (*Client)(nil)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithInterval sets the minimum gap between requests.
func WithInterval(interval time.Duration) ClientOption {
	return func(c *Client) {
		if interval > 0 {
			c.limiter = rate.NewLimiter(rate.Every(interval), 1)
		}
	}
}

// NewClient creates a new SGS API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(DefaultInterval), 1),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get performs a GET request to the API.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &RateLimitError{RetryAfter: DefaultInterval}
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("formato", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if c.logger != nil {
		c.logger.Debug().
			Str("url", c.baseURL+path).
			Msg("BCB SGS API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// FetchSeries retrieves the raw observations of an SGS series between from
// and to, inclusive, in ascending date order.
func (c *Client) FetchSeries(ctx context.Context, code int, from, to time.Time) (*models.IndicatorSeries, error) {
	params := url.Values{}
	if !from.IsZero() {
		params.Set("dataInicial", from.Format(dateLayout))
	}
	if !to.IsZero() {
		params.Set("dataFinal", to.Format(dateLayout))
	}

	var result []observation
	if err := c.get(ctx, fmt.Sprintf("/bcdata.sgs.%d/dados", code), params, &result); err != nil {
		return nil, err
	}

	series := &models.IndicatorSeries{
		Code:      code,
		FetchedAt: time.Now(),
	}
	for _, o := range result {
		date, err := time.Parse(dateLayout, o.Data)
		if err != nil {
			return nil, fmt.Errorf("series %d: invalid date %q: %w", code, o.Data, err)
		}
		value, err := decimal.NewFromString(strings.TrimSpace(o.Valor))
		if err != nil {
			return nil, fmt.Errorf("series %d: invalid value %q: %w", code, o.Valor, err)
		}
		series.Points = append(series.Points, models.IndicatorPoint{
			Date:  date,
			Value: value.InexactFloat64(),
		})
	}

	return series, nil
}
