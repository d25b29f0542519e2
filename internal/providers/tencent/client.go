// Package tencent provides the secondary market data client, backed by
// the gtimg fqkline endpoint. It serves bars only; profile and
// constituent lookups are not offered by this feed.
package tencent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/marketlens/ashare/internal/common"
	"github.com/marketlens/ashare/internal/interfaces"
	"github.com/marketlens/ashare/internal/models"
)

const (
	DefaultBaseURL   = "https://web.ifzq.gtimg.cn"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client fetches forward-adjusted daily bars from Tencent.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Tencent client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name implements interfaces.Provider
func (c *Client) Name() string { return "tencent" }

// Confidence implements interfaces.Provider
func (c *Client) Confidence() models.Confidence { return models.ConfidenceMedium }

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tencent API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// symbol maps a six-digit code to Tencent's exchange-prefixed symbol.
func symbol(code string) string {
	if strings.HasPrefix(code, "6") {
		return "sh" + code
	}
	return "sz" + code
}

// FetchBars retrieves up to lookbackDays of qfq-adjusted daily bars,
// oldest first.
func (c *Client) FetchBars(ctx context.Context, code string, lookbackDays int) (*models.BarSeries, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	sym := symbol(code)
	path := "/appstock/app/fqkline/get"
	reqURL := fmt.Sprintf("%s%s?param=%s,day,,,%d,qfq", c.baseURL, path, sym, lookbackDays)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Str("symbol", sym).Msg("tencent API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	var kline klineResponse
	if err := json.NewDecoder(resp.Body).Decode(&kline); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if kline.Code != 0 {
		return nil, &APIError{
			StatusCode: http.StatusOK,
			Message:    kline.Msg,
			Endpoint:   path,
		}
	}

	symData, ok := kline.Data[sym]
	if !ok {
		return nil, fmt.Errorf("tencent: no data for %s", code)
	}
	rows := symData.QfqDay
	if len(rows) == 0 {
		rows = symData.Day
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("tencent: no kline data for %s", code)
	}

	bars := make([]models.Bar, 0, len(rows))
	for _, row := range rows {
		bar, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("tencent: malformed kline for %s: %w", code, err)
		}
		bars = append(bars, bar)
	}

	series := &models.BarSeries{
		Code: code,
		Bars: bars,
		Source: models.SourceTag{
			Provider:   c.Name(),
			Confidence: c.Confidence(),
		},
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("tencent: invalid series for %s: %w", code, err)
	}
	return series, nil
}

// parseRow decodes one kline row: [date, open, close, high, low, volume].
// Values arrive as strings, occasionally as raw numbers.
func parseRow(row []json.RawMessage) (models.Bar, error) {
	if len(row) < 6 {
		return models.Bar{}, fmt.Errorf("expected at least 6 fields, got %d", len(row))
	}

	var dateStr string
	if err := json.Unmarshal(row[0], &dateStr); err != nil {
		return models.Bar{}, err
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return models.Bar{}, err
	}

	nums := make([]float64, 5)
	for i := 0; i < 5; i++ {
		v, err := parseFlex(row[i+1])
		if err != nil {
			return models.Bar{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		nums[i] = v
	}

	return models.Bar{
		Date:   date,
		Open:   nums[0],
		Close:  nums[1],
		High:   nums[2],
		Low:    nums[3],
		Volume: int64(nums[4]) * 100, // lots of 100 shares
	}, nil
}

func parseFlex(raw json.RawMessage) (float64, error) {
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("cannot unmarshal %s into float64", string(raw))
	}
	return strconv.ParseFloat(s, 64)
}

type klineResponse struct {
	Code int                       `json:"code"`
	Msg  string                    `json:"msg"`
	Data map[string]klineDailyData `json:"data"`
}

type klineDailyData struct {
	QfqDay [][]json.RawMessage `json:"qfqday"`
	Day    [][]json.RawMessage `json:"day"`
}

// FetchCompanyInfo is not supported by this feed.
func (c *Client) FetchCompanyInfo(ctx context.Context, code string) (*models.CompanyInfo, error) {
	return nil, models.ErrNotFound
}

// FetchConstituents is not supported by this feed.
func (c *Client) FetchConstituents(ctx context.Context, indexCode string) ([]models.Constituent, error) {
	return nil, models.ErrNotFound
}

// Ensure Client implements Provider
var _ interfaces.Provider = (*Client)(nil)
