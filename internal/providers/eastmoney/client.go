// Package eastmoney provides the primary market data client, backed by
// the Eastmoney push2 quote and history endpoints.
package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/marketlens/ashare/internal/common"
	"github.com/marketlens/ashare/internal/interfaces"
	"github.com/marketlens/ashare/internal/models"
)

const (
	DefaultBaseURL           = "https://push2his.eastmoney.com"
	DefaultQuoteBaseURL      = "https://push2.eastmoney.com"
	DefaultDataCenterBaseURL = "https://datacenter-web.eastmoney.com"
	DefaultTimeout           = 10 * time.Second
	DefaultRateLimit         = 5 // requests per second
)

// Client fetches daily bars, company profiles and index constituents
// from Eastmoney.
type Client struct {
	baseURL           string
	quoteBaseURL      string
	dataCenterBaseURL string
	httpClient        *http.Client
	logger            *common.Logger
	limiter           *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the kline history base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithQuoteBaseURL sets the realtime quote base URL
func WithQuoteBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.quoteBaseURL = baseURL
	}
}

// WithDataCenterBaseURL sets the data center base URL
func WithDataCenterBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.dataCenterBaseURL = baseURL
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

// NewClient creates a new Eastmoney client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:           DefaultBaseURL,
		quoteBaseURL:      DefaultQuoteBaseURL,
		dataCenterBaseURL: DefaultDataCenterBaseURL,
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
func (c *Client) Name() string { return "eastmoney" }

// Confidence implements interfaces.Provider
func (c *Client) Confidence() models.Confidence { return models.ConfidenceHigh }

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("eastmoney API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request against the given host
func (c *Client) get(ctx context.Context, host, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s%s?%s", host, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", host+path).Msg("eastmoney API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// secID maps a six-digit code to Eastmoney's exchange-prefixed security
// identifier: "1." for Shanghai, "0." for Shenzhen.
func secID(code string) string {
	if strings.HasPrefix(code, "6") {
		return "1." + code
	}
	return "0." + code
}

// FetchBars retrieves up to lookbackDays of qfq-adjusted daily bars,
// oldest first.
func (c *Client) FetchBars(ctx context.Context, code string, lookbackDays int) (*models.BarSeries, error) {
	params := url.Values{}
	params.Set("secid", secID(code))
	params.Set("klt", "101") // daily
	params.Set("fqt", "1")   // forward adjusted
	params.Set("fields1", "f1,f2,f3,f4,f5,f6")
	params.Set("fields2", "f51,f52,f53,f54,f55,f56,f57,f58,f59,f60,f61")
	params.Set("beg", time.Now().AddDate(0, 0, -lookbackDays*2).Format("20060102"))
	params.Set("end", "20500101")

	var resp klineResponse
	if err := c.get(ctx, c.baseURL, "/api/qt/stock/kline/get", params, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil || len(resp.Data.Klines) == 0 {
		return nil, fmt.Errorf("eastmoney: no kline data for %s", code)
	}

	bars := make([]models.Bar, 0, len(resp.Data.Klines))
	for _, line := range resp.Data.Klines {
		bar, err := parseKline(line)
		if err != nil {
			return nil, fmt.Errorf("eastmoney: malformed kline for %s: %w", code, err)
		}
		bars = append(bars, bar)
	}
	if len(bars) > lookbackDays {
		bars = bars[len(bars)-lookbackDays:]
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
		return nil, fmt.Errorf("eastmoney: invalid series for %s: %w", code, err)
	}
	return series, nil
}

// parseKline decodes one comma-joined kline record:
// date,open,close,high,low,volume,amount,amplitude,changePct,change,turnover
func parseKline(line string) (models.Bar, error) {
	fields := strings.Split(line, ",")
	if len(fields) < 7 {
		return models.Bar{}, fmt.Errorf("expected at least 7 fields, got %d", len(fields))
	}

	date, err := time.Parse("2006-01-02", fields[0])
	if err != nil {
		return models.Bar{}, err
	}

	nums := make([]float64, len(fields)-1)
	for i, f := range fields[1:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return models.Bar{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		nums[i] = v
	}

	bar := models.Bar{
		Date:   date,
		Open:   nums[0],
		Close:  nums[1],
		High:   nums[2],
		Low:    nums[3],
		Volume: int64(nums[4]) * 100, // lots of 100 shares
		Amount: nums[5],
	}
	if len(nums) >= 10 {
		bar.TurnoverRate = nums[9]
	}
	return bar, nil
}

type klineResponse struct {
	Data *struct {
		Code   string   `json:"code"`
		Name   string   `json:"name"`
		Klines []string `json:"klines"`
	} `json:"data"`
}

// FetchCompanyInfo retrieves the profile and valuation snapshot for a
// single stock.
func (c *Client) FetchCompanyInfo(ctx context.Context, code string) (*models.CompanyInfo, error) {
	params := url.Values{}
	params.Set("secid", secID(code))
	params.Set("fields", "f57,f58,f84,f85,f116,f117,f127,f162,f167")

	var resp quoteResponse
	if err := c.get(ctx, c.quoteBaseURL, "/api/qt/stock/get", params, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil || resp.Data.Code == "" {
		return nil, fmt.Errorf("eastmoney: no profile for %s", code)
	}

	d := resp.Data
	info := &models.CompanyInfo{
		Code:      code,
		Name:      d.Name,
		Industry:  d.Industry,
		Market:    models.MarketForCode(code),
		FetchedAt: time.Now(),
		Source: models.SourceTag{
			Provider:   c.Name(),
			Confidence: c.Confidence(),
		},
	}
	info.TotalShares = int64(d.TotalShares)
	info.FloatShares = int64(d.FloatShares)
	// 1/100 scaled ratios come through as raw hundredths
	if d.PE != 0 {
		pe := float64(d.PE) / 100
		info.PE = &pe
	}
	if d.PB != 0 {
		pb := float64(d.PB) / 100
		info.PB = &pb
	}
	return info, nil
}

type quoteResponse struct {
	Data *struct {
		Code        string      `json:"f57"`
		Name        string      `json:"f58"`
		TotalShares flexFloat64 `json:"f84"`
		FloatShares flexFloat64 `json:"f85"`
		TotalCap    flexFloat64 `json:"f116"`
		FloatCap    flexFloat64 `json:"f117"`
		Industry    string      `json:"f127"`
		PE          flexFloat64 `json:"f162"`
		PB          flexFloat64 `json:"f167"`
	} `json:"data"`
}

// FetchConstituents retrieves the weighted constituent list of an index
// from the data center report API.
func (c *Client) FetchConstituents(ctx context.Context, indexCode string) ([]models.Constituent, error) {
	params := url.Values{}
	params.Set("reportName", "RPT_INDEX_TS_COMPONENT")
	params.Set("columns", "SECURITY_CODE,SECURITY_NAME_ABBR,WEIGHT,INDUSTRY")
	params.Set("filter", fmt.Sprintf(`(INDEX_CODE="%s")`, indexCode))
	params.Set("pageSize", "500")
	params.Set("sortColumns", "WEIGHT")
	params.Set("sortTypes", "-1")

	var resp constituentResponse
	if err := c.get(ctx, c.dataCenterBaseURL, "/api/data/v1/get", params, &resp); err != nil {
		return nil, err
	}
	if resp.Result == nil || len(resp.Result.Data) == 0 {
		return nil, fmt.Errorf("eastmoney: no constituents for index %s", indexCode)
	}

	out := make([]models.Constituent, 0, len(resp.Result.Data))
	for _, row := range resp.Result.Data {
		out = append(out, models.Constituent{
			Code:     row.Code,
			Name:     row.Name,
			Weight:   float64(row.Weight),
			Industry: row.Industry,
			Market:   models.MarketForCode(row.Code),
		})
	}
	return out, nil
}

type constituentResponse struct {
	Result *struct {
		Data []struct {
			Code     string      `json:"SECURITY_CODE"`
			Name     string      `json:"SECURITY_NAME_ABBR"`
			Weight   flexFloat64 `json:"WEIGHT"`
			Industry string      `json:"INDUSTRY"`
		} `json:"data"`
	} `json:"result"`
}

// Ensure Client implements Provider
var _ interfaces.Provider = (*Client)(nil)
