package tushare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"StockPull/internal/domain/models"
	drepo "StockPull/internal/domain/repository"
	applogger "StockPull/pkg/logger"
	"StockPull/pkg/metrics"
	xhttp "StockPull/pkg/http"
)

const (
	DefaultBaseURL     = "http://api.tushare.pro"
	DefaultMinInterval = 300 * time.Millisecond
	DefaultPageSize    = 6000
	DefaultMaxPages    = 5
)

type request struct {
	APIName string         `json:"api_name"`
	Token   string         `json:"token"`
	Params  map[string]any `json:"params"`
	Fields  string         `json:"fields,omitempty"`
}

type response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data *struct {
		Fields  []string `json:"fields"`
		Items   [][]any  `json:"items"`
		HasMore bool     `json:"has_more"`
	} `json:"data"`
}

// Client calls the provider's single JSON endpoint. Every physical call
// waits on one shared limiter, so concurrent callers are spaced at least
// minInterval apart. Nothing is retried.
type Client struct {
	token    string
	baseURL  string
	http     *xhttp.Client
	limiter  *rate.Limiter
	pageSize int
	maxPages int
	log      *applogger.Logger
	metrics  drepo.Metrics

	minInterval time.Duration
	timeout     time.Duration
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithMinInterval sets the spacing between physical calls. Zero disables spacing.
func WithMinInterval(d time.Duration) Option {
	return func(c *Client) { c.minInterval = d }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithPaging(pageSize, maxPages int) Option {
	return func(c *Client) {
		if pageSize > 0 {
			c.pageSize = pageSize
		}
		if maxPages > 0 {
			c.maxPages = maxPages
		}
	}
}

func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithMetrics(m drepo.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New fails with a *models.ConfigurationError when token is empty.
func New(token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, &models.ConfigurationError{Field: "tushare.token", Message: "provider token is required"}
	}

	c := &Client{
		token:       token,
		baseURL:     DefaultBaseURL,
		pageSize:    DefaultPageSize,
		maxPages:    DefaultMaxPages,
		minInterval: DefaultMinInterval,
		timeout:     30 * time.Second,
		log:         applogger.Nop(),
		metrics:     metrics.Noop{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = xhttp.NewClient(xhttp.WithTimeout(c.timeout), xhttp.WithUserAgent("stockpull-tushare"))
	}
	if c.minInterval > 0 {
		c.limiter = rate.NewLimiter(rate.Every(c.minInterval), 1)
	} else {
		c.limiter = rate.NewLimiter(rate.Inf, 1)
	}
	c.log = c.log.With(applogger.String("component", "tushare"))
	return c, nil
}

// Call performs one request and zips the reply into rows.
func (c *Client) Call(ctx context.Context, dataset string, params map[string]string, fields string) ([]models.Row, error) {
	rows, _, err := c.call(ctx, dataset, toAny(params), fields)
	return rows, err
}

// CallAll pages through a dataset with limit/offset while the provider
// reports more rows, up to the configured page cap.
func (c *Client) CallAll(ctx context.Context, dataset string, params map[string]string, fields string) ([]models.Row, error) {
	var all []models.Row
	p := toAny(params)
	for page := 0; page < c.maxPages; page++ {
		p["limit"] = c.pageSize
		p["offset"] = len(all)

		rows, hasMore, err := c.call(ctx, dataset, p, fields)
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
		if !hasMore || len(rows) == 0 {
			return all, nil
		}
	}

	c.log.Warn("page cap reached, result truncated",
		applogger.String("dataset", dataset),
		applogger.Int("rows", len(all)),
		applogger.Int("max_pages", c.maxPages),
	)
	return all, nil
}

func (c *Client) call(ctx context.Context, dataset string, params map[string]any, fields string) ([]models.Row, bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, false, fmt.Errorf("%s: wait for rate limiter: %w", dataset, err)
	}

	start := time.Now()
	rows, hasMore, err := c.do(ctx, dataset, params, fields)
	elapsed := time.Since(start)
	c.metrics.RecordLatency("source."+dataset, elapsed.Seconds())

	if err != nil {
		kind := errorKind(err)
		c.metrics.RecordSourceCall(dataset, kind)
		c.metrics.RecordError("source_" + kind)
		c.log.Warn("source call failed",
			applogger.String("dataset", dataset),
			applogger.String("kind", kind),
			applogger.Duration("elapsed_ms", elapsed),
			applogger.Error(err),
		)
		return nil, false, err
	}

	c.metrics.RecordSourceCall(dataset, "ok")
	c.log.Debug("source call",
		applogger.String("dataset", dataset),
		applogger.Int("rows", len(rows)),
		applogger.Bool("has_more", hasMore),
		applogger.Duration("elapsed_ms", elapsed),
	)
	return rows, hasMore, nil
}

func (c *Client) do(ctx context.Context, dataset string, params map[string]any, fields string) ([]models.Row, bool, error) {
	resp, err := c.http.SendRequest(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.baseURL,
		Body: request{
			APIName: dataset,
			Token:   c.token,
			Params:  params,
			Fields:  fields,
		},
	})
	if err != nil {
		return nil, false, &models.NetworkError{Dataset: dataset, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, &models.NetworkError{Dataset: dataset, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false, &models.UpstreamError{
			Dataset: dataset,
			Code:    resp.StatusCode,
			Message: "http " + strconv.Itoa(resp.StatusCode) + ": " + snippet(body),
		}
	}

	var out response
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, false, &models.UpstreamError{Dataset: dataset, Code: -1, Message: "malformed response: " + err.Error()}
	}
	if out.Code != 0 {
		return nil, false, &models.UpstreamError{Dataset: dataset, Code: out.Code, Message: out.Msg}
	}
	if out.Data == nil {
		return []models.Row{}, false, nil
	}

	rows := make([]models.Row, 0, len(out.Data.Items))
	for _, item := range out.Data.Items {
		row := make(models.Row, len(out.Data.Fields))
		for i, f := range out.Data.Fields {
			if i < len(item) {
				row[f] = item[i]
			} else {
				row[f] = nil
			}
		}
		rows = append(rows, row)
	}
	return rows, out.Data.HasMore, nil
}

func errorKind(err error) string {
	switch err.(type) {
	case *models.NetworkError:
		return "network"
	case *models.UpstreamError:
		return "upstream"
	default:
		return "canceled"
	}
}

func toAny(params map[string]string) map[string]any {
	out := make(map[string]any, len(params)+2)
	for k, v := range params {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
