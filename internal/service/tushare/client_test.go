package tushare

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPull/internal/domain/models"
)

type fakeProvider struct {
	mu       sync.Mutex
	arrivals []time.Time
	requests []request
	reply    func(req request) (int, any)
}

func (f *fakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	f.arrivals = append(f.arrivals, time.Now())
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	status, body := f.reply(req)
	w.WriteHeader(status)
	if s, ok := body.(string); ok {
		_, _ = w.Write([]byte(s))
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

func table(fields []string, items [][]any, hasMore bool) map[string]any {
	return map[string]any{
		"code": 0,
		"msg":  "",
		"data": map[string]any{"fields": fields, "items": items, "has_more": hasMore},
	}
}

func newTestClient(t *testing.T, f *fakeProvider, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	opts = append([]Option{WithBaseURL(srv.URL), WithMinInterval(0)}, opts...)
	c, err := New("test-token", opts...)
	require.NoError(t, err)
	return c
}

func TestNewRequiresToken(t *testing.T) {
	_, err := New("  ")
	var cfgErr *models.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "tushare.token", cfgErr.Field)
}

func TestCallZipsFieldsAndItems(t *testing.T) {
	f := &fakeProvider{reply: func(req request) (int, any) {
		return http.StatusOK, table(
			[]string{"ts_code", "close", "name"},
			[][]any{{"600000.SH", 10.5, "A"}, {"000001.SZ", nil}},
			false,
		)
	}}
	c := newTestClient(t, f)

	rows, err := c.Call(context.Background(), "daily", map[string]string{"trade_date": "20240102", "empty": ""}, "ts_code,close")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "600000.SH", rows[0].String("ts_code"))
	assert.Equal(t, 10.5, rows[0].Float("close"))
	assert.Equal(t, "A", rows[0].String("name"))
	assert.True(t, rows[1].Has("name"))
	assert.Equal(t, 0.0, rows[1].Float("close"))

	require.Len(t, f.requests, 1)
	got := f.requests[0]
	assert.Equal(t, "daily", got.APIName)
	assert.Equal(t, "test-token", got.Token)
	assert.Equal(t, "ts_code,close", got.Fields)
	assert.Equal(t, "20240102", got.Params["trade_date"])
	assert.NotContains(t, got.Params, "empty")
}

func TestCallUpstreamCode(t *testing.T) {
	f := &fakeProvider{reply: func(request) (int, any) {
		return http.StatusOK, map[string]any{"code": 40203, "msg": "permission denied"}
	}}
	c := newTestClient(t, f)

	_, err := c.Call(context.Background(), "daily_basic", nil, "")
	var up *models.UpstreamError
	require.ErrorAs(t, err, &up)
	assert.Equal(t, 40203, up.Code)
	assert.Equal(t, "permission denied", up.Message)
	assert.Equal(t, "daily_basic", up.Dataset)
}

func TestCallHTTPStatusIsUpstream(t *testing.T) {
	f := &fakeProvider{reply: func(request) (int, any) {
		return http.StatusInternalServerError, "oops"
	}}
	c := newTestClient(t, f)

	_, err := c.Call(context.Background(), "daily", nil, "")
	var up *models.UpstreamError
	require.ErrorAs(t, err, &up)
	assert.Equal(t, http.StatusInternalServerError, up.Code)
}

func TestCallMalformedBody(t *testing.T) {
	f := &fakeProvider{reply: func(request) (int, any) {
		return http.StatusOK, "<html>"
	}}
	c := newTestClient(t, f)

	_, err := c.Call(context.Background(), "daily", nil, "")
	var up *models.UpstreamError
	require.ErrorAs(t, err, &up)
}

func TestCallTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New("t", WithBaseURL(url), WithMinInterval(0))
	require.NoError(t, err)

	_, err = c.Call(context.Background(), "trade_cal", nil, "")
	var netErr *models.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "trade_cal", netErr.Dataset)
}

func TestCallAllFollowsHasMore(t *testing.T) {
	f := &fakeProvider{reply: func(req request) (int, any) {
		offset, _ := req.Params["offset"].(float64)
		if offset == 0 {
			return http.StatusOK, table([]string{"ts_code"}, [][]any{{"a"}, {"b"}}, true)
		}
		return http.StatusOK, table([]string{"ts_code"}, [][]any{{"c"}}, false)
	}}
	c := newTestClient(t, f, WithPaging(2, 5))

	rows, err := c.CallAll(context.Background(), "stock_basic", nil, "ts_code")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "c", rows[2].String("ts_code"))

	require.Len(t, f.requests, 2)
	assert.Equal(t, float64(2), f.requests[1].Params["offset"])
	assert.Equal(t, float64(2), f.requests[1].Params["limit"])
}

func TestCallAllStopsAtPageCap(t *testing.T) {
	f := &fakeProvider{reply: func(req request) (int, any) {
		return http.StatusOK, table([]string{"ts_code"}, [][]any{{"x"}}, true)
	}}
	c := newTestClient(t, f, WithPaging(1, 3))

	rows, err := c.CallAll(context.Background(), "stock_basic", nil, "ts_code")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Len(t, f.requests, 3)
}

func TestConcurrentCallsAreSpaced(t *testing.T) {
	f := &fakeProvider{reply: func(request) (int, any) {
		return http.StatusOK, table([]string{"ts_code"}, nil, false)
	}}
	const interval = 50 * time.Millisecond
	c := newTestClient(t, f, WithMinInterval(interval))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Call(context.Background(), "daily", nil, "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Len(t, f.arrivals, 4)
	sort.Slice(f.arrivals, func(i, j int) bool { return f.arrivals[i].Before(f.arrivals[j]) })
	// the limiter spaces dispatch; arrival jitter is small in-process
	total := f.arrivals[3].Sub(f.arrivals[0])
	assert.GreaterOrEqual(t, total, 3*interval-15*time.Millisecond)
}

func TestWaitHonoursContext(t *testing.T) {
	f := &fakeProvider{reply: func(request) (int, any) {
		return http.StatusOK, table([]string{"ts_code"}, nil, false)
	}}
	c := newTestClient(t, f, WithMinInterval(time.Hour))

	_, err := c.Call(context.Background(), "daily", nil, "")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Call(ctx, "daily", nil, "")
	require.Error(t, err)

	var netErr *models.NetworkError
	assert.False(t, errors.As(err, &netErr))
	assert.Len(t, f.requests, 1)
}
