package server

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/skalibog/btla/internal/analysis/report"
	"github.com/skalibog/btla/internal/cache"
	"github.com/skalibog/btla/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource детерминированный источник свечей для тестов
type stubSource struct {
	rows [][]string
	err  error
}

func (s *stubSource) Candles(ctx context.Context, symbol, granularity string, limit int) ([][]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.rows) > limit {
		return s.rows[:limit], nil
	}
	return s.rows, nil
}

func makeRows(n int) [][]string {
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		price := 100.0 + 5.0*math.Sin(float64(i)/7.0)
		rows = append(rows, []string{
			strconv.FormatInt(int64(1700000000000+i*60000), 10),
			strconv.FormatFloat(price, 'f', 4, 64),
			strconv.FormatFloat(price+1.5, 'f', 4, 64),
			strconv.FormatFloat(price-1.5, 'f', 4, 64),
			strconv.FormatFloat(price+0.5, 'f', 4, 64),
			"10",
			"1000",
		})
	}
	return rows
}

func newTestServer(source *stubSource) (*Server, *cache.Cache) {
	cfg := config.Default()
	store := cache.New()
	analyzer := report.NewAnalyzer(cfg.Analysis)
	return New(cfg.Server, cfg.Trading, source, analyzer, store), store
}

func doRequest(t *testing.T, srv *Server, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHandleKlines(t *testing.T) {
	srv, store := newTestServer(&stubSource{rows: makeRows(100)})

	rec, body := doRequest(t, srv, "/api/crypto/klines?symbol=ETHUSDT&limit=100")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["data"], 100)

	// Свечи попадают в кэш символа
	entry, ok := store.Get("ETHUSDT")
	require.True(t, ok)
	assert.Len(t, entry.Rows, 100)
}

func TestHandleKlinesBadLimit(t *testing.T) {
	srv, _ := newTestServer(&stubSource{rows: makeRows(10)})

	rec, body := doRequest(t, srv, "/api/crypto/klines?limit=abc")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestHandleKlinesSourceError(t *testing.T) {
	srv, _ := newTestServer(&stubSource{err: errors.New("биржа недоступна")})

	rec, body := doRequest(t, srv, "/api/crypto/klines")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestHandleAnalysis(t *testing.T) {
	srv, store := newTestServer(&stubSource{rows: makeRows(120)})

	rec, body := doRequest(t, srv, "/api/crypto/analysis?symbol=ETHUSDT")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, data, "current_price")
	assert.Contains(t, data, "moving_averages")
	assert.Contains(t, data, "fibonacci_retracements")
	assert.Contains(t, data, "support_resistance")
	assert.Contains(t, data, "optimized_levels")
	assert.NotContains(t, data, "error")

	entry, ok := store.Get("ETHUSDT")
	require.True(t, ok)
	assert.NotNil(t, entry.Report)
}

func TestHandleAnalysisInsufficientData(t *testing.T) {
	srv, _ := newTestServer(&stubSource{rows: makeRows(5)})

	rec, body := doRequest(t, srv, "/api/crypto/analysis")

	// Недостаточно данных -- контрактный ответ, не сбой сервера
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, data, "error")
}

func TestHandleLatest(t *testing.T) {
	srv, _ := newTestServer(&stubSource{rows: makeRows(100)})

	rec, body := doRequest(t, srv, "/api/crypto/latest?symbol=ETHUSDT")

	require.Equal(t, http.StatusOK, rec.Code)
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)

	klines, ok := data["klines"].([]interface{})
	require.True(t, ok)
	// В ответ попадают только последние 50 свечей
	assert.Len(t, klines, 50)
	assert.Contains(t, data, "analysis")
	assert.Contains(t, data, "current_price")
}

func TestHandleLatestInsufficientData(t *testing.T) {
	rows := makeRows(5)
	srv, _ := newTestServer(&stubSource{rows: rows})

	rec, body := doRequest(t, srv, "/api/crypto/latest?symbol=ETHUSDT")

	require.Equal(t, http.StatusOK, rec.Code)
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)

	analysis, ok := data["analysis"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, analysis, "error")

	// Цена берется из последней свечи, а не обнуляется вместе с отчетом
	wantClose, err := strconv.ParseFloat(rows[len(rows)-1][4], 64)
	require.NoError(t, err)
	assert.InDelta(t, wantClose, data["current_price"], 1e-9)
}

func TestHandleStatus(t *testing.T) {
	srv, store := newTestServer(&stubSource{rows: makeRows(100)})

	_, body := doRequest(t, srv, "/api/crypto/status?symbol=ETHUSDT")
	assert.Equal(t, false, body["has_data"])

	store.SetRows("ETHUSDT", makeRows(100))

	_, body = doRequest(t, srv, "/api/crypto/status?symbol=ETHUSDT")
	assert.Equal(t, true, body["has_data"])
	assert.Positive(t, body["last_update"])
}
