package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/skalibog/btla/internal/config"
	"golang.org/x/time/rate"
)

// successCode код успешного ответа Bitget API
const successCode = "00000"

// BitgetClient клиент рыночных данных Bitget (REST v2)
type BitgetClient struct {
	baseURL     string
	productType string
	httpClient  *http.Client
	limiter     *rate.Limiter
}

// bitgetEnvelope общий конверт ответа Bitget API
type bitgetEnvelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// NewBitgetClient создает новый клиент Bitget
func NewBitgetClient(cfg config.BitgetConfig) (*BitgetClient, error) {
	transport := http.DefaultTransport
	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("ошибка разбора адреса прокси: %w", err)
		}
		transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	interval := time.Duration(cfg.RequestIntervalMs) * time.Millisecond

	return &BitgetClient{
		baseURL:     cfg.BaseURL,
		productType: cfg.ProductType,
		httpClient: &http.Client{
			Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
			Transport: transport,
		},
		// Не чаще одного запроса за интервал
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}, nil
}

// Candles получает исторические свечи фьючерсного рынка в формате
// [timestamp, open, high, low, close, volume, amount].
// Строки упорядочиваются по возрастанию времени независимо от того,
// в каком порядке их отдала биржа.
func (c *BitgetClient) Candles(ctx context.Context, symbol, granularity string, limit int) ([][]string, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("granularity", granularity)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("productType", c.productType)
	params.Set("endTime", strconv.FormatInt(time.Now().UnixMilli(), 10))

	data, err := c.get(ctx, "/api/v2/mix/market/candles", params)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения свечей: %w", err)
	}

	var rows [][]string
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("ошибка разбора свечей: %w", err)
	}

	sortRowsAscending(rows)
	return rows, nil
}

// sortRowsAscending сортирует сырые свечи по возрастанию метки времени.
// Строки с нечитаемой меткой уходят в начало и отсеиваются адаптером серии.
func sortRowsAscending(rows [][]string) {
	ts := func(row []string) int64 {
		if len(row) == 0 {
			return 0
		}
		v, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return 0
		}
		return v
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return ts(rows[i]) < ts(rows[j])
	})
}

// LatestPrice возвращает последнюю цену закрытия
func (c *BitgetClient) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	rows, err := c.Candles(ctx, symbol, "1m", 1)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[len(rows)-1]) < 5 {
		return 0, fmt.Errorf("нет данных о цене для %s", symbol)
	}

	price, err := strconv.ParseFloat(rows[len(rows)-1][4], 64)
	if err != nil {
		return 0, fmt.Errorf("ошибка разбора цены: %w", err)
	}
	return price, nil
}

// ServerTime возвращает время сервера Bitget в миллисекундах
func (c *BitgetClient) ServerTime(ctx context.Context) (int64, error) {
	data, err := c.get(ctx, "/api/v2/public/time", nil)
	if err != nil {
		return 0, fmt.Errorf("ошибка получения времени сервера: %w", err)
	}

	var payload struct {
		ServerTime string `json:"serverTime"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, fmt.Errorf("ошибка разбора времени сервера: %w", err)
	}

	ts, err := strconv.ParseInt(payload.ServerTime, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("ошибка разбора времени сервера %q: %w", payload.ServerTime, err)
	}
	return ts, nil
}

// Ping проверяет доступность API
func (c *BitgetClient) Ping(ctx context.Context) error {
	_, err := c.ServerTime(ctx)
	return err
}

// get выполняет GET-запрос с учетом лимита частоты и разбирает конверт ответа
func (c *BitgetClient) get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("ожидание лимита запросов прервано: %w", err)
	}

	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "btla/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("неожиданный статус ответа %s: %d", endpoint, resp.StatusCode)
	}

	var envelope bitgetEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("ошибка разбора ответа: %w", err)
	}

	if envelope.Code != successCode {
		return nil, fmt.Errorf("ошибка API %s: %s", envelope.Code, envelope.Msg)
	}

	return envelope.Data, nil
}
