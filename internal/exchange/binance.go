package exchange

import (
	"context"
	"fmt"
	"strconv"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/skalibog/btla/internal/config"
)

// BinanceClient резервный источник свечей через Binance Futures
type BinanceClient struct {
	futures *futures.Client
	spot    *binance.Client
}

// NewBinanceClient создает новый клиент Binance
func NewBinanceClient(cfg config.BinanceConfig) (*BinanceClient, error) {
	futuresClient := futures.NewClient(cfg.APIKey, cfg.APISecret)
	spotClient := binance.NewClient(cfg.APIKey, cfg.APISecret)

	if cfg.Testnet {
		futures.UseTestnet = true
		// Для спот-клиента нужно изменить базовый URL
		spotClient.SetApiEndpoint("https://testnet.binance.vision")
	}

	return &BinanceClient{
		futures: futuresClient,
		spot:    spotClient,
	}, nil
}

// Candles получает исторические свечи и приводит их к общему сырому формату
// [timestamp, open, high, low, close, volume, amount].
// В качестве оборота используется объем в котируемой валюте.
func (c *BinanceClient) Candles(ctx context.Context, symbol, granularity string, limit int) ([][]string, error) {
	klines, err := c.futures.NewKlinesService().
		Symbol(symbol).
		Interval(granularity).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения свечей: %w", err)
	}

	rows := make([][]string, len(klines))
	for i, k := range klines {
		rows[i] = []string{
			strconv.FormatInt(k.OpenTime, 10),
			k.Open,
			k.High,
			k.Low,
			k.Close,
			k.Volume,
			k.QuoteAssetVolume,
		}
	}

	return rows, nil
}

// LatestPrice возвращает последнюю цену закрытия
func (c *BinanceClient) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	rows, err := c.Candles(ctx, symbol, "1m", 1)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("нет данных о цене для %s", symbol)
	}

	price, err := strconv.ParseFloat(rows[len(rows)-1][4], 64)
	if err != nil {
		return 0, fmt.Errorf("ошибка разбора цены: %w", err)
	}
	return price, nil
}
