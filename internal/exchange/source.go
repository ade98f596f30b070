package exchange

import "context"

// CandleSource источник свечей рынка.
// Возвращает сырые строки [timestamp_ms, open, high, low, close, volume, amount];
// валидация и сортировка выполняются адаптером серии.
type CandleSource interface {
	Candles(ctx context.Context, symbol, granularity string, limit int) ([][]string, error)
}
