package series

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/skalibog/btla/pkg/logger"
	"github.com/skalibog/btla/pkg/models"
	"go.uber.org/zap"
)

// MinCandles минимальное число свечей для полного анализа
const MinCandles = 20

// ErrInsufficientData возвращается, когда свечей меньше необходимого минимума
var ErrInsufficientData = errors.New("недостаточно данных: требуется не менее 20 свечей")

// fieldCount число полей в сырой строке свечи:
// [timestamp, open, high, low, close, volume, amount]
const fieldCount = 7

// Build преобразует сырые строки биржи в валидированную серию свечей.
// Строки с нечисловыми полями или с числом полей меньше семи отбрасываются
// с предупреждением в лог. Результат отсортирован по возрастанию времени,
// сортировка стабильная. Если после отбраковки осталось меньше MinCandles
// свечей, возвращается ErrInsufficientData.
func Build(rows [][]string) (models.CandleSeries, error) {
	candles := make(models.CandleSeries, 0, len(rows))

	for i, row := range rows {
		candle, err := parseRow(row)
		if err != nil {
			logger.Warn("Свеча отброшена из-за ошибки формата",
				zap.Int("row", i),
				zap.Strings("data", row),
				zap.Error(err))
			continue
		}
		candles = append(candles, candle)
	}

	// Стабильная сортировка: свечи с одинаковым временем сохраняют исходный порядок
	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].Timestamp < candles[j].Timestamp
	})

	if len(candles) < MinCandles {
		return nil, fmt.Errorf("%w (получено %d)", ErrInsufficientData, len(candles))
	}

	return candles, nil
}

// parseRow разбирает одну сырую строку свечи
func parseRow(row []string) (models.Candle, error) {
	if len(row) < fieldCount {
		return models.Candle{}, fmt.Errorf("ожидается %d полей, получено %d", fieldCount, len(row))
	}

	timestamp, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return models.Candle{}, fmt.Errorf("ошибка разбора времени %q: %w", row[0], err)
	}

	values := make([]float64, fieldCount-1)
	for i := 1; i < fieldCount; i++ {
		v, err := strconv.ParseFloat(row[i], 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("ошибка разбора поля %d %q: %w", i, row[i], err)
		}
		values[i-1] = v
	}

	return models.Candle{
		Timestamp: timestamp,
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
		Amount:    values[5],
	}, nil
}
