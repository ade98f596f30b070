package fibonacci

import (
	"fmt"

	"github.com/skalibog/btla/internal/config"
	"github.com/skalibog/btla/pkg/models"
)

// Стандартные коэффициенты коррекции и расширения
var (
	retracementLevels = []float64{0.236, 0.382, 0.5, 0.618, 0.786}
	extensionLevels   = []float64{1.272, 1.414, 1.618, 2.0}
)

// Calculator рассчитывает уровни коррекции и расширения Фибоначчи
type Calculator struct {
	window int
}

// NewCalculator создает новый калькулятор уровней Фибоначчи
func NewCalculator(cfg config.AnalysisConfig) *Calculator {
	return &Calculator{
		window: cfg.FibWindow,
	}
}

// Calculate строит уровни Фибоначчи от последнего размаха цены.
// Если максимум окна стоит позже минимума, коррекция отсчитывается вниз
// от максимума (восходящий тренд), иначе вверх от минимума.
// Плоское окно (high == low) дает нулевой размах и все уровни равны базе.
func (c *Calculator) Calculate(series models.CandleSeries) models.FibonacciResult {
	window := series.Tail(c.window)

	highIdx, lowIdx := 0, 0
	highPrice, lowPrice := window[0].High, window[0].Low
	for i, candle := range window {
		if candle.High > highPrice {
			highPrice = candle.High
			highIdx = i
		}
		if candle.Low < lowPrice {
			lowPrice = candle.Low
			lowIdx = i
		}
	}

	priceRange := highPrice - lowPrice

	var trend string
	var basePrice, multiplier float64
	if highIdx > lowIdx {
		// Коррекция в восходящем тренде
		trend = "uptrend"
		basePrice = highPrice
		multiplier = -1
	} else {
		// Коррекция в нисходящем тренде
		trend = "downtrend"
		basePrice = lowPrice
		multiplier = 1
	}

	levels := make(map[string]models.FibLevel, len(retracementLevels)+len(extensionLevels))
	for _, level := range retracementLevels {
		levels[fmt.Sprintf("Fib_%.1f%%", level*100)] = models.FibLevel{
			Price: basePrice + multiplier*priceRange*level,
			Level: level,
			Trend: trend,
		}
	}
	for _, level := range extensionLevels {
		levels[fmt.Sprintf("Ext_%.3f", level)] = models.FibLevel{
			Price: basePrice + multiplier*priceRange*level,
			Level: level,
			Trend: trend,
		}
	}

	return models.FibonacciResult{
		Levels:    levels,
		HighPrice: highPrice,
		LowPrice:  lowPrice,
		Trend:     trend,
		Range:     priceRange,
	}
}
