package trendline

import (
	"math"

	"github.com/markcheno/go-talib"
	"github.com/skalibog/btla/internal/config"
	"github.com/skalibog/btla/pkg/models"
)

// futurePoints число точек проекции линии тренда вперед
const futurePoints = 10

// Calculator строит линии тренда методом наименьших квадратов
type Calculator struct {
	window int
}

// NewCalculator создает новый калькулятор линий тренда
func NewCalculator(cfg config.AnalysisConfig) *Calculator {
	return &Calculator{
		window: cfg.TrendWindow,
	}
}

// Calculate строит линию поддержки по минимумам и линию сопротивления по
// максимумам последних window свечей. Для серии короче окна возвращается nil.
func (c *Calculator) Calculate(series models.CandleSeries) *models.TrendLinesResult {
	if len(series) < c.window {
		return nil
	}

	window := series.Tail(c.window)

	return &models.TrendLinesResult{
		SupportTrend:    c.fitLine(window.Lows()),
		ResistanceTrend: c.fitLine(window.Highs()),
	}
}

// fitLine подбирает прямую по индексам x = 0..n-1.
// Вырожденный результат регрессии дает нулевую линию вместо паники.
func (c *Calculator) fitLine(prices []float64) models.TrendLine {
	n := len(prices)

	slopes := talib.LinearRegSlope(prices, n)
	intercepts := talib.LinearRegIntercept(prices, n)

	slope := slopes[n-1]
	intercept := intercepts[n-1]

	if math.IsNaN(slope) || math.IsInf(slope, 0) ||
		math.IsNaN(intercept) || math.IsInf(intercept, 0) {
		return models.TrendLine{TrendDirection: "down"}
	}

	currentPrice := slope*float64(n-1) + intercept

	futurePrices := make([]float64, 0, futurePoints)
	for i := 1; i <= futurePoints; i++ {
		futurePrices = append(futurePrices, slope*float64(n-1+i)+intercept)
	}

	direction := "down"
	if slope > 0 {
		direction = "up"
	}

	return models.TrendLine{
		Slope:          slope,
		Intercept:      intercept,
		CurrentPrice:   currentPrice,
		FuturePrices:   futurePrices,
		TrendDirection: direction,
		Strength:       math.Abs(slope),
	}
}
