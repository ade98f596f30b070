package pivots

import (
	"github.com/skalibog/btla/internal/config"
	"github.com/skalibog/btla/pkg/models"
)

// Calculator рассчитывает классические уровни разворота (floor pivots)
type Calculator struct {
	window int
}

// NewCalculator создает новый калькулятор уровней разворота
func NewCalculator(cfg config.AnalysisConfig) *Calculator {
	return &Calculator{
		window: cfg.PivotWindow,
	}
}

// Calculate считает pivot и уровни R1-R3/S1-S3 по стандартной формуле.
// Максимум и минимум берутся по последним candles окна, а закрытие --
// у предпоследней свечи, как при расчете от закрытия прошлого периода.
// Для серии короче двух свечей возвращается nil, это не ошибка.
func (c *Calculator) Calculate(series models.CandleSeries) *models.PivotResult {
	if len(series) < 2 {
		return nil
	}

	window := series.Tail(c.window)

	high, low := window[0].High, window[0].Low
	for _, candle := range window {
		if candle.High > high {
			high = candle.High
		}
		if candle.Low < low {
			low = candle.Low
		}
	}
	closePrice := series[len(series)-2].Close

	pivot := (high + low + closePrice) / 3

	return &models.PivotResult{
		Pivot: pivot,
		ResistanceLevels: map[string]float64{
			"R1": 2*pivot - low,
			"R2": pivot + (high - low),
			"R3": high + 2*(pivot-low),
		},
		SupportLevels: map[string]float64{
			"S1": 2*pivot - high,
			"S2": pivot - (high - low),
			"S3": low - 2*(high-pivot),
		},
		High:  high,
		Low:   low,
		Close: closePrice,
	}
}
