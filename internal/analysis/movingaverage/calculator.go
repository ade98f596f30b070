package movingaverage

import (
	"fmt"

	"github.com/markcheno/go-talib"
	"github.com/skalibog/btla/internal/config"
	"github.com/skalibog/btla/pkg/models"
)

// Calculator рассчитывает простые скользящие средние
type Calculator struct {
	periods []int
}

// NewCalculator создает новый калькулятор скользящих средних
func NewCalculator(cfg config.AnalysisConfig) *Calculator {
	return &Calculator{
		periods: cfg.MAPeriods,
	}
}

// Calculate считает SMA по ценам закрытия для каждого настроенного периода.
// Периоды длиннее серии пропускаются без ошибки.
func (c *Calculator) Calculate(series models.CandleSeries) map[string]models.MovingAverage {
	result := make(map[string]models.MovingAverage)
	currentPrice := series.Last().Close
	closes := series.Closes()

	for _, period := range c.periods {
		if len(closes) < period {
			continue
		}

		sma := talib.Sma(closes, period)
		value := sma[len(sma)-1]

		supportResistance := "resistance"
		if currentPrice > value {
			supportResistance = "support"
		}

		// Нулевая средняя возможна при нулевых закрытиях, расстояние
		// в этом случае нейтральное, иначе в отчет попадет NaN
		distance := 0.0
		if value != 0 {
			distance = (currentPrice - value) / value * 100
		}

		result[fmt.Sprintf("MA%d", period)] = models.MovingAverage{
			Value:             value,
			SupportResistance: supportResistance,
			DistancePercent:   distance,
		}
	}

	return result
}
