package optimizer

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/skalibog/btla/pkg/models"
)

// roundMultipliers множители для расчета круглых уровней
var roundMultipliers = []int{1, 5, 10, 50, 100}

// Calculator притягивает расчетные уровни к психологически значимым ценам
type Calculator struct{}

// NewCalculator создает новый оптимизатор ценовых уровней
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Calculate строит психологические и круглые уровни вокруг текущей цены и
// притягивает уровни Фибоначчи и разворота к значимой точности.
// Нулевая или отрицательная цена дает пустой результат, не панику.
func (c *Calculator) Calculate(currentPrice float64, fib models.FibonacciResult, piv *models.PivotResult) models.OptimizedLevels {
	optimized := models.OptimizedLevels{
		OptimizedFibonacci: make(map[string]models.SnappedLevel),
	}
	if currentPrice <= 0 {
		return optimized
	}

	magnitude := priceMagnitude(currentPrice)

	// Психологические уровни: целые шаги масштаба цены в пределах 10%
	for i := -5; i <= 5; i++ {
		level := math.Round(currentPrice/magnitude+float64(i)) * magnitude
		if level <= 0 {
			continue
		}
		distance := math.Abs(level-currentPrice) / currentPrice
		if distance <= 0.1 {
			optimized.PsychologicalLevels = append(optimized.PsychologicalLevels, models.PriceLevel{
				Price:           level,
				DistancePercent: distance * 100,
				Type:            "psychological",
			})
		}
	}

	// Круглые уровни: более крупные шаги в пределах 5%
	for _, multiplier := range roundMultipliers {
		base := magnitude * float64(multiplier)
		for i := -3; i <= 3; i++ {
			level := math.Round(currentPrice/base+float64(i)) * base
			if level <= 0 {
				continue
			}
			distance := math.Abs(level-currentPrice) / currentPrice
			if distance <= 0.05 {
				optimized.RoundNumbers = append(optimized.RoundNumbers, models.PriceLevel{
					Price:           level,
					DistancePercent: distance * 100,
					Type:            fmt.Sprintf("round_%d", multiplier),
				})
			}
		}
	}

	for name, level := range fib.Levels {
		optimized.OptimizedFibonacci[name] = snapLevel(level.Price)
	}

	if piv != nil {
		pivots := &models.OptimizedPivots{
			Pivot:            snapLevel(piv.Pivot),
			ResistanceLevels: make(map[string]models.SnappedLevel, len(piv.ResistanceLevels)),
			SupportLevels:    make(map[string]models.SnappedLevel, len(piv.SupportLevels)),
		}
		for name, price := range piv.ResistanceLevels {
			pivots.ResistanceLevels[name] = snapLevel(price)
		}
		for name, price := range piv.SupportLevels {
			pivots.SupportLevels[name] = snapLevel(price)
		}
		optimized.OptimizedPivots = pivots
	}

	return optimized
}

// priceMagnitude возвращает масштаб цены: 10 в степени
// (число цифр целой части минус два)
func priceMagnitude(price float64) float64 {
	digits := len(strconv.Itoa(int(price)))
	return math.Pow(10, float64(digits-2))
}

// snapLevel притягивает цену к значимой точности по ее величине
func snapLevel(price float64) models.SnappedLevel {
	snapped := roundToSignificant(price)

	adjustment := 0.0
	if price != 0 {
		adjustment = math.Abs(snapped-price) / price * 100
	}

	return models.SnappedLevel{
		Original:   price,
		Optimized:  snapped,
		Adjustment: adjustment,
	}
}

// roundToSignificant округляет цену до шага, зависящего от ее диапазона.
// Округление через decimal, чтобы уровни не несли двоичных артефактов
// вида 105.60000000000001.
func roundToSignificant(price float64) float64 {
	if price <= 0 {
		return price
	}

	var precision float64
	switch {
	case price >= 1000:
		precision = 10
	case price >= 100:
		precision = 5
	case price >= 10:
		precision = 1
	case price >= 1:
		precision = 0.1
	default:
		precision = 0.01
	}

	p := decimal.NewFromFloat(precision)
	snapped, _ := decimal.NewFromFloat(price).Div(p).Round(0).Mul(p).Float64()
	return snapped
}
