package models

// Candle представляет одну свечу OHLCV
type Candle struct {
	Timestamp int64   `json:"timestamp"` // миллисекунды
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	Amount    float64 `json:"amount"` // оборот в котируемой валюте
}

// CandleSeries упорядоченная по времени последовательность свечей.
// После построения адаптером серия не изменяется до конца анализа.
type CandleSeries []Candle

// Last возвращает последнюю свечу серии
func (s CandleSeries) Last() Candle {
	return s[len(s)-1]
}

// Tail возвращает последние n свечей (или всю серию, если она короче)
func (s CandleSeries) Tail(n int) CandleSeries {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// Closes возвращает цены закрытия
func (s CandleSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, c := range s {
		closes[i] = c.Close
	}
	return closes
}

// Highs возвращает максимумы свечей
func (s CandleSeries) Highs() []float64 {
	highs := make([]float64, len(s))
	for i, c := range s {
		highs[i] = c.High
	}
	return highs
}

// Lows возвращает минимумы свечей
func (s CandleSeries) Lows() []float64 {
	lows := make([]float64, len(s))
	for i, c := range s {
		lows[i] = c.Low
	}
	return lows
}

// MovingAverage значение скользящей средней и ее положение относительно цены
type MovingAverage struct {
	Value             float64 `json:"value"`
	SupportResistance string  `json:"support_resistance"` // "support" или "resistance"
	DistancePercent   float64 `json:"distance_percent"`
}

// FibLevel один уровень Фибоначчи
type FibLevel struct {
	Price float64 `json:"price"`
	Level float64 `json:"level"`
	Trend string  `json:"trend"`
}

// FibonacciResult уровни коррекции и расширения Фибоначчи
type FibonacciResult struct {
	Levels    map[string]FibLevel `json:"levels"`
	HighPrice float64             `json:"high_price"`
	LowPrice  float64             `json:"low_price"`
	Trend     string              `json:"trend"` // "uptrend" или "downtrend"
	Range     float64             `json:"range"`
}

// PivotResult классические уровни разворота (floor pivots)
type PivotResult struct {
	Pivot            float64            `json:"pivot"`
	ResistanceLevels map[string]float64 `json:"resistance_levels"` // R1..R3
	SupportLevels    map[string]float64 `json:"support_levels"`    // S1..S3
	High             float64            `json:"high"`
	Low              float64            `json:"low"`
	Close            float64            `json:"close"`
}

// TrendLine параметры линии тренда по методу наименьших квадратов
type TrendLine struct {
	Slope          float64   `json:"slope"`
	Intercept      float64   `json:"intercept"`
	CurrentPrice   float64   `json:"current_price"`
	FuturePrices   []float64 `json:"future_prices"`
	TrendDirection string    `json:"trend_direction"` // "up" или "down"
	Strength       float64   `json:"strength"`
}

// TrendLinesResult линии поддержки и сопротивления
type TrendLinesResult struct {
	SupportTrend    TrendLine `json:"support_trend"`
	ResistanceTrend TrendLine `json:"resistance_trend"`
}

// PriceCluster кластер близких ценовых уровней
type PriceCluster struct {
	Price    float64 `json:"price"`
	Count    int     `json:"count"`
	Strength int     `json:"strength"`
}

// SupportResistanceResult кластеры поддержки и сопротивления
type SupportResistanceResult struct {
	ResistanceLevels []PriceCluster `json:"resistance_levels"`
	SupportLevels    []PriceCluster `json:"support_levels"`
}

// PriceLevel психологический или круглый ценовой уровень
type PriceLevel struct {
	Price           float64 `json:"price"`
	DistancePercent float64 `json:"distance_percent"`
	Type            string  `json:"type"`
}

// SnappedLevel уровень, притянутый к значимой цене
type SnappedLevel struct {
	Original   float64 `json:"original"`
	Optimized  float64 `json:"optimized"`
	Adjustment float64 `json:"adjustment"` // процент коррекции
}

// OptimizedPivots уровни разворота после оптимизации
type OptimizedPivots struct {
	Pivot            SnappedLevel            `json:"pivot"`
	ResistanceLevels map[string]SnappedLevel `json:"resistance_levels"`
	SupportLevels    map[string]SnappedLevel `json:"support_levels"`
}

// OptimizedLevels результат оптимизации ценовых уровней
type OptimizedLevels struct {
	PsychologicalLevels []PriceLevel            `json:"psychological_levels"`
	RoundNumbers        []PriceLevel            `json:"round_numbers"`
	OptimizedFibonacci  map[string]SnappedLevel `json:"optimized_fibonacci"`
	OptimizedPivots     *OptimizedPivots        `json:"optimized_pivots,omitempty"`
}

// AnalysisReport итоговый отчет технического анализа.
// Значение неизменяемо после возврата из анализатора.
type AnalysisReport struct {
	CurrentPrice          float64                  `json:"current_price"`
	Timestamp             int64                    `json:"timestamp"`
	MovingAverages        map[string]MovingAverage `json:"moving_averages"`
	FibonacciRetracements FibonacciResult          `json:"fibonacci_retracements"`
	PivotPoints           *PivotResult             `json:"pivot_points,omitempty"`
	TrendLines            *TrendLinesResult        `json:"trend_lines,omitempty"`
	SupportResistance     SupportResistanceResult  `json:"support_resistance"`
	OptimizedLevels       OptimizedLevels          `json:"optimized_levels"`
}
