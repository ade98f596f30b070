package report

import (
	"github.com/skalibog/btla/internal/analysis/fibonacci"
	"github.com/skalibog/btla/internal/analysis/movingaverage"
	"github.com/skalibog/btla/internal/analysis/optimizer"
	"github.com/skalibog/btla/internal/analysis/pivots"
	"github.com/skalibog/btla/internal/analysis/series"
	"github.com/skalibog/btla/internal/analysis/srlevels"
	"github.com/skalibog/btla/internal/analysis/trendline"
	"github.com/skalibog/btla/internal/config"
	"github.com/skalibog/btla/pkg/logger"
	"github.com/skalibog/btla/pkg/models"
	"go.uber.org/zap"
)

// Analyzer объединяет все калькуляторы технического анализа.
// Анализатор не хранит состояния между вызовами, вся конфигурация
// фиксируется при создании, поэтому Analyze безопасно вызывать
// конкурентно с независимыми сериями.
type Analyzer struct {
	maCalc    *movingaverage.Calculator
	fibCalc   *fibonacci.Calculator
	pivotCalc *pivots.Calculator
	trendCalc *trendline.Calculator
	srCalc    *srlevels.Calculator
	optCalc   *optimizer.Calculator
}

// NewAnalyzer создает новый составной анализатор
func NewAnalyzer(cfg config.AnalysisConfig) *Analyzer {
	return &Analyzer{
		maCalc:    movingaverage.NewCalculator(cfg),
		fibCalc:   fibonacci.NewCalculator(cfg),
		pivotCalc: pivots.NewCalculator(cfg),
		trendCalc: trendline.NewCalculator(cfg),
		srCalc:    srlevels.NewCalculator(cfg),
		optCalc:   optimizer.NewCalculator(),
	}
}

// Analyze строит полный отчет по сырым строкам свечей.
// Серия валидируется и сортируется адаптером; если валидных свечей
// меньше двадцати, возвращается series.ErrInsufficientData.
// Отчет детерминирован: одинаковый вход дает одинаковый результат.
func (a *Analyzer) Analyze(rows [][]string) (*models.AnalysisReport, error) {
	candles, err := series.Build(rows)
	if err != nil {
		return nil, err
	}

	last := candles.Last()
	currentPrice := last.Close

	report := &models.AnalysisReport{
		CurrentPrice:          currentPrice,
		Timestamp:             last.Timestamp,
		MovingAverages:        a.maCalc.Calculate(candles),
		FibonacciRetracements: a.fibCalc.Calculate(candles),
		PivotPoints:           a.pivotCalc.Calculate(candles),
		TrendLines:            a.trendCalc.Calculate(candles),
		SupportResistance:     a.srCalc.Calculate(candles),
	}

	report.OptimizedLevels = a.optCalc.Calculate(
		currentPrice,
		report.FibonacciRetracements,
		report.PivotPoints,
	)

	logger.Debug("Анализ завершен",
		zap.Int("candles", len(candles)),
		zap.Float64("price", currentPrice),
		zap.Int64("timestamp", last.Timestamp))

	return report, nil
}
