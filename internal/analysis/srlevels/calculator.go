package srlevels

import (
	"math"
	"sort"

	"github.com/skalibog/btla/internal/config"
	"github.com/skalibog/btla/pkg/models"
)

// Calculator находит локальные экстремумы и кластеризует их в уровни
type Calculator struct {
	window      int
	tolerance   float64
	maxClusters int
}

// NewCalculator создает новый детектор уровней поддержки и сопротивления
func NewCalculator(cfg config.AnalysisConfig) *Calculator {
	return &Calculator{
		window:      cfg.SRWindow,
		tolerance:   cfg.ClusterTolerance,
		maxClusters: cfg.MaxClusters,
	}
}

// Calculate ищет локальные максимумы и минимумы в последнем окне серии.
// Экстремум должен строго превосходить обе свечи с каждой стороны.
// Кандидаты кластеризуются по относительной близости цен; отсутствие
// кандидатов дает пустые списки, это валидный результат.
func (c *Calculator) Calculate(series models.CandleSeries) models.SupportResistanceResult {
	window := series.Tail(c.window)
	highs := window.Highs()
	lows := window.Lows()

	var resistanceCandidates, supportCandidates []float64

	for i := 2; i < len(window)-2; i++ {
		// Локальный максимум
		if highs[i] > highs[i-1] && highs[i] > highs[i-2] &&
			highs[i] > highs[i+1] && highs[i] > highs[i+2] {
			resistanceCandidates = append(resistanceCandidates, highs[i])
		}

		// Локальный минимум
		if lows[i] < lows[i-1] && lows[i] < lows[i-2] &&
			lows[i] < lows[i+1] && lows[i] < lows[i+2] {
			supportCandidates = append(supportCandidates, lows[i])
		}
	}

	return models.SupportResistanceResult{
		ResistanceLevels: c.clusterLevels(resistanceCandidates),
		SupportLevels:    c.clusterLevels(supportCandidates),
	}
}

// clusterLevels объединяет близкие цены в кластеры.
// Цены сортируются по возрастанию, кандидат присоединяется к текущему
// кластеру, если отклонение от его последнего члена не превышает tolerance.
// Кластеры упорядочены по убыванию силы; при равной силе сохраняется
// порядок по возрастанию цены (стабильная сортировка).
func (c *Calculator) clusterLevels(prices []float64) []models.PriceCluster {
	if len(prices) == 0 {
		return nil
	}

	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)

	var clusters []models.PriceCluster
	current := []float64{sorted[0]}

	flush := func() {
		sum := 0.0
		for _, p := range current {
			sum += p
		}
		clusters = append(clusters, models.PriceCluster{
			Price:    sum / float64(len(current)),
			Count:    len(current),
			Strength: len(current),
		})
	}

	for _, price := range sorted[1:] {
		last := current[len(current)-1]
		if math.Abs(price-last)/last <= c.tolerance {
			current = append(current, price)
		} else {
			flush()
			current = []float64{price}
		}
	}
	flush()

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Strength > clusters[j].Strength
	})

	if len(clusters) > c.maxClusters {
		clusters = clusters[:c.maxClusters]
	}
	return clusters
}
