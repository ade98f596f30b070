package cache

import (
	"testing"

	"github.com/skalibog/btla/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGet(t *testing.T) {
	c := New()
	rows := [][]string{{"1700000000000", "1", "2", "0.5", "1.5", "10", "15"}}
	report := &models.AnalysisReport{CurrentPrice: 1.5}

	c.Set("ETHUSDT", rows, report)

	entry, ok := c.Get("ETHUSDT")
	require.True(t, ok)
	assert.Equal(t, rows, entry.Rows)
	assert.Equal(t, report, entry.Report)
	assert.Positive(t, entry.UpdatedAt)
}

func TestGetMissingSymbol(t *testing.T) {
	c := New()

	_, ok := c.Get("BTCUSDT")
	assert.False(t, ok)
	assert.Zero(t, c.LastUpdate("BTCUSDT"))
}

func TestSetRowsDropsStaleReport(t *testing.T) {
	c := New()
	c.Set("ETHUSDT", [][]string{{"old"}}, &models.AnalysisReport{CurrentPrice: 1})

	// Новые свечи без отчета: старый отчет больше не актуален
	c.SetRows("ETHUSDT", [][]string{{"new"}})

	entry, ok := c.Get("ETHUSDT")
	require.True(t, ok)
	assert.Nil(t, entry.Report)
	assert.Equal(t, [][]string{{"new"}}, entry.Rows)
}

func TestInvalidate(t *testing.T) {
	c := New()
	c.Set("ETHUSDT", [][]string{{"x"}}, nil)

	c.Invalidate("ETHUSDT")

	_, ok := c.Get("ETHUSDT")
	assert.False(t, ok)
}

func TestSymbolsIndependent(t *testing.T) {
	c := New()
	c.Set("ETHUSDT", [][]string{{"eth"}}, nil)
	c.Set("BTCUSDT", [][]string{{"btc"}}, nil)

	c.Invalidate("ETHUSDT")

	_, ok := c.Get("BTCUSDT")
	assert.True(t, ok)
}
