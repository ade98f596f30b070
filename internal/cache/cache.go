package cache

import (
	"sync"
	"time"

	"github.com/skalibog/btla/pkg/models"
)

// Entry снимок последних данных по одному символу
type Entry struct {
	Rows      [][]string
	Report    *models.AnalysisReport
	UpdatedAt int64 // миллисекунды
}

// Cache хранит последние полученные данные по символам.
// Кэш живет вне аналитического движка: движок остается чистой функцией,
// а кэш обновляется только слоем, который ходит на биржу.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// New создает пустой кэш
func New() *Cache {
	return &Cache{
		entries: make(map[string]Entry),
	}
}

// Get возвращает снимок данных по символу
func (c *Cache) Get(symbol string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[symbol]
	return entry, ok
}

// SetRows обновляет свечи символа, отчет прошлого обновления сбрасывается
func (c *Cache) SetRows(symbol string, rows [][]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[symbol] = Entry{
		Rows:      rows,
		UpdatedAt: time.Now().UnixMilli(),
	}
}

// Set обновляет свечи и отчет символа одной записью
func (c *Cache) Set(symbol string, rows [][]string, report *models.AnalysisReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[symbol] = Entry{
		Rows:      rows,
		Report:    report,
		UpdatedAt: time.Now().UnixMilli(),
	}
}

// Invalidate удаляет данные символа
func (c *Cache) Invalidate(symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, symbol)
}

// LastUpdate возвращает время последнего обновления символа, 0 если данных нет
func (c *Cache) LastUpdate(symbol string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[symbol].UpdatedAt
}
