package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skalibog/btla/internal/analysis/report"
	"github.com/skalibog/btla/internal/analysis/series"
	"github.com/skalibog/btla/internal/cache"
	"github.com/skalibog/btla/internal/config"
	"github.com/skalibog/btla/internal/exchange"
	"github.com/skalibog/btla/pkg/logger"
	"go.uber.org/zap"
)

// latestKlines число свечей в ответе /latest
const latestKlines = 50

// Server HTTP API поверх аналитического движка
type Server struct {
	router   *gin.Engine
	source   exchange.CandleSource
	analyzer *report.Analyzer
	cache    *cache.Cache
	cfg      config.ServerConfig
	trading  config.TradingConfig
}

// New создает HTTP-сервер и регистрирует маршруты
func New(cfg config.ServerConfig, trading config.TradingConfig, source exchange.CandleSource, analyzer *report.Analyzer, store *cache.Cache) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestLogMiddleware())

	s := &Server{
		router:   router,
		source:   source,
		analyzer: analyzer,
		cache:    store,
		cfg:      cfg,
		trading:  trading,
	}

	api := router.Group("/api/crypto")
	{
		api.GET("/klines", s.handleKlines)
		api.GET("/analysis", s.handleAnalysis)
		api.GET("/latest", s.handleLatest)
		api.GET("/status", s.handleStatus)
	}

	return s
}

// Handler возвращает корневой обработчик сервера
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run запускает сервер и блокируется до отмены контекста
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP-сервер запущен", zap.Int("port", s.cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("ошибка HTTP-сервера: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// handleKlines отдает сырые свечи по символу
func (s *Server) handleKlines(c *gin.Context) {
	symbol := c.DefaultQuery("symbol", s.defaultSymbol())
	granularity := c.DefaultQuery("granularity", s.trading.Granularity)

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(s.trading.CandleLimit)))
	if err != nil || limit <= 0 {
		s.fail(c, http.StatusBadRequest, "некорректный параметр limit")
		return
	}

	rows, err := s.source.Candles(c.Request.Context(), symbol, granularity, limit)
	if err != nil {
		logger.Error("Не удалось получить свечи", zap.String("symbol", symbol), zap.Error(err))
		s.fail(c, http.StatusInternalServerError, "не удалось получить свечи")
		return
	}

	s.cache.SetRows(symbol, rows)

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      rows,
		"timestamp": time.Now().UnixMilli(),
	})
}

// handleAnalysis отдает отчет технического анализа по символу.
// Свечи берутся из кэша, при его отсутствии запрашиваются у биржи.
func (s *Server) handleAnalysis(c *gin.Context) {
	symbol := c.DefaultQuery("symbol", s.defaultSymbol())

	rows, err := s.rowsFor(c.Request.Context(), symbol, s.trading.CandleLimit)
	if err != nil {
		logger.Error("Не удалось получить данные для анализа", zap.String("symbol", symbol), zap.Error(err))
		s.fail(c, http.StatusInternalServerError, "не удалось получить данные для анализа")
		return
	}

	result, err := s.analyzer.Analyze(rows)
	if err != nil {
		if errors.Is(err, series.ErrInsufficientData) {
			// Недостаточно данных -- это контрактный результат движка, не сбой
			c.JSON(http.StatusOK, gin.H{
				"success":   true,
				"data":      gin.H{"error": err.Error()},
				"timestamp": time.Now().UnixMilli(),
			})
			return
		}
		logger.Error("Ошибка анализа", zap.String("symbol", symbol), zap.Error(err))
		s.fail(c, http.StatusInternalServerError, "ошибка анализа")
		return
	}

	s.cache.Set(symbol, rows, result)

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      result,
		"timestamp": time.Now().UnixMilli(),
	})
}

// handleLatest отдает свежие свечи вместе с отчетом одной выборкой
func (s *Server) handleLatest(c *gin.Context) {
	symbol := c.DefaultQuery("symbol", s.defaultSymbol())

	rows, err := s.source.Candles(c.Request.Context(), symbol, s.trading.Granularity, 100)
	if err != nil {
		logger.Error("Не удалось получить последние данные", zap.String("symbol", symbol), zap.Error(err))
		s.fail(c, http.StatusInternalServerError, "не удалось получить последние данные")
		return
	}

	var analysis interface{}
	result, err := s.analyzer.Analyze(rows)
	switch {
	case err == nil:
		analysis = result
		s.cache.Set(symbol, rows, result)
	case errors.Is(err, series.ErrInsufficientData):
		analysis = gin.H{"error": err.Error()}
		s.cache.SetRows(symbol, rows)
	default:
		logger.Error("Ошибка анализа", zap.String("symbol", symbol), zap.Error(err))
		s.fail(c, http.StatusInternalServerError, "ошибка анализа")
		return
	}

	tail := rows
	if len(tail) > latestKlines {
		tail = tail[len(tail)-latestKlines:]
	}

	// Цена известна из свечей даже когда отчет построить не удалось
	currentPrice := lastClose(rows)
	if result != nil {
		currentPrice = result.CurrentPrice
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"klines":        tail,
			"analysis":      analysis,
			"current_price": currentPrice,
			"timestamp":     time.Now().UnixMilli(),
		},
	})
}

// handleStatus отдает состояние сервиса по символу
func (s *Server) handleStatus(c *gin.Context) {
	symbol := c.DefaultQuery("symbol", s.defaultSymbol())
	entry, ok := s.cache.Get(symbol)

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"status":      "running",
		"last_update": entry.UpdatedAt,
		"has_data":    ok && len(entry.Rows) > 0,
	})
}

// rowsFor возвращает свечи символа из кэша или запрашивает их у биржи
func (s *Server) rowsFor(ctx context.Context, symbol string, limit int) ([][]string, error) {
	if entry, ok := s.cache.Get(symbol); ok && len(entry.Rows) > 0 {
		return entry.Rows, nil
	}
	return s.source.Candles(ctx, symbol, s.trading.Granularity, limit)
}

// lastClose возвращает цену закрытия последней свечи, 0 если данных нет
func lastClose(rows [][]string) float64 {
	if len(rows) == 0 {
		return 0
	}
	row := rows[len(rows)-1]
	if len(row) < 5 {
		return 0
	}
	price, err := strconv.ParseFloat(row[4], 64)
	if err != nil {
		return 0
	}
	return price
}

func (s *Server) defaultSymbol() string {
	if len(s.trading.Symbols) > 0 {
		return s.trading.Symbols[0]
	}
	return "ETHUSDT"
}

func (s *Server) fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   msg,
	})
}
