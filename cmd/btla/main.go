package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/skalibog/btla/internal/analysis/report"
	"github.com/skalibog/btla/internal/analysis/series"
	"github.com/skalibog/btla/internal/cache"
	"github.com/skalibog/btla/internal/config"
	"github.com/skalibog/btla/internal/exchange"
	"github.com/skalibog/btla/internal/server"
	"github.com/skalibog/btla/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// Обработка флагов командной строки
	configPath := flag.String("config", "config.yaml", "путь к файлу конфигурации")
	flag.Parse()

	// Проверяем наличие файла конфигурации
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		logger.Fatal("Файл конфигурации не найден", zap.String("path", *configPath))
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Ошибка загрузки конфигурации", zap.Error(err))
	}

	logger.Init(cfg.Server.Debug)
	defer logger.GetLogger().Sync()
	logger.Info("Загружена конфигурация",
		zap.String("path", *configPath),
		zap.Strings("symbols", cfg.Trading.Symbols),
		zap.String("source", cfg.Trading.Source))

	// Создаем контекст с отменой по сигналам завершения
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Получен сигнал завершения")
		cancel()
	}()

	// Инициализируем источник свечей
	source, err := newSource(cfg)
	if err != nil {
		logger.Fatal("Ошибка инициализации источника данных", zap.Error(err))
	}

	// Кэш последних данных и составной анализатор
	store := cache.New()
	analyzer := report.NewAnalyzer(cfg.Analysis)

	// Фоновое обновление кэша по отслеживаемым символам
	go refreshLoop(ctx, cfg, source, analyzer, store)

	// Запускаем HTTP API в основном потоке (блокирующий вызов)
	srv := server.New(cfg.Server, cfg.Trading, source, analyzer, store)
	if err := srv.Run(ctx); err != nil {
		logger.Fatal("Сервер завершился с ошибкой", zap.Error(err))
	}

	logger.Info("Завершение работы")
}

// newSource выбирает клиент биржи по конфигурации
func newSource(cfg *config.Config) (exchange.CandleSource, error) {
	switch cfg.Trading.Source {
	case "binance":
		return exchange.NewBinanceClient(cfg.Binance)
	default:
		return exchange.NewBitgetClient(cfg.Bitget)
	}
}

// refreshLoop периодически перечитывает свечи и обновляет кэш отчетов.
// Символы обновляются параллельно, ошибка одного символа не мешает остальным.
func refreshLoop(ctx context.Context, cfg *config.Config, source exchange.CandleSource, analyzer *report.Analyzer, store *cache.Cache) {
	ticker := time.NewTicker(time.Duration(cfg.Trading.RefreshSeconds) * time.Second)
	defer ticker.Stop()

	refresh := func() {
		var wg sync.WaitGroup
		for _, symbol := range cfg.Trading.Symbols {
			wg.Add(1)
			go func(sym string) {
				defer wg.Done()
				refreshSymbol(ctx, cfg, source, analyzer, store, sym)
			}(symbol)
		}
		wg.Wait()
	}

	refresh()
	for {
		select {
		case <-ticker.C:
			refresh()
		case <-ctx.Done():
			return
		}
	}
}

// refreshSymbol обновляет данные одного символа
func refreshSymbol(ctx context.Context, cfg *config.Config, source exchange.CandleSource, analyzer *report.Analyzer, store *cache.Cache, symbol string) {
	rows, err := source.Candles(ctx, symbol, cfg.Trading.Granularity, cfg.Trading.CandleLimit)
	if err != nil {
		logger.Warn("Не удалось обновить свечи", zap.String("symbol", symbol), zap.Error(err))
		return
	}

	result, err := analyzer.Analyze(rows)
	if err != nil {
		if errors.Is(err, series.ErrInsufficientData) {
			// Свечи сохраняем, отчет появится при следующих обновлениях
			store.SetRows(symbol, rows)
			logger.Warn("Недостаточно данных для отчета", zap.String("symbol", symbol), zap.Error(err))
			return
		}
		logger.Warn("Ошибка анализа при обновлении", zap.String("symbol", symbol), zap.Error(err))
		return
	}

	store.Set(symbol, rows, result)
	logger.Debug("Кэш символа обновлен",
		zap.String("symbol", symbol),
		zap.Int("candles", len(rows)),
		zap.Float64("price", result.CurrentPrice))
}
