package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config представляет полную конфигурацию приложения
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Bitget   BitgetConfig   `yaml:"bitget"`
	Binance  BinanceConfig  `yaml:"binance"`
	Trading  TradingConfig  `yaml:"trading"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

// ServerConfig содержит настройки HTTP-сервера
type ServerConfig struct {
	Port  int  `yaml:"port"`
	Debug bool `yaml:"debug"`
}

// BitgetConfig содержит настройки подключения к Bitget
type BitgetConfig struct {
	BaseURL        string `yaml:"base_url"`
	ProxyURL       string `yaml:"proxy_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	ProductType    string `yaml:"product_type"`
	// Минимальный интервал между запросами, мс
	RequestIntervalMs int `yaml:"request_interval_ms"`
}

// BinanceConfig содержит настройки подключения к Binance (резервный источник)
type BinanceConfig struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	Testnet   bool   `yaml:"testnet"`
}

// TradingConfig содержит настройки отслеживаемых инструментов
type TradingConfig struct {
	Source         string   `yaml:"source"` // "bitget" или "binance"
	Symbols        []string `yaml:"symbols"`
	Granularity    string   `yaml:"granularity"`
	CandleLimit    int      `yaml:"candle_limit"`
	RefreshSeconds int      `yaml:"refresh_seconds"`
}

// AnalysisConfig содержит параметры расчетов технического анализа
type AnalysisConfig struct {
	MAPeriods        []int   `yaml:"ma_periods"`
	FibWindow        int     `yaml:"fib_window"`
	PivotWindow      int     `yaml:"pivot_window"`
	TrendWindow      int     `yaml:"trend_window"`
	SRWindow         int     `yaml:"sr_window"`
	ClusterTolerance float64 `yaml:"cluster_tolerance"`
	MaxClusters      int     `yaml:"max_clusters"`
}

// Load загружает конфигурацию из файла и заполняет значения по умолчанию
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("ошибка разбора файла конфигурации: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	var config Config
	config.applyDefaults()
	return &config
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Bitget.BaseURL == "" {
		c.Bitget.BaseURL = "https://api.bitget.com"
	}
	if c.Bitget.TimeoutSeconds == 0 {
		c.Bitget.TimeoutSeconds = 10
	}
	if c.Bitget.ProductType == "" {
		c.Bitget.ProductType = "usdt-futures"
	}
	if c.Bitget.RequestIntervalMs == 0 {
		c.Bitget.RequestIntervalMs = 100
	}
	if c.Trading.Source == "" {
		c.Trading.Source = "bitget"
	}
	if len(c.Trading.Symbols) == 0 {
		c.Trading.Symbols = []string{"ETHUSDT"}
	}
	if c.Trading.Granularity == "" {
		c.Trading.Granularity = "1m"
	}
	if c.Trading.CandleLimit == 0 {
		c.Trading.CandleLimit = 1000
	}
	if c.Trading.RefreshSeconds == 0 {
		c.Trading.RefreshSeconds = 60
	}
	if len(c.Analysis.MAPeriods) == 0 {
		c.Analysis.MAPeriods = []int{5, 10, 20, 50, 100, 200}
	}
	if c.Analysis.FibWindow == 0 {
		c.Analysis.FibWindow = 100
	}
	if c.Analysis.PivotWindow == 0 {
		c.Analysis.PivotWindow = 24
	}
	if c.Analysis.TrendWindow == 0 {
		c.Analysis.TrendWindow = 50
	}
	if c.Analysis.SRWindow == 0 {
		c.Analysis.SRWindow = 100
	}
	if c.Analysis.ClusterTolerance == 0 {
		c.Analysis.ClusterTolerance = 0.005
	}
	if c.Analysis.MaxClusters == 0 {
		c.Analysis.MaxClusters = 5
	}
}
