package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/yourusername/price-monitor/internal/domain/entity"
)

// Config application settings
type Config struct {
	TelegramToken     string
	HTTPAddr          string
	JoinMode          entity.JoinMode
	Thresholds        entity.Thresholds
	DefaultSite       string
	InventoryEncoding string
	AlignOffset       decimal.Decimal
	HistogramBins     int
	MaxUploadMB       int
	ExportTmpDir      string
	MaxPendingEdits   int
}

// Load reads .env (when present) and the environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		TelegramToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		HTTPAddr:          ":8080",
		Thresholds:        entity.DefaultThresholds(),
		DefaultSite:       strings.TrimSpace(os.Getenv("DEFAULT_SITE")),
		InventoryEncoding: strings.TrimSpace(os.Getenv("INVENTORY_ENCODING")),
		AlignOffset:       decimal.New(1, -2),
		HistogramBins:     20,
		MaxUploadMB:       10,
		ExportTmpDir:      os.Getenv("EXPORT_TMP_DIR"),
		MaxPendingEdits:   50,
	}

	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		config.HTTPAddr = addr
	}

	mode, err := entity.ParseJoinMode(os.Getenv("JOIN_KEY"))
	if err != nil {
		return nil, fmt.Errorf("JOIN_KEY: %w", err)
	}
	config.JoinMode = mode

	if err := decimalEnv("OUT_OF_MARKET_BELOW", &config.Thresholds.OutOfMarketBelow); err != nil {
		return nil, err
	}
	if err := decimalEnv("COMPETITIVE_FROM", &config.Thresholds.CompetitiveFrom); err != nil {
		return nil, err
	}
	if err := config.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("thresholds: %w", err)
	}

	if err := decimalEnv("ALIGN_OFFSET", &config.AlignOffset); err != nil {
		return nil, err
	}
	if config.AlignOffset.IsNegative() {
		return nil, fmt.Errorf("ALIGN_OFFSET must not be negative, got %s", config.AlignOffset)
	}

	if err := positiveIntEnv("HISTOGRAM_BINS", &config.HistogramBins); err != nil {
		return nil, err
	}
	if err := positiveIntEnv("MAX_UPLOAD_MB", &config.MaxUploadMB); err != nil {
		return nil, err
	}
	if err := positiveIntEnv("MAX_PENDING_EDITS", &config.MaxPendingEdits); err != nil {
		return nil, err
	}

	return config, nil
}

// RequireTelegram bot mode needs the token
func (c *Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is empty")
	}
	return nil
}

// MaxUploadBytes MaxUploadMB in bytes
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

func decimalEnv(key string, dst *decimal.Decimal) error {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		return fmt.Errorf("%s is not a decimal: %w", key, err)
	}
	*dst = d
	return nil
}

func positiveIntEnv(key string, dst *int) error {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%s is not a number: %w", key, err)
	}
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", key, n)
	}
	*dst = n
	return nil
}
