package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/climops/precip-analysis/internal/domain"
)

// Config holds all pipeline settings, populated from environment variables.
type Config struct {
	SourceRoot   string
	OutputDir    string
	WorkspaceDir string

	TargetWeekday    time.Weekday
	WindowLengthDays int
	WindowCount      int
	MinSamplesPerDay int

	DestGrid    string
	Wgrib2Path  string
	CDOPath     string
	ToolTimeout time.Duration

	StatusAddr string
	LogLevel   string
	LogFormat  string

	// Kafka window-report publishing.
	ReportBrokers []string
	ReportTopic   string
	ReportEnabled bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	targetWeekday, err := domain.ParseWeekday(envOrDefault("TARGET_WEEKDAY", "thursday"))
	if err != nil {
		return nil, fmt.Errorf("invalid TARGET_WEEKDAY: %w", err)
	}

	windowLength, err := parsePositiveInt("WINDOW_LENGTH_DAYS", 15)
	if err != nil {
		return nil, err
	}

	windowCount, err := parsePositiveInt("WINDOW_COUNT", 1)
	if err != nil {
		return nil, err
	}

	minSamples, err := parseMinSamples()
	if err != nil {
		return nil, err
	}

	toolTimeoutStr := envOrDefault("TOOL_TIMEOUT", "10m")
	toolTimeout, err2 := time.ParseDuration(toolTimeoutStr)
	if err2 != nil || toolTimeout < 0 {
		return nil, errors.New("invalid TOOL_TIMEOUT")
	}

	reportBrokers := parseBrokers(os.Getenv("REPORT_BROKERS"))
	reportEnabled := len(reportBrokers) > 0
	if v := os.Getenv("REPORT_ENABLED"); v != "" {
		reportEnabled = v == "true"
	}

	cfg := &Config{
		SourceRoot:   envOrDefault("SOURCE_ROOT", "/data/gdas"),
		OutputDir:    envOrDefault("OUTPUT_DIR", "avg_precip_analysis_output"),
		WorkspaceDir: envOrDefault("WORKSPACE_DIR", os.TempDir()),

		TargetWeekday:    targetWeekday,
		WindowLengthDays: windowLength,
		WindowCount:      windowCount,
		MinSamplesPerDay: minSamples,

		DestGrid:    envOrDefault("DEST_GRID", "r360x180"),
		Wgrib2Path:  envOrDefault("WGRIB2_PATH", "wgrib2"),
		CDOPath:     envOrDefault("CDO_PATH", "cdo"),
		ToolTimeout: toolTimeout,

		StatusAddr: envAllowEmpty("STATUS_ADDR", ":9090"),
		LogLevel:   envOrDefault("LOG_LEVEL", "info"),
		LogFormat:  envOrDefault("LOG_FORMAT", "json"),

		ReportBrokers: reportBrokers,
		ReportTopic:   envOrDefault("REPORT_TOPIC", "precip-window-reports"),
		ReportEnabled: reportEnabled,
	}

	if cfg.SourceRoot == "" {
		return nil, errors.New("SOURCE_ROOT is required")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("OUTPUT_DIR is required")
	}
	if cfg.ReportEnabled && len(cfg.ReportBrokers) == 0 {
		return nil, errors.New("REPORT_ENABLED is true but REPORT_BROKERS is not set")
	}
	if cfg.ReportEnabled && cfg.ReportTopic == "" {
		return nil, errors.New("REPORT_TOPIC is required when reporting is enabled")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envAllowEmpty is for settings where an explicitly empty value is meaningful
// (STATUS_ADDR="" disables the status server).
func envAllowEmpty(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

// parseBrokers splits a comma-separated broker list, dropping empty entries.
func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseMinSamples() (int, error) {
	s := envOrDefault("MIN_SAMPLES_PER_DAY", "2")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > len(domain.SynopticHours) {
		return 0, fmt.Errorf("invalid MIN_SAMPLES_PER_DAY: must be between 1 and %d", len(domain.SynopticHours))
	}
	return n, nil
}
