package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	SourceCatalog string
	// DataYears overrides the catalog's year set when non-empty.
	DataYears []int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Scenario result publishing.
	KafkaBrokers        []string
	KafkaSinkTopic      string
	KafkaPublishEnabled bool
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is read first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	years, err := parseYears(os.Getenv("DATA_YEARS"))
	if err != nil {
		return nil, err
	}

	publish := false
	if v := os.Getenv("KAFKA_PUBLISH_ENABLED"); v != "" {
		if publish, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid KAFKA_PUBLISH_ENABLED %q", v)
		}
	}

	cfg := &Config{
		SourceCatalog:       sharedcfg.EnvOrDefault("SOURCE_CATALOG", "data/catalog.yaml"),
		DataYears:           years,
		HTTPAddr:            sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:            sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:     shutdownTimeout,
		KafkaBrokers:        sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic:      sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "scenario-results"),
		KafkaPublishEnabled: publish,
	}

	if cfg.SourceCatalog == "" {
		return nil, errors.New("SOURCE_CATALOG is required")
	}
	if cfg.KafkaPublishEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_PUBLISH_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_PUBLISH_ENABLED is true but KAFKA_SINK_TOPIC is empty")
		}
	}

	return cfg, nil
}

func parseYears(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var years []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil || y < 1900 || y > 2100 {
			return nil, fmt.Errorf("invalid DATA_YEARS entry %q", part)
		}
		if slices.Contains(years, y) {
			return nil, fmt.Errorf("duplicate DATA_YEARS entry %d", y)
		}
		years = append(years, y)
	}
	return years, nil
}
