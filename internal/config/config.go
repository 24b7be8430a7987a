package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           string
	DBDSN          string
	LogFile        string
	RequestTimeout time.Duration
	SeedDemo       bool

	EventSink    string // "memory" or "kafka"
	KafkaBrokers []string
	EventTopic   string

	OTLPEndpoint string
	ServiceName  string
}

func env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func Load() Config {
	timeout, err := time.ParseDuration(env("REQUEST_TIMEOUT", "5s"))
	if err != nil || timeout <= 0 {
		log.Printf("[config] bad REQUEST_TIMEOUT, using 5s")
		timeout = 5 * time.Second
	}
	seed, err := strconv.ParseBool(env("SEED_DEMO", "true"))
	if err != nil {
		seed = true
	}
	sink := strings.ToLower(env("EVENT_SINK", "memory"))
	if sink != "kafka" {
		sink = "memory"
	}
	var brokers []string
	for _, b := range strings.Split(env("KAFKA_BROKERS", "localhost:9092"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	cfg := Config{
		Port:           env("PORT", "8080"),
		DBDSN:          env("DB_DSN", "dealership.db"), // sqlite file in working dir
		LogFile:        env("LOG_FILE", "./dealership.log"),
		RequestTimeout: timeout,
		SeedDemo:       seed,
		EventSink:      sink,
		KafkaBrokers:   brokers,
		EventTopic:     env("EVENT_TOPIC", "dealership.sales"),
		OTLPEndpoint:   env("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:    env("SERVICE_NAME", "dealership"),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s REQUEST_TIMEOUT=%s EVENT_SINK=%s OTLP=%q",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.RequestTimeout, cfg.EventSink, cfg.OTLPEndpoint)
	return cfg
}
