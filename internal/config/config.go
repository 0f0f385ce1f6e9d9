package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port            int
	JWTSecret       string
	JWTAccessTTL    time.Duration
	AllowOrigins    []string
	RateLimitPublic RateLimitConfig
	RateLimitAuth   RateLimitConfig
	Store           StoreConfig
	RedisURL        string
	DashboardURL    string
	Location        *time.Location
	StaleThreshold  time.Duration
	Monitor         MonitorConfig
}

// StoreConfig descreve o armazenamento das abas.
type StoreConfig struct {
	Backend             string
	SheetID             string
	ServiceAccountEmail string
	PrivateKey          string
	CredentialsFile     string
	DBDSN               string
	CacheTTL            time.Duration
}

// MonitorConfig controla o vigia de demandas atrasadas.
type MonitorConfig struct {
	Enabled         bool
	Interval        time.Duration
	SlackWebhookURL string
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "3000")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	if cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", 12*time.Hour); err != nil {
		return nil, err
	}

	cfg.AllowOrigins = nil
	for _, origin := range strings.Split(getEnv("ALLOW_ORIGINS", ""), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	if cfg.RateLimitPublic, err = parseRateLimit("RATE_LIMIT_PUBLIC", RateLimitConfig{RequestsPerSecond: 5, Burst: 10}); err != nil {
		return nil, err
	}
	if cfg.RateLimitAuth, err = parseRateLimit("RATE_LIMIT_AUTH", RateLimitConfig{RequestsPerSecond: 10, Burst: 40}); err != nil {
		return nil, err
	}

	if err := loadStore(cfg); err != nil {
		return nil, err
	}

	cfg.RedisURL = strings.TrimSpace(getEnv("REDIS_URL", ""))

	cfg.DashboardURL = strings.TrimSpace(getEnv("DASHBOARD_URL", ""))
	if cfg.DashboardURL == "" && cfg.Store.SheetID != "" {
		cfg.DashboardURL = "https://docs.google.com/spreadsheets/d/" + cfg.Store.SheetID + "/edit"
	}

	tz := strings.TrimSpace(getEnv("TIMEZONE", "America/Sao_Paulo"))
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return nil, errors.New("TIMEZONE inválido")
	}

	if cfg.StaleThreshold, err = parseDurationEnv("STALE_THRESHOLD", 48*time.Hour); err != nil {
		return nil, err
	}

	if cfg.Monitor.Enabled, err = parseBoolEnv("MONITOR_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.Monitor.Interval, err = parseDurationEnv("MONITOR_INTERVAL", 30*time.Minute); err != nil {
		return nil, err
	}
	cfg.Monitor.SlackWebhookURL = strings.TrimSpace(getEnv("SLACK_WEBHOOK_URL", ""))

	return cfg, nil
}

func loadStore(cfg *Config) error {
	s := &cfg.Store
	s.Backend = strings.ToLower(strings.TrimSpace(getEnv("STORE_BACKEND", "sheets")))
	s.SheetID = strings.TrimSpace(getEnv("GOOGLE_SHEET_ID", ""))
	s.ServiceAccountEmail = strings.TrimSpace(getEnv("GOOGLE_SERVICE_ACCOUNT_EMAIL", ""))
	s.PrivateKey = strings.ReplaceAll(getEnv("GOOGLE_PRIVATE_KEY", ""), `\n`, "\n")
	s.CredentialsFile = strings.TrimSpace(getEnv("GOOGLE_CREDENTIALS_FILE", ""))
	s.DBDSN = getEnv("DB_DSN", "")

	var err error
	if s.CacheTTL, err = parseDurationEnv("CACHE_TTL", 5*time.Second); err != nil {
		return err
	}

	switch s.Backend {
	case "sheets":
		if s.SheetID == "" {
			return errors.New("GOOGLE_SHEET_ID obrigatório")
		}
		if s.CredentialsFile == "" && (s.ServiceAccountEmail == "" || s.PrivateKey == "") {
			return errors.New("GOOGLE_SERVICE_ACCOUNT_EMAIL e GOOGLE_PRIVATE_KEY (ou GOOGLE_CREDENTIALS_FILE) obrigatórios")
		}
	case "postgres":
		if s.DBDSN == "" {
			return errors.New("DB_DSN obrigatório")
		}
	case "memory":
	default:
		return errors.New("STORE_BACKEND inválido")
	}
	return nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	val := strings.TrimSpace(getEnv(key, ""))
	if val == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, errors.New(key + " inválido")
	}
	return b, nil
}

// parseRateLimit lê "rps:burst", por exemplo "5:10".
func parseRateLimit(key string, def RateLimitConfig) (RateLimitConfig, error) {
	val := strings.TrimSpace(getEnv(key, ""))
	if val == "" {
		return def, nil
	}
	rpsStr, burstStr, ok := strings.Cut(val, ":")
	if !ok {
		return RateLimitConfig{}, errors.New(key + " inválido")
	}
	rps, err := strconv.ParseFloat(rpsStr, 64)
	if err != nil || rps <= 0 {
		return RateLimitConfig{}, errors.New(key + " inválido")
	}
	burst, err := strconv.Atoi(burstStr)
	if err != nil || burst <= 0 {
		return RateLimitConfig{}, errors.New(key + " inválido")
	}
	return RateLimitConfig{RequestsPerSecond: rps, Burst: burst}, nil
}
