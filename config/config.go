package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	TransportSMTP   = "smtp"
	TransportGmail  = "gmail"
	TransportResend = "resend"
	TransportLog    = "log"
)

var defaultRecruitmentDomains = []string{"sreenidhi.edu.in", "shu.edu.in"}

type Config struct {
	HTTPAddr string

	StoreDriver string
	MongoURI    string
	MongoDB     string
	DatabaseURL string

	EmailTransport    string
	EmailFrom         string
	EmailStrict       bool
	SMTPHost          string
	SMTPPort          int
	SMTPUser          string
	SMTPPass          string
	SMTPFallbackPorts []int

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRefreshToken string
	ResendAPIKey       string

	AllowedOrigins []string
	APIKey         string
	RateLimitRPS   float64
	RateLimitBurst int

	RecruitmentDomains []string

	CardTheme     string
	CardLogoLeft  string
	CardLogoRight string
	CardVerifyURL string
	CardTempDir   string

	JWTSecret         string
	AdminEmail        string
	AdminPasswordHash string

	LogLevel  string
	LogFile   string
	LogFormat string
}

func FromEnv() (Config, error) {
	var c Config

	c.HTTPAddr = env("HTTP_ADDR")
	if c.HTTPAddr == "" {
		if port := env("PORT"); port != "" {
			c.HTTPAddr = ":" + port
		} else {
			c.HTTPAddr = ":5000"
		}
	}

	c.StoreDriver = strings.ToLower(env("STORE_DRIVER"))
	if c.StoreDriver == "" {
		c.StoreDriver = StoreMongo
	}
	c.MongoURI = env("MONGO_URI")
	c.MongoDB = env("MONGO_DB")
	if c.MongoDB == "" {
		c.MongoDB = "c3"
	}
	c.DatabaseURL = env("DATABASE_URL")

	c.EmailTransport = strings.ToLower(env("EMAIL_TRANSPORT"))
	if c.EmailTransport == "" {
		c.EmailTransport = TransportLog
	}
	c.EmailFrom = env("EMAIL_FROM")
	c.EmailStrict = envBool("EMAIL_STRICT", false)
	c.SMTPHost = env("SMTP_HOST")
	c.SMTPPort = envInt("SMTP_PORT", 587)
	c.SMTPUser = env("SMTP_USER")
	c.SMTPPass = env("SMTP_PASS")
	c.SMTPFallbackPorts = parsePorts(env("SMTP_FALLBACK_PORTS"))
	if c.EmailFrom == "" {
		c.EmailFrom = c.SMTPUser
	}

	c.GoogleClientID = env("GOOGLE_CLIENT_ID")
	c.GoogleClientSecret = env("GOOGLE_CLIENT_SECRET")
	c.GoogleRefreshToken = env("GOOGLE_REFRESH_TOKEN")
	c.ResendAPIKey = env("RESEND_API_KEY")

	c.AllowedOrigins = splitList(env("ALLOWED_ORIGINS"))
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	c.APIKey = env("API_KEY")
	c.RateLimitRPS = envFloat("RATE_LIMIT_RPS", 5)
	c.RateLimitBurst = envInt("RATE_LIMIT_BURST", 20)

	c.RecruitmentDomains = splitList(strings.ToLower(env("RECRUITMENT_DOMAINS")))
	if len(c.RecruitmentDomains) == 0 {
		c.RecruitmentDomains = append([]string(nil), defaultRecruitmentDomains...)
	}

	c.CardTheme = env("CARD_THEME")
	c.CardLogoLeft = env("CARD_LOGO_LEFT")
	c.CardLogoRight = env("CARD_LOGO_RIGHT")
	c.CardVerifyURL = env("CARD_VERIFY_URL")
	c.CardTempDir = env("CARD_TEMP_DIR")

	c.JWTSecret = env("JWT_SECRET")
	c.AdminEmail = strings.ToLower(env("ADMIN_EMAIL"))
	c.AdminPasswordHash = env("ADMIN_PASSWORD_HASH")

	c.LogLevel = env("LOG_LEVEL")
	c.LogFile = env("LOG_FILE")
	c.LogFormat = env("LOG_FORMAT")

	if err := c.validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is empty")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is empty")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER: %s", c.StoreDriver)
	}

	switch c.EmailTransport {
	case TransportSMTP:
		if c.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST is empty")
		}
	case TransportGmail:
		if c.GoogleClientID == "" || c.GoogleClientSecret == "" || c.GoogleRefreshToken == "" {
			return fmt.Errorf("GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GOOGLE_REFRESH_TOKEN are required for gmail transport")
		}
	case TransportResend:
		if c.ResendAPIKey == "" {
			return fmt.Errorf("RESEND_API_KEY is empty")
		}
	case TransportLog:
	default:
		return fmt.Errorf("unknown EMAIL_TRANSPORT: %s", c.EmailTransport)
	}

	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive")
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envInt(key string, def int) int {
	raw := env(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func envFloat(key string, def float64) float64 {
	raw := env(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	raw := env(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func splitList(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func parsePorts(raw string) []int {
	ports := []int{}
	for _, p := range splitList(raw) {
		v, err := strconv.Atoi(p)
		if err != nil || v <= 0 {
			continue
		}
		ports = append(ports, v)
	}
	return ports
}
