package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Redis     RedisConfig
	Cache     CacheConfig
	S3        S3Config
	Storage   StorageConfig
	Geocode   GeocodeConfig
	Weather   WeatherConfig
	OpenAI    OpenAIConfig
	Party     PartyConfig
	Scheduler SchedulerConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Driver   string // postgres, mysql, sqlite
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	Path     string // sqlite 파일 경로
}

type JWTConfig struct {
	Secret        string
	SessionExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// CacheConfig 읽기 캐시 설정 (짧은 TTL, 정합성 보장용 아님)
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

type S3Config struct {
	Enabled         bool
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
}

// StorageConfig 맛집/리뷰 저장소 선택
type StorageConfig struct {
	Backend   string // sql, sheet
	SheetPath string
}

type GeocodeConfig struct {
	Provider  string // kakao, nominatim
	KakaoKey  string
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

type WeatherConfig struct {
	BaseURL    string
	Timeout    time.Duration
	DefaultLat float64
	DefaultLon float64
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// PartyConfig 밥약(파티) 정책
type PartyConfig struct {
	RevealTime       string // HH:MM, 익명 공개 시각
	Timezone         string
	HostLeavePolicy  string // forbid, allow, delete, transfer
	MinPeople        int
	MaxPeople        int
	DefaultMaxPeople int
}

type SchedulerConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "matjip"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Path:     getEnv("DB_PATH", "matjip.db"),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "your-secret-key"),
			SessionExpiry: parseDuration(getEnv("JWT_SESSION_EXPIRY", "12h"), 12*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Redis: RedisConfig{
			Enabled:  parseBool(getEnv("REDIS_ENABLED", "false")),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		Cache: CacheConfig{
			Enabled: parseBool(getEnv("CACHE_ENABLED", "true")),
			TTL:     parseDuration(getEnv("CACHE_TTL", "30s"), 30*time.Second),
			Prefix:  getEnv("CACHE_PREFIX", "matjip:"),
		},
		S3: S3Config{
			Enabled:         parseBool(getEnv("S3_ENABLED", "false")),
			Region:          getEnv("AWS_REGION", "ap-northeast-2"),
			Bucket:          getEnv("AWS_S3_BUCKET", "matjip-uploads"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
		},
		Storage: StorageConfig{
			Backend:   getEnv("STORAGE_BACKEND", "sql"),
			SheetPath: getEnv("SHEET_PATH", "matjip.xlsx"),
		},
		Geocode: GeocodeConfig{
			Provider:  getEnv("GEOCODE_PROVIDER", "nominatim"),
			KakaoKey:  getEnv("KAKAO_CLIENT_ID", ""),
			BaseURL:   getEnv("GEOCODE_BASE_URL", ""),
			UserAgent: getEnv("GEOCODE_USER_AGENT", "matjip-backend"),
			Timeout:   parseDuration(getEnv("GEOCODE_TIMEOUT", "5s"), 5*time.Second),
		},
		Weather: WeatherConfig{
			BaseURL:    getEnv("WEATHER_BASE_URL", "https://api.open-meteo.com/v1/forecast"),
			Timeout:    parseDuration(getEnv("WEATHER_TIMEOUT", "10s"), 10*time.Second),
			DefaultLat: parseFloat(getEnv("WEATHER_DEFAULT_LAT", "37.5665"), 37.5665),
			DefaultLon: parseFloat(getEnv("WEATHER_DEFAULT_LON", "126.9780"), 126.9780),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1/chat/completions"),
			Timeout: parseDuration(getEnv("OPENAI_TIMEOUT", "20s"), 20*time.Second),
		},
		Party: PartyConfig{
			RevealTime:       getEnv("PARTY_REVEAL_TIME", "12:30"),
			Timezone:         getEnv("TIMEZONE", "Asia/Seoul"),
			HostLeavePolicy:  getEnv("PARTY_HOST_LEAVE_POLICY", "forbid"),
			MinPeople:        parseInt(getEnv("PARTY_MIN_PEOPLE", "2"), 2),
			MaxPeople:        parseInt(getEnv("PARTY_MAX_PEOPLE", "10"), 10),
			DefaultMaxPeople: parseInt(getEnv("PARTY_DEFAULT_MAX_PEOPLE", "4"), 4),
		},
		Scheduler: SchedulerConfig{
			Enabled: parseBool(getEnv("SCHEDULER_ENABLED", "true")),
		},
	}

	if _, _, err := config.Party.RevealClock(); err != nil {
		return nil, err
	}

	return config, nil
}

// DSN returns the driver specific connection string
func (c *DatabaseConfig) DSN() string {
	switch c.Driver {
	case "mysql":
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = fmt.Sprintf("%s:%s", c.Host, c.Port)
		mc.DBName = c.DBName
		mc.ParseTime = true
		mc.Params = map[string]string{"charset": "utf8mb4"}
		return mc.FormatDSN()
	case "sqlite":
		return c.Path
	default:
		return fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
		)
	}
}

// RevealClock parses RevealTime into hour and minute
func (c *PartyConfig) RevealClock() (int, int, error) {
	t, err := time.Parse("15:04", c.RevealTime)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid PARTY_REVEAL_TIME %q: %w", c.RevealTime, err)
	}
	return t.Hour(), t.Minute(), nil
}

// Location loads the configured timezone, falling back to the host zone
func (c *PartyConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Invalid timezone %s, using local", c.Timezone)
		return time.Local
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

func parseFloat(s string, fallback float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}

func parseBool(s string) bool {
	v, _ := strconv.ParseBool(s)
	return v
}

func parseSlice(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
