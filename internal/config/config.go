package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	JWTTTL      time.Duration

	// OTPLength is the one code length used by every flow; call sites must
	// not pick their own.
	OTPLength   int
	OTPLoginTTL time.Duration
	OTPResetTTL time.Duration

	GoogleAudience string

	RedisAddr         string
	RateLimitAttempts int
	RateLimitWindow   time.Duration

	OriginCacheTTL time.Duration

	LogstashTCPAddr string

	MinIOEndpoint    string
	MinIOAccessKey   string
	MinIOSecretKey   string
	MinIOUseSSL      bool
	MinIOBucketPhoto string
	MinIOPublicURL   string

	PhotoMaxBytes     int64
	PhotoMaxDimension int

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	StripeSecretKey  string
	StripeSuccessURL string
	StripeCancelURL  string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	return Config{
		Port:        getenv("PORT", "8080"),
		DatabaseURL: must("DATABASE_URL"),
		JWTSecret:   must("JWT_SECRET"),
		JWTTTL:      duration("JWT_TTL", 24*time.Hour),

		OTPLength:   integer("OTP_LENGTH", 6),
		OTPLoginTTL: duration("OTP_LOGIN_TTL", 10*time.Minute),
		OTPResetTTL: duration("OTP_RESET_TTL", 15*time.Minute),

		GoogleAudience: getenv("GOOGLE_AUDIENCE", ""),

		RedisAddr:         getenv("REDIS_ADDR", ""),
		RateLimitAttempts: integer("RATE_LIMIT_ATTEMPTS", 10),
		RateLimitWindow:   duration("RATE_LIMIT_WINDOW", 15*time.Minute),

		OriginCacheTTL: duration("ORIGIN_CACHE_TTL", 5*time.Minute),

		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),

		MinIOEndpoint:    getenv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:   getenv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:   getenv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:      getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucketPhoto: getenv("MINIO_BUCKET_PHOTO", "matrimony-photos"),
		MinIOPublicURL:   getenv("MINIO_PUBLIC_URL", ""),

		PhotoMaxBytes:     int64(integer("PHOTO_MAX_BYTES", 5*1024*1024)),
		PhotoMaxDimension: integer("PHOTO_MAX_DIMENSION", 4096),

		SMTPHost:     getenv("SMTP_HOST", ""),
		SMTPPort:     getenv("SMTP_PORT", ""),
		SMTPUsername: getenv("SMTP_USERNAME", ""),
		SMTPPassword: getenv("SMTP_PASSWORD", ""),
		SMTPFrom:     getenv("SMTP_FROM", ""),

		StripeSecretKey:  getenv("STRIPE_SECRET_KEY", ""),
		StripeSuccessURL: getenv("STRIPE_SUCCESS_URL", ""),
		StripeCancelURL:  getenv("STRIPE_CANCEL_URL", ""),
	}
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}

func integer(k string, d int) int {
	if v, err := strconv.Atoi(getenv(k, "")); err == nil && v > 0 {
		return v
	}
	return d
}

func duration(k string, d time.Duration) time.Duration {
	if v, err := time.ParseDuration(getenv(k, "")); err == nil && v > 0 {
		return v
	}
	return d
}
