package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/surithanda/matrimonyservicesapi-sub000/internal/config"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/logging"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/media"
	minioRepo "github.com/surithanda/matrimonyservicesapi-sub000/internal/repository/minio"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/repository/ports"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/repository/postgres"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/service"
	transport "github.com/surithanda/matrimonyservicesapi-sub000/internal/transport/http"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/transport/mail"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/util"
)

func main() {
	cfg := config.Load()

	if cfg.LogstashTCPAddr != "" {
		writer, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr, logging.Timeouts{})
		if err != nil {
			log.Printf("logstash writer disabled: %v", err)
		} else {
			defer writer.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, writer))
		}
	}

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	accountRepo := postgres.NewAccountRepo(db)
	challengeRepo := postgres.NewOTPChallengeRepo(db)
	profileRepo := postgres.NewProfileRepo(db)
	favoriteRepo := postgres.NewFavoriteRepo(db)
	metadataRepo := postgres.NewMetadataRepo(db)

	var storage ports.ObjectStorage = disabledStorage{}
	if cfg.MinIOEndpoint != "" {
		client, err := minioRepo.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
		if err != nil {
			log.Fatalf("connect minio: %v", err)
		}
		storage = minioRepo.NewStorage(client, cfg.MinIOPublicURL, cfg.MinIOUseSSL)
	} else {
		log.Printf("minio not configured; photo uploads disabled")
	}

	var limiter service.AttemptLimiter = service.NoopLimiter{}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		limiter = service.NewRedisLimiter(redisClient, cfg.RateLimitAttempts, cfg.RateLimitWindow)
	} else {
		log.Printf("redis not configured; rate limiting disabled")
	}

	mailer := mail.NewOTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	jwtManager := util.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	authService := service.NewAuthService(accountRepo, challengeRepo, mailer, jwtManager,
		cfg.GoogleAudience, cfg.OTPLength, cfg.OTPLoginTTL, cfg.OTPResetTTL)

	validator := media.NewValidator(cfg.PhotoMaxBytes, cfg.PhotoMaxDimension)
	profileService := service.NewProfileService(profileRepo, storage, validator, cfg.MinIOBucketPhoto)
	favoriteService := service.NewFavoriteService(favoriteRepo, profileRepo)
	metadataService := service.NewMetadataService(metadataRepo)
	paymentService := service.NewPaymentService(cfg.StripeSecretKey, cfg.StripeSuccessURL, cfg.StripeCancelURL)

	originCache := service.NewOriginCache(metadataRepo.ListAllowedOrigins, cfg.OriginCacheTTL)
	if err := originCache.Refresh(context.Background()); err != nil {
		log.Printf("initial origin refresh failed, allowing all origins until retry: %v", err)
	}

	e := transport.NewRouter(originCache)
	transport.RegisterAuth(e, authService, limiter)
	transport.RegisterProfiles(e, authService, profileService)
	transport.RegisterFavorites(e, authService, favoriteService)
	transport.RegisterMetadata(e, metadataService)
	transport.RegisterPayments(e, authService, paymentService)
	transport.RegisterSwagger(e)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

// disabledStorage keeps the profile service total when object storage is not
// configured: uploads fail with a clear error instead of a nil dereference.
type disabledStorage struct{}

func (disabledStorage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	return "", errors.New("object storage is not configured")
}

func (disabledStorage) Remove(ctx context.Context, bucket, objectName string) error {
	return errors.New("object storage is not configured")
}
