package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/petermazzocco/go-feed-api/internal/auth"
	"github.com/petermazzocco/go-feed-api/internal/config"
	"github.com/petermazzocco/go-feed-api/internal/feed"
	"github.com/petermazzocco/go-feed-api/internal/handlers"
	"github.com/petermazzocco/go-feed-api/internal/images"
	"github.com/petermazzocco/go-feed-api/internal/images/vips"
	"github.com/petermazzocco/go-feed-api/internal/logger"
	"github.com/petermazzocco/go-feed-api/internal/realtime"
	"github.com/petermazzocco/go-feed-api/internal/store"
)

const (
	imagePrefix     = "images"
	shutdownTimeout = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize environment variables
	if err := config.LoadDotEnv(); err != nil {
		logger.New(0).Fatal("failed to load .env", "error", err)
	}
	cfg, err := config.NewConfig()
	if err != nil {
		logger.New(0).Fatal("failed to load config", "error", err)
	}
	log := logger.New(cfg.LogLevel)

	// Database connection and migrations
	db, err := store.Open(ctx, cfg.Database.DSN)
	if err != nil {
		log.Fatal("failed to open database", "error", err)
	}
	defer store.Close(db)

	sink, err := newImageSink(ctx, cfg)
	if err != nil {
		log.Fatal("failed to set up image storage", "error", err, "backend", cfg.Images.Backend)
	}

	// Session store shared with the OAuth provider
	cookies := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	cookies.MaxAge(cfg.Session.MaxAge)
	cookies.Options.Path = "/"
	cookies.Options.HttpOnly = true
	cookies.Options.Secure = cfg.Session.Secure
	gothic.Store = cookies

	if cfg.OAuth.Key != "" {
		goth.UseProviders(google.New(cfg.OAuth.Key, cfg.OAuth.Secret, cfg.OAuth.CallbackURL, "email", "profile"))
	}

	hub := realtime.NewHub(log, cfg.HTTP.AllowedOrigins)
	go hub.Run(ctx)

	var feedOpts []feed.Option
	if cfg.Images.Inspect {
		feedOpts = append(feedOpts, feed.WithImageProcessor(vips.New(cfg.Images.MaxWidth)))
	}

	users := store.NewUserRepository(db)
	feedService := feed.NewService(users, store.NewPostRepository(db), sink, hub, log, feedOpts...)

	tokens := auth.NewTokens(cfg.JWT.Secret, cfg.JWT.TTL)
	accounts := auth.NewService(users, tokens)
	authn := auth.NewAuthenticator(tokens, cookies, log)

	h := handlers.New(feedService, accounts, log,
		handlers.WithMaxUploadBytes(cfg.HTTP.MaxUploadBytes),
		handlers.WithSessionStore(cookies),
	)

	routerOpts := handlers.RouterOptions{
		Authenticate:   authn.UserMiddleware,
		Socket:         hub,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		RateLimit:      cfg.HTTP.RateLimit,
		RateWindow:     cfg.HTTP.RateWindow,
	}
	if disk, ok := sink.(*images.DiskSink); ok {
		routerOpts.Images = disk.Handler()
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.HTTP.Port),
		Handler:           handlers.NewRouter(h, routerOpts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting API server", "addr", srv.Addr, "image_backend", cfg.Images.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

func newImageSink(ctx context.Context, cfg *config.Config) (images.Sink, error) {
	switch cfg.Images.Backend {
	case config.BackendS3:
		return newS3Sink(ctx, cfg.S3)
	case config.BackendMinio:
		client, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
			Creds:  miniocreds.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
			Secure: cfg.Minio.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return images.NewMinioSink(ctx, client, cfg.Minio.Bucket, imagePrefix)
	default:
		return images.NewDiskSink(cfg.Images.Dir, imagePrefix)
	}
}

func newS3Sink(ctx context.Context, cfg config.S3) (images.Sink, error) {
	httpClient := &http.Client{Transport: &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithHTTPClient(httpClient),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.AccessKeySecret, "")),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.EndpointURL())
		o.UsePathStyle = true
	})
	return images.NewS3Sink(client, cfg.Bucket, imagePrefix), nil
}
