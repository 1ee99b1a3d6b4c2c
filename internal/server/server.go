package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"CareerFindr-backend/internal/auth"
	"CareerFindr-backend/internal/config"
	"CareerFindr-backend/internal/controller/file"
	"CareerFindr-backend/internal/database"
	"CareerFindr-backend/internal/notify"
	"CareerFindr-backend/internal/validation"
)

// MyServer hold every dependency shared by route handlers
type MyServer struct {
	Config    *config.Config
	DB        *database.DBinstanceStruct
	Storage   file.StorageClient
	Notifier  *notify.Notifier
	Blacklist auth.JwtBlacklistStore
	Redis     *redis.Client

	closers []func() error
}

// NewServer connect to database, optional redis and cloud storage, and prepare the
// http.Server listening on configured port
func NewServer(ctx context.Context, cfg *config.Config) (*MyServer, *http.Server, error) {
	auth.Configure(cfg.SecretKey, cfg.TokenLifetime)
	auth.SetAuthLogging(cfg.AuthLogging)
	validation.Register()

	db, err := database.GetMainDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database failed to initialized: %w", err)
	}

	s := &MyServer{
		Config:   cfg,
		DB:       db,
		Notifier: notify.FromConfig(cfg),
	}
	s.closers = append(s.closers, db.Close)

	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			s.Close()
			return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		s.Redis = redis.NewClient(opt)
		if err := s.Redis.Ping(ctx).Err(); err != nil {
			log.Printf("redis is not reachable, continuing anyway: %s", err)
		}
		s.Blacklist = auth.NewRedisBlacklistStore(s.Redis)
		s.closers = append(s.closers, s.Redis.Close)
	} else {
		mem := auth.NewInMemoryBlacklistStore()
		s.Blacklist = mem
		s.closers = append(s.closers, func() error { mem.Close(); return nil })
	}

	if cfg.GCSBucket != "" {
		gcs, err := file.NewCloudStorageClient(ctx, cfg.GCSBucket)
		if err != nil {
			s.Close()
			return nil, nil, fmt.Errorf("failed to create cloud storage client: %w", err)
		}
		s.Storage = gcs
		s.closers = append(s.closers, gcs.Close)
		log.Printf("Storing uploaded files in bucket %s", cfg.GCSBucket)
	} else {
		log.Println("GCS_BUCKET_NAME is not set, uploaded files are stored in database")
	}

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s, server, nil
}

// Close wait for pending notifications then release every connection in reverse order of opening
func (s *MyServer) Close() {
	if s.Notifier != nil {
		s.Notifier.Wait()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.Printf("close: %s", err)
		}
	}
	s.closers = nil
}
