package setup

import (
	"context"

	"github.com/gradeboard-dev/gradeboard/internal/config"
	"github.com/gradeboard-dev/gradeboard/internal/handler"
	"github.com/gradeboard-dev/gradeboard/internal/middleware"
	"github.com/gradeboard-dev/gradeboard/internal/service"
	s3store "github.com/gradeboard-dev/gradeboard/internal/storage/s3"
	"github.com/gradeboard-dev/gradeboard/internal/token"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config         *config.Config
	Store          *s3store.Store
	Handler        *handler.Handler
	AuthMiddleware *middleware.Auth
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	accessKey, secretKey := cfg.S3Credentials()
	store, err := s3store.New(ctx, s3store.Config{
		Bucket:          cfg.Public.S3.Bucket,
		Region:          cfg.Public.S3.Region,
		BaseEndpoint:    cfg.Public.S3.BaseEndpoint,
		AccessKeyID:     accessKey,
		SecretAccessKey: secretKey,
		RequestTimeout:  cfg.S3RequestTimeout(),
	})
	if err != nil {
		return nil, err
	}

	codec := token.New(cfg.JwtKey(), cfg.JwtTTL())

	directory := service.NewDirectory(store)
	auth := service.NewAuth(directory, codec)
	courses := service.NewCourses(store)

	h := handler.New(auth, directory, courses, store)

	return &Dependencies{
		Config:         cfg,
		Store:          store,
		Handler:        h,
		AuthMiddleware: middleware.NewAuth(codec),
	}, nil
}
