package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/novaframes/content-admin/config"
	httpapi "github.com/novaframes/content-admin/internal/api/http"
	"github.com/novaframes/content-admin/internal/api/http/middleware"
	"github.com/novaframes/content-admin/internal/auth"
	"github.com/novaframes/content-admin/internal/metrics"
	"github.com/novaframes/content-admin/internal/records/service"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Config      *config.Config
	Logger      *zap.Logger
	Backends    *Backends
}

func BuildRouter(ctx context.Context, dep RouterDeps) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.Config.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID, httpapi.HeaderSessionID},
		ExposeHeaders:    []string{middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestIDMiddleware(dep.Logger))
	r.Use(metrics.Middleware())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Config.Store.Driver, dep.Backends.Store)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.Timeout(dep.Config.Server.RequestTimeout))

	guard, err := authMiddleware(ctx, dep)
	if err != nil {
		return nil, err
	}

	if dep.Config.Auth.Mode == "placeholder" {
		login := httpapi.NewLoginHandler(placeholderCreds(dep.Config), auth.NewLoginLimiter(dep.Config.Auth.LoginPerMin))
		login.Register(api)
	}

	admin := api.Group("")
	admin.Use(guard)

	store := dep.Backends.Store
	content := service.NewContent(store)
	handler := httpapi.NewHandler(httpapi.HandlerDeps{
		Collections: service.NewCollections(store, dep.Backends.Blobs),
		Content:     content,
		Nested:      service.NewNested(store),
		Blobs:       dep.Backends.Blobs,
		MaxUpload:   dep.Config.Blob.MaxUploadBytes(),
	})
	handler.Register(admin)

	return r, nil
}

func placeholderCreds(cfg *config.Config) auth.Credentials {
	return auth.Credentials{Email: cfg.Auth.AdminEmail, Password: cfg.Auth.AdminPassword}
}

func authMiddleware(ctx context.Context, dep RouterDeps) (gin.HandlerFunc, error) {
	switch dep.Config.Auth.Mode {
	case "firebase":
		client, err := auth.InitializeFirebase(ctx, dep.Backends.Firebase)
		if err != nil {
			return nil, err
		}
		return auth.FirebaseAuthMiddleware(client), nil
	case "placeholder":
		dep.Logger.Warn("placeholder admin credentials in use; switch AUTH_MODE to firebase for real accounts")
		return auth.PlaceholderAuthMiddleware(placeholderCreds(dep.Config)), nil
	case "none":
		dep.Logger.Warn("admin routes are open; AUTH_MODE=none is for local development only")
		return auth.OpenAccess(), nil
	}
	return nil, fmt.Errorf("unknown auth mode %q", dep.Config.Auth.Mode)
}
