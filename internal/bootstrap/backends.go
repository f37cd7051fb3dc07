package bootstrap

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"

	"github.com/novaframes/content-admin/config"
	"github.com/novaframes/content-admin/internal/auth"
	"github.com/novaframes/content-admin/internal/blob"
	"github.com/novaframes/content-admin/internal/records/repository"
)

// Backends are the remote services selected by configuration, already
// wrapped with metrics and upload guards.
type Backends struct {
	Store    repository.Store
	Blobs    blob.Uploader
	Firebase *firebase.App

	closers []func() error
}

// OpenBackends connects the configured record store and blob driver.
func OpenBackends(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Backends, error) {
	b := &Backends{}

	if needsFirebase(cfg) {
		app, err := auth.NewFirebaseApp(ctx, cfg.Firebase)
		if err != nil {
			return nil, err
		}
		b.Firebase = app
	}

	store, err := b.openStore(ctx, cfg)
	if err != nil {
		b.closeAfterFailure(log)
		return nil, err
	}
	b.Store = repository.NewInstrumented(store)

	uploader, err := b.openBlobs(ctx, cfg)
	if err != nil {
		b.closeAfterFailure(log)
		return nil, err
	}
	b.Blobs = blob.NewGuarded(uploader, cfg.Blob.Driver, cfg.Blob.MaxUploadBytes())

	log.Info("backends ready",
		zap.String("store", cfg.Store.Driver),
		zap.String("blob", cfg.Blob.Driver),
	)
	return b, nil
}

func (b *Backends) closeAfterFailure(log *zap.Logger) {
	if err := b.Close(); err != nil {
		log.Warn("closing partially opened backends", zap.Error(err))
	}
}

func needsFirebase(cfg *config.Config) bool {
	return cfg.Store.Driver == "firestore" || cfg.Blob.Driver == "firebase" || cfg.Auth.Mode == "firebase"
}

func (b *Backends) openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.Store.Driver {
	case "firestore":
		client, err := b.Firebase.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("firestore client: %w", err)
		}
		b.closers = append(b.closers, client.Close)
		return repository.NewFirestoreStore(client), nil

	case "redis":
		client, err := OpenRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, client.Close)
		return repository.NewRedisStore(client), nil

	case "postgres":
		pool, err := OpenDB(ctx, DBOptions{
			DSN:      cfg.Database.ConnString(),
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() error { pool.Close(); return nil })
		store := repository.NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil

	case "memory":
		return repository.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func (b *Backends) openBlobs(ctx context.Context, cfg *config.Config) (blob.Uploader, error) {
	switch cfg.Blob.Driver {
	case "firebase":
		return blob.NewFirebaseUploader(ctx, b.Firebase, cfg.Firebase.StorageBucket)
	case "s3":
		return blob.NewS3Uploader(ctx, blob.S3Config{
			Region:        cfg.Blob.S3Region,
			Bucket:        cfg.Blob.S3Bucket,
			Endpoint:      cfg.Blob.S3Endpoint,
			PathStyle:     cfg.Blob.S3PathStyle,
			PublicBaseURL: cfg.Blob.PublicBaseURL,
		})
	case "memory":
		return blob.NewMemoryUploader("local"), nil
	}
	return nil, fmt.Errorf("unknown blob driver %q", cfg.Blob.Driver)
}

// Close releases every connection opened by OpenBackends.
func (b *Backends) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
