package main

import (
	"context"
	"fmt"
	"time"

	"backoffice/catalog/internal/config"
	authdomain "backoffice/catalog/internal/domain/auth"
	productdomain "backoffice/catalog/internal/domain/product"
	"backoffice/catalog/internal/infrastructure/memory"
	"backoffice/catalog/internal/infrastructure/mongodb"
	"backoffice/catalog/internal/infrastructure/postgres"
	"backoffice/catalog/internal/infrastructure/sqlite"

	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type stores struct {
	products productdomain.DocumentStore
	users    authdomain.UserRepository
	ping     func(context.Context) error
	close    func()
}

// openStores connects the configured backend and prepares its schema.
func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg.DatabaseURL, postgres.Options{
			MaxConns:       int32(cfg.DBMaxConns),
			ConnectTimeout: cfg.DBConnectTimeout,
		})
		if err != nil {
			return stores{}, fmt.Errorf("connect postgres: %w", err)
		}
		if err := db.Migrate(ctx, cfg.UniqueCodes); err != nil {
			db.Close()
			return stores{}, fmt.Errorf("migrate postgres: %w", err)
		}
		return stores{
			products: postgres.NewProductStore(db.Pool),
			users:    postgres.NewUserRepository(db.Pool),
			ping:     db.Ping,
			close:    db.Close,
		}, nil

	case config.DriverMongo:
		client, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Host:     cfg.Mongo.Host,
			Port:     cfg.Mongo.Port,
			User:     cfg.Mongo.User,
			Password: cfg.Mongo.Password,
			DBName:   cfg.Mongo.DBName,
			Timeout:  cfg.Mongo.Timeout,
		})
		if err != nil {
			return stores{}, err
		}
		disconnect := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}
		db := client.Database(cfg.Mongo.DBName)
		products := mongodb.NewProductStore(db)
		users := mongodb.NewUserRepository(db)
		if err := products.EnsureIndexes(ctx, cfg.UniqueCodes); err != nil {
			disconnect()
			return stores{}, fmt.Errorf("product indexes: %w", err)
		}
		if err := users.EnsureIndexes(ctx); err != nil {
			disconnect()
			return stores{}, fmt.Errorf("user indexes: %w", err)
		}
		ping := func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		}
		return stores{products: products, users: users, ping: ping, close: disconnect}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath, cfg.UniqueCodes)
		if err != nil {
			return stores{}, err
		}
		return stores{
			products: sqlite.NewProductStore(db),
			users:    sqlite.NewUserRepository(db),
			ping:     db.PingContext,
			close:    func() { _ = db.Close() },
		}, nil

	case config.DriverMemory:
		return stores{
			products: memory.NewProductStore(cfg.UniqueCodes),
			users:    memory.NewUserRepository(),
			close:    func() {},
		}, nil
	}
	return stores{}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
