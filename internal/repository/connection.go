package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoOptions describes the storefront database connection. Zero pool sizes
// fall back to 100 open and 10 idle connections.
type MongoOptions struct {
	URI         string
	Database    string
	AppName     string
	MaxPoolSize uint64
	MinPoolSize uint64
}

// ConnectMongoDB opens a client for the catalog and order collections and
// checks that the primary is reachable.
func ConnectMongoDB(ctx context.Context, opts MongoOptions) (*mongo.Database, error) {
	if opts.Database == "" {
		return nil, fmt.Errorf("mongo database name is required")
	}
	maxPool, minPool := opts.MaxPoolSize, opts.MinPoolSize
	if maxPool == 0 {
		maxPool = 100
	}
	if minPool == 0 {
		minPool = 10
	}

	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(maxPool).
		SetMinPoolSize(minPool)
	if opts.AppName != "" {
		clientOpts.SetAppName(opts.AppName)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(opts.Database), nil
}

// DSN renders the lib/pq connection string.
func (c *Credentials) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.DBName)
}

func openPostgres(cred *Credentials) (*sql.DB, error) {
	db, err := sql.Open("postgres", cred.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return db, nil
}
