package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go-marketplace/internal/conf"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewData,
	ProvideGoqu,
	ProvideSQLDB,
	NewUnitOfWork,
	NewListingRepo,
	NewListingSearcher,
	NewRedisListingCache,
	NewSearchCache,
	NewCachedListingRepository,
	NewCachedListingSearcher,
	NewItemRepo,
	NewCategoryRepo,
)

// Data holds the database and cache clients shared by the repositories.
type Data struct {
	pool  *pgxpool.Pool
	sqlDB *sql.DB
	db    *goqu.Database
	rdb   *redis.Client
}

// NewData connects to Postgres through a pgx pool wrapped in database/sql for goqu,
// and to Redis when an address is configured.
func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	helper := log.NewHelper(logger)
	ctx := context.Background()

	if c == nil || c.Database == nil || c.Database.Dsn == "" {
		return nil, nil, fmt.Errorf("database dsn is not configured")
	}

	cfg, err := pgxpool.ParseConfig(c.Database.Dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("could not parse pgxpool config: %w", err)
	}
	if c.Database.MaxOpenConns > 0 {
		cfg.MaxConns = c.Database.MaxOpenConns
	}
	if c.Database.MinConns > 0 {
		cfg.MinConns = c.Database.MinConns
	}
	if d := c.Database.ConnMaxLifetime.AsDuration(); d > 0 {
		cfg.MaxConnLifetime = d
	}
	if d := c.Database.ConnMaxIdleTime.AsDuration(); d > 0 {
		cfg.MaxConnIdleTime = d
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create pgx pool: %w", err)
	}

	// goqu and goose both work on database/sql
	sqlDB := stdlib.OpenDBFromPool(pool)

	d := &Data{
		pool:  pool,
		sqlDB: sqlDB,
		db:    goqu.Dialect("postgres").DB(sqlDB),
		rdb:   newRedisClient(ctx, c.Redis, helper),
	}

	cleanup := func() {
		helper.Info("closing the data resources")
		if d.rdb != nil {
			if err := d.rdb.Close(); err != nil {
				helper.Error(err)
			}
		}
		if err := d.sqlDB.Close(); err != nil {
			helper.Error(err)
		}
		d.pool.Close()
	}

	return d, cleanup, nil
}

// NewDataFromDB wraps an open database/sql handle. rdb may be nil.
func NewDataFromDB(sqlDB *sql.DB, rdb *redis.Client) *Data {
	return &Data{
		sqlDB: sqlDB,
		db:    goqu.Dialect("postgres").DB(sqlDB),
		rdb:   rdb,
	}
}

// newRedisClient returns nil when Redis is not configured or unreachable,
// which switches every cache to its fallback.
func newRedisClient(ctx context.Context, c *conf.Data_Redis, helper *log.Helper) *redis.Client {
	if c == nil || c.Addr == "" {
		helper.Info("redis not configured, using in-process caches")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.Db,
		ReadTimeout:  c.ReadTimeout.AsDuration(),
		WriteTimeout: c.WriteTimeout.AsDuration(),
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		helper.Warnf("redis unreachable at %s, using in-process caches: %v", c.Addr, err)
		_ = rdb.Close()
		return nil
	}

	return rdb
}

// Ping checks database connectivity.
func (d *Data) Ping(ctx context.Context) error {
	return d.sqlDB.PingContext(ctx)
}

// ProvideGoqu exposes the query builder bound to the pool.
func ProvideGoqu(d *Data) *goqu.Database {
	return d.db
}

// ProvideSQLDB exposes the database/sql handle, used by migrations and readiness checks.
func ProvideSQLDB(d *Data) *sql.DB {
	return d.sqlDB
}
