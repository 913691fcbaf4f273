// Package database opens the postgres connection and migrates the morpheus schema.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/morpheus-mall/mall-backend/config"
	"github.com/morpheus-mall/mall-backend/internal/auditlog"
	"github.com/morpheus-mall/mall-backend/internal/auth"
	"github.com/morpheus-mall/mall-backend/internal/domain"
)

const connectAttempts = 5

// Connect opens the pool, retrying while the database container starts.
func Connect(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var (
		db  *gorm.DB
		err error
	)
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
		if err == nil {
			if err = ping(ctx, db); err == nil {
				break
			}
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("database connect failed, retrying in 2s")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	log.Info().Str("host", cfg.DBHost).Str("schema", cfg.DBSchema).Msg("Database connected")
	return db, nil
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Migrate creates the schema if needed and auto-migrates every table.
func Migrate(db *gorm.DB, schema string) error {
	log.Info().Str("schema", schema).Msg("Running database migrations")

	if err := db.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %q`, schema)).Error; err != nil {
		return fmt.Errorf("create schema %s: %w", schema, err)
	}

	if err := db.AutoMigrate(
		&auth.UserRole{},
		&auth.User{},
		&auditlog.AuditLog{},
		&domain.Mall{},
		&domain.Boutique{},
		&domain.Designer{},
		&domain.Product{},
		&domain.Event{},
		&domain.RegistrationRecord{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// one registration row per (event, designer, boutique); assignments repeat the pair
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_event_detail_registration
		ON event_detail (event_id, designer_id, boutique_id) WHERE product_id IS NULL`).Error; err != nil {
		log.Warn().Err(err).Msg("could not create registration uniqueness index")
	}

	if err := auth.SeedUserRoles(db); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	log.Info().Msg("Database migrations completed")
	return nil
}
