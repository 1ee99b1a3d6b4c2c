// Package database implement connection to database service and initialize ORM.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	// Register pgx as database/sql driver
	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"CareerFindr-backend/internal/config"
	"CareerFindr-backend/internal/model"
	"CareerFindr-backend/internal/utilities"
)

// DBinstanceStruct is a struct that holds the GORM DB instance and related information.
type DBinstanceStruct struct {
	*gorm.DB
	Config *DBConfig
	// cached raw DB and mutex for lazy-init
	sqlDB *sql.DB
	mu    sync.RWMutex
}

// DBConfig holds the parameters for connecting to a database and seeding it.
type DBConfig struct {
	DSN           string
	AdminUsername string
	AdminPassword string
}

var (
	dbInstance *DBinstanceStruct
	dbOnce     sync.Mutex
)

// NewDBInstance creates a new DBinstanceStruct with the given configuration.
// It connects, installs extensions, migrates every model and creates the admin account.
func NewDBInstance(cfg *DBConfig) (*DBinstanceStruct, error) {
	if cfg == nil || cfg.DSN == "" {
		return nil, errors.New("database DSN is empty")
	}

	gdb, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if gin.IsDebugging() {
		gdb = gdb.Debug()
	}

	newDb := &DBinstanceStruct{
		DB:     gdb,
		Config: cfg,
	}

	if err := newDb.installExtension(); err != nil {
		return nil, fmt.Errorf("failed to install extension: %w", err)
	}
	if err := newDb.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	newDb.createAdmin()

	return newDb, nil
}

// GetMainDB returns the main database instance, initializing it from cfg on first call.
func GetMainDB(cfg *config.Config) (*DBinstanceStruct, error) {
	dbOnce.Lock()
	defer dbOnce.Unlock()

	// Reuse Connection
	if dbInstance != nil {
		return dbInstance, nil
	}

	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	db, err := NewDBInstance(&DBConfig{
		DSN:           dsn,
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
	})
	if err != nil {
		return nil, err
	}
	dbInstance = db
	return dbInstance, nil
}

// Raw returns the underlying *sql.DB, caching it after the first successful retrieval.
// It is safe for concurrent use.
func (d *DBinstanceStruct) Raw() (*sql.DB, error) {
	if d == nil {
		return nil, fmt.Errorf("DBinstanceStruct is nil")
	}

	d.mu.RLock()
	if d.sqlDB != nil {
		raw := d.sqlDB
		d.mu.RUnlock()
		return raw, nil
	}
	d.mu.RUnlock()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sqlDB != nil {
		return d.sqlDB, nil
	}
	if d.DB == nil {
		return nil, fmt.Errorf("gorm DB is nil")
	}
	raw, err := d.DB.DB()
	if err != nil {
		return nil, err
	}
	d.sqlDB = raw
	return raw, nil
}

func (d *DBinstanceStruct) createAdmin() {
	if d.Config.AdminUsername == "" || d.Config.AdminPassword == "" {
		log.Println("Admin username or password not set, skipping admin creation")
		return
	}

	var count int64
	d.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count)
	if count > 0 {
		return
	}
	if err := utilities.CreateAdmin(d.Config.AdminPassword, d.Config.AdminUsername, d.DB); err != nil {
		log.Printf("Failed to create admin: %v", err)
	}
}

// Migrate database
func (d *DBinstanceStruct) Migrate() error {
	return d.AutoMigrate(model.MigrateAble...)
}

// HealthReport is the database part of /health response
type HealthReport struct {
	Status   string   `json:"status"`
	Error    string   `json:"error,omitempty"`
	Open     int      `json:"open_connections"`
	InUse    int      `json:"in_use"`
	Idle     int      `json:"idle"`
	Waits    int64    `json:"wait_count"`
	WaitTime string   `json:"wait_duration"`
	Warnings []string `json:"warnings,omitempty"`
}

// Pool thresholds reported as warnings
const (
	busyConnections = 40
	busyWaitCount   = 1000
)

// Health pings database and reports connection pool usage.
func (d *DBinstanceStruct) Health(ctx context.Context) HealthReport {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	raw, err := d.Raw()
	if err == nil {
		err = raw.PingContext(ctx)
	}
	if err != nil {
		log.Printf("db down: %v", err)
		return HealthReport{Status: "down", Error: err.Error()}
	}

	st := raw.Stats()
	report := HealthReport{
		Status:   "up",
		Open:     st.OpenConnections,
		InUse:    st.InUse,
		Idle:     st.Idle,
		Waits:    st.WaitCount,
		WaitTime: st.WaitDuration.String(),
	}
	if st.OpenConnections > busyConnections {
		report.Warnings = append(report.Warnings, "heavy load")
	}
	if st.WaitCount > busyWaitCount {
		report.Warnings = append(report.Warnings, "many connections waited for pool")
	}
	if half := int64(st.OpenConnections) / 2; st.MaxIdleClosed > half || st.MaxLifetimeClosed > half {
		report.Warnings = append(report.Warnings, "pool is churning connections")
	}
	return report
}

// Close closes the database connection.
func (d *DBinstanceStruct) Close() error {
	log.Println("Disconnected from database")
	oriDB, err := d.Raw()
	if err != nil {
		return err
	}
	return oriDB.Close()
}

func (d *DBinstanceStruct) installExtension() error {
	err := d.WithContext(context.Background()).Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error
	if err != nil {
		return err
	}
	log.Println("uuid-ossp extension installed or already exists")
	return nil
}
