package database

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/justsurfingit/job-application-tracker/internal/models"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// StatusConstraintName is the CHECK constraint restricting job_applications.status.
const StatusConstraintName = "chk_job_applications_status"

type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Connect opens the database, tunes the pool and runs migrations.
func Connect(cfg PostgresConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Println("Database connection established")

	log.Println("Running Migrations...")
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the job_applications table and its status constraint.
// An existing constraint is left alone so that drift stays detectable.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Application{}); err != nil {
		return fmt.Errorf("migrate job_applications: %w", err)
	}

	var count int64
	err := db.Raw(`SELECT count(*) FROM pg_constraint c
		JOIN pg_class t ON t.oid = c.conrelid
		WHERE t.relname = ? AND c.conname = ?`,
		models.Application{}.TableName(), StatusConstraintName).Scan(&count).Error
	if err != nil {
		return fmt.Errorf("inspect status constraint: %w", err)
	}
	if count > 0 {
		return nil
	}

	log.Printf("Adding %s", StatusConstraintName)
	return db.Exec(StatusConstraintDDL()).Error
}

// StatusConstraintDDL renders the ALTER TABLE statement for models.Statuses.
func StatusConstraintDDL() string {
	quoted := make([]string, len(models.Statuses))
	for i, st := range models.Statuses {
		quoted[i] = pq.QuoteLiteral(string(st))
	}
	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s CHECK (status IN (%s))",
		pq.QuoteIdentifier(models.Application{}.TableName()),
		pq.QuoteIdentifier(StatusConstraintName),
		strings.Join(quoted, ", "))
}

var literalRx = regexp.MustCompile(`'((?:[^']|'')*)'`)

// CheckLiterals extracts the string literals from a pg_get_constraintdef result,
// e.g. CHECK ((status = ANY (ARRAY['Applied'::text, 'Accepted'::text]))).
func CheckLiterals(def string) []string {
	matches := literalRx.FindAllStringSubmatch(def, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.ReplaceAll(m[1], "''", "'"))
	}
	return out
}
