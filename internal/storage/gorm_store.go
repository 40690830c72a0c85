package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/justsurfingit/job-application-tracker/internal/database"
	"github.com/justsurfingit/job-application-tracker/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pgCheckViolation is the SQLSTATE Postgres reports for a failed CHECK constraint.
const pgCheckViolation = "23514"

// GormStore is the PostgreSQL RecordStore.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Insert(ctx context.Context, app models.Application) (*models.Application, error) {
	if err := s.DB.WithContext(ctx).Create(&app).Error; err != nil {
		return nil, classifyGorm("insert", err)
	}
	return &app, nil
}

func (s *GormStore) Select(ctx context.Context) ([]models.Application, error) {
	apps := []models.Application{}
	if err := s.DB.WithContext(ctx).Order("applied_date desc").Find(&apps).Error; err != nil {
		return nil, classifyGorm("select", err)
	}
	return apps, nil
}

func (s *GormStore) Get(ctx context.Context, id string) (*models.Application, error) {
	var app models.Application
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&app).Error; err != nil {
		return nil, classifyGorm("get", err)
	}
	return &app, nil
}

func (s *GormStore) Update(ctx context.Context, id string, patch Patch) (*models.Application, error) {
	if patch.Status == nil {
		return s.Get(ctx, id)
	}

	var app models.Application
	tx := s.DB.WithContext(ctx).
		Model(&app).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": *patch.Status})
	if tx.Error != nil {
		return nil, classifyGorm("update", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, newError(KindNotFound, "update", nil)
	}
	return &app, nil
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	tx := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Application{})
	if tx.Error != nil {
		return classifyGorm("delete", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return newError(KindNotFound, "delete", nil)
	}
	return nil
}

func (s *GormStore) AllowedStatuses(ctx context.Context) ([]string, bool, error) {
	var defs []string
	err := s.DB.WithContext(ctx).Raw(`SELECT pg_get_constraintdef(c.oid) FROM pg_constraint c
		JOIN pg_class t ON t.oid = c.conrelid
		WHERE t.relname = ? AND c.conname = ? AND c.contype = 'c'`,
		models.Application{}.TableName(), database.StatusConstraintName).Scan(&defs).Error
	if err != nil {
		return nil, false, classifyGorm("allowed statuses", err)
	}
	if len(defs) == 0 {
		return nil, false, nil
	}
	return database.CheckLiterals(defs[0]), true, nil
}

func classifyGorm(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newError(KindNotFound, op, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation {
		return newError(KindConstraint, op, err)
	}
	return newError(KindUnavailable, op, err)
}
