package leave

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, rec *Record) error
	FindByName(ctx context.Context, name string) (*Record, error)
	FindByNameForUpdate(ctx context.Context, name string) (*Record, error)
	FindAllForUser(ctx context.Context, username, status string) ([]Record, error)
	FindByStage(ctx context.Context, stage string, excludeRejected bool) ([]Record, error)
	FindByStageStatus(ctx context.Context, stage, status string) ([]Record, error)
	FindAcceptedForUser(ctx context.Context, username string) ([]Record, error)
	Update(ctx context.Context, rec *Record) error
	DeleteByName(ctx context.Context, name string) error
	ExistsByName(ctx context.Context, name string) (bool, error)
	HasOverlappingPeriod(ctx context.Context, username string, from, to time.Time) (bool, error)
	CountForUser(ctx context.Context, username string) (int64, error)
	CountByUserAndStatus(ctx context.Context, username, status string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, rec *Record) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *repository) FindByName(ctx context.Context, name string) (*Record, error) {
	var rec Record
	err := r.db.WithContext(ctx).
		First(&rec, "name = ?", name).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// FindByNameForUpdate locks the row for the duration of the surrounding
// transaction so two concurrent decisions on the same record serialize.
func (r *repository) FindByNameForUpdate(ctx context.Context, name string) (*Record, error) {
	var rec Record
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&rec, "name = ?", name).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repository) FindAllForUser(ctx context.Context, username, status string) ([]Record, error) {
	db := r.db.WithContext(ctx).
		Where("username = ?", username)
	if status != "" {
		db = db.Where("status = ?", status)
	}

	var recs []Record
	err := db.Order("from_date DESC").Find(&recs).Error
	return recs, err
}

func (r *repository) FindByStage(ctx context.Context, stage string, excludeRejected bool) ([]Record, error) {
	db := r.db.WithContext(ctx).
		Where("stage = ?", stage)
	if excludeRejected {
		db = db.Where("status <> ?", StatusRejected)
	}

	var recs []Record
	err := db.Order("created_at ASC").Find(&recs).Error
	return recs, err
}

func (r *repository) FindByStageStatus(ctx context.Context, stage, status string) ([]Record, error) {
	var recs []Record
	err := r.db.WithContext(ctx).
		Where("stage = ?", stage).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&recs).Error
	return recs, err
}

func (r *repository) FindAcceptedForUser(ctx context.Context, username string) ([]Record, error) {
	var recs []Record
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Where("status = ?", StatusAccepted).
		Order("from_date ASC").
		Find(&recs).Error
	return recs, err
}

func (r *repository) Update(ctx context.Context, rec *Record) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *repository) DeleteByName(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).
		Delete(&Record{}, "name = ?", name).Error
}

// ExistsByName checks the whole store: record names are globally unique, not
// per user.
func (r *repository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Record{}).
		Where("name = ?", name).
		Count(&count).Error
	return count > 0, err
}

// HasOverlappingPeriod reports whether the user already has a non-rejected
// record intersecting [from, to]. Bounds are inclusive; touching endpoints
// count as overlap.
func (r *repository) HasOverlappingPeriod(ctx context.Context, username string, from, to time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Record{}).
		Where("username = ?", username).
		Where("status <> ?", StatusRejected).
		Where("NOT (to_date < ? OR from_date > ?)", from, to).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CountForUser(ctx context.Context, username string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Record{}).
		Where("username = ?", username).
		Count(&count).Error
	return count, err
}

func (r *repository) CountByUserAndStatus(ctx context.Context, username, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Record{}).
		Where("username = ?", username).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
