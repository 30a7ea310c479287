package user

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, u *User) error
	FindAll(ctx context.Context) ([]User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByFullName(ctx context.Context, firstName, lastName string) (*User, error)
	FindByRole(ctx context.Context, role string) ([]User, error)
	Delete(ctx context.Context, username string) error
	DeleteRecordsForUser(ctx context.Context, username string) error
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

func (r *repository) Create(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *repository) FindAll(ctx context.Context) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).
		Order("username ASC").
		Find(&users).Error
	return users, err
}

// FindByUsername resolves a user case-insensitively; usernames are unique
// regardless of case.
func (r *repository) FindByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).
		Where("LOWER(username) = LOWER(?)", username).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByFullName(ctx context.Context, firstName, lastName string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).
		Where("LOWER(first_name) = LOWER(?)", firstName).
		Where("LOWER(last_name) = LOWER(?)", lastName).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByRole(ctx context.Context, role string) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("username ASC").
		Find(&users).Error
	return users, err
}

func (r *repository) Delete(ctx context.Context, username string) error {
	return r.db.WithContext(ctx).
		Where("LOWER(username) = LOWER(?)", username).
		Delete(&User{}).Error
}

// DeleteRecordsForUser removes the user's leave records ahead of deleting
// the user itself (cascade, same transaction).
func (r *repository) DeleteRecordsForUser(ctx context.Context, username string) error {
	return r.db.WithContext(ctx).
		Exec("DELETE FROM leave_records WHERE username = ?", username).Error
}
