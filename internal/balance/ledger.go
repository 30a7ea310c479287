package balance

import (
	"context"
	"errors"
	"fmt"

	balanceerrors "leavedesk/internal/balance/errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Ledger owns the four per-user leave counters. Debit and credit are the only
// workflow mutations; both are guarded updates so a counter can never go
// negative, even under concurrent approvals. Callers that need the mutation
// inside a wider transaction scope the ledger with WithTx.
//
//go:generate mockgen -source=ledger.go -destination=mock/ledger_mock.go -package=mock
type Ledger interface {
	WithTx(tx *gorm.DB) Ledger
	Reserve(ctx context.Context, username string, lt LeaveType, days int) error
	Debit(ctx context.Context, username string, lt LeaveType, days int) error
	Credit(ctx context.Context, username string, lt LeaveType, days int) error
	ResetAll(ctx context.Context) error
	ResetOne(ctx context.Context, username string) error
	Balances(ctx context.Context, username string) (Balances, error)
}

type ledger struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewLedger(db *gorm.DB, logger ...*zap.Logger) Ledger {
	l := zap.L().Named("balance.ledger")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.ledger")
	}
	return &ledger{db: db, logger: l}
}

func (l *ledger) WithTx(tx *gorm.DB) Ledger {
	return &ledger{db: tx, logger: l.logger}
}

// Reserve is a validation-only sufficiency check used at application time.
// It performs no mutation; the balance is only locked in at final approval.
func (l *ledger) Reserve(ctx context.Context, username string, lt LeaveType, days int) error {
	balances, err := l.Balances(ctx, username)
	if err != nil {
		return err
	}
	if balances.For(lt) < days {
		return balanceerrors.ErrInsufficientBalance
	}
	return nil
}

// Debit decrements the counter by days. The WHERE clause re-checks
// sufficiency at debit time; zero rows affected means the balance moved
// between submission and approval.
func (l *ledger) Debit(ctx context.Context, username string, lt LeaveType, days int) error {
	column := lt.Column()
	res := l.db.WithContext(ctx).Exec(
		fmt.Sprintf("UPDATE users SET %s = %s - ?, updated_at = now() WHERE username = ? AND %s >= ?", column, column, column),
		days, username, days,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		l.logger.Warn("debit refused",
			zap.String("username", username),
			zap.String("type", lt.String()),
			zap.Int("days", days),
		)
		return balanceerrors.ErrInsufficientBalance
	}
	l.logger.Info("balance debited",
		zap.String("username", username),
		zap.String("type", lt.String()),
		zap.Int("days", days),
	)
	return nil
}

// Credit restores days on cancellation. No upper bound: repeated
// cancel-and-reapply can exceed the original allotment, matching the
// uncapped policy.
func (l *ledger) Credit(ctx context.Context, username string, lt LeaveType, days int) error {
	column := lt.Column()
	res := l.db.WithContext(ctx).Exec(
		fmt.Sprintf("UPDATE users SET %s = %s + ?, updated_at = now() WHERE username = ?", column, column),
		days, username,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return balanceerrors.ErrBalanceOwnerNotFound
	}
	l.logger.Info("balance credited",
		zap.String("username", username),
		zap.String("type", lt.String()),
		zap.Int("days", days),
	)
	return nil
}

func (l *ledger) ResetAll(ctx context.Context) error {
	d := Defaults()
	return l.db.WithContext(ctx).Exec(
		"UPDATE users SET casual_leave = ?, medical_leave = ?, earned_leave = ?, academic_leave = ?, updated_at = now()",
		d.Casual, d.Medical, d.Earned, d.Academic,
	).Error
}

func (l *ledger) ResetOne(ctx context.Context, username string) error {
	d := Defaults()
	res := l.db.WithContext(ctx).Exec(
		"UPDATE users SET casual_leave = ?, medical_leave = ?, earned_leave = ?, academic_leave = ?, updated_at = now() WHERE username = ?",
		d.Casual, d.Medical, d.Earned, d.Academic, username,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return balanceerrors.ErrBalanceOwnerNotFound
	}
	return nil
}

func (l *ledger) Balances(ctx context.Context, username string) (Balances, error) {
	var b Balances
	err := l.db.WithContext(ctx).
		Table("users").
		Select("casual_leave AS casual, medical_leave AS medical, earned_leave AS earned, academic_leave AS academic").
		Where("username = ?", username).
		Take(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Balances{}, balanceerrors.ErrBalanceOwnerNotFound
		}
		return Balances{}, err
	}
	return b, nil
}
