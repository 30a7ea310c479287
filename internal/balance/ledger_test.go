package balance_test

import (
	"context"
	"testing"

	"leavedesk/internal/balance"
	balanceerrors "leavedesk/internal/balance/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupLedgerTest(t *testing.T) (balance.Ledger, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	assert.NoError(t, err)

	return balance.NewLedger(gormDB), sqlMock, func() { db.Close() }
}

func TestLedger_Debit(t *testing.T) {
	ctx := context.Background()

	t.Run("decrements when the guard holds", func(t *testing.T) {
		ledger, sqlMock, closeFn := setupLedgerTest(t)
		defer closeFn()

		sqlMock.ExpectExec(`UPDATE users SET casual_leave = casual_leave - \$1`).
			WithArgs(3, "jdoe", 3).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := ledger.Debit(ctx, "jdoe", balance.Casual, 3)
		assert.NoError(t, err)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("zero rows affected means insufficient balance", func(t *testing.T) {
		ledger, sqlMock, closeFn := setupLedgerTest(t)
		defer closeFn()

		sqlMock.ExpectExec(`UPDATE users SET medical_leave = medical_leave - \$1`).
			WithArgs(30, "jdoe", 30).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := ledger.Debit(ctx, "jdoe", balance.Medical, 30)
		assert.ErrorIs(t, err, balanceerrors.ErrInsufficientBalance)
	})
}

func TestLedger_Credit(t *testing.T) {
	ctx := context.Background()

	t.Run("restores days on cancellation", func(t *testing.T) {
		ledger, sqlMock, closeFn := setupLedgerTest(t)
		defer closeFn()

		sqlMock.ExpectExec(`UPDATE users SET earned_leave = earned_leave \+ \$1`).
			WithArgs(5, "jdoe").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := ledger.Credit(ctx, "jdoe", balance.Earned, 5)
		assert.NoError(t, err)
	})

	t.Run("unknown owner", func(t *testing.T) {
		ledger, sqlMock, closeFn := setupLedgerTest(t)
		defer closeFn()

		sqlMock.ExpectExec(`UPDATE users SET earned_leave = earned_leave \+ \$1`).
			WithArgs(5, "ghost").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := ledger.Credit(ctx, "ghost", balance.Earned, 5)
		assert.ErrorIs(t, err, balanceerrors.ErrBalanceOwnerNotFound)
	})
}

func TestLedger_Reserve(t *testing.T) {
	ctx := context.Background()

	balanceRows := func(casual, medical, earned, academic int) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"casual", "medical", "earned", "academic"}).
			AddRow(casual, medical, earned, academic)
	}

	t.Run("sufficient balance passes without mutation", func(t *testing.T) {
		ledger, sqlMock, closeFn := setupLedgerTest(t)
		defer closeFn()

		sqlMock.ExpectQuery(`SELECT casual_leave AS casual`).
			WillReturnRows(balanceRows(12, 10, 15, 15))

		err := ledger.Reserve(ctx, "jdoe", balance.Casual, 12)
		assert.NoError(t, err)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("request exceeding the balance is refused", func(t *testing.T) {
		ledger, sqlMock, closeFn := setupLedgerTest(t)
		defer closeFn()

		sqlMock.ExpectQuery(`SELECT casual_leave AS casual`).
			WillReturnRows(balanceRows(2, 10, 15, 15))

		err := ledger.Reserve(ctx, "jdoe", balance.Casual, 3)
		assert.ErrorIs(t, err, balanceerrors.ErrInsufficientBalance)
	})
}

func TestLeaveType_Parse(t *testing.T) {
	for _, lt := range balance.AllTypes() {
		parsed, err := balance.ParseLeaveType(lt.String())
		assert.NoError(t, err)
		assert.Equal(t, lt, parsed)
	}

	_, err := balance.ParseLeaveType("sabbatical")
	assert.ErrorIs(t, err, balanceerrors.ErrUnknownLeaveType)

	_, err = balance.ParseLeaveType("Casual")
	assert.ErrorIs(t, err, balanceerrors.ErrUnknownLeaveType)
}

func TestBalances_Defaults(t *testing.T) {
	d := balance.Defaults()
	assert.Equal(t, 12, d.Casual)
	assert.Equal(t, 10, d.Medical)
	assert.Equal(t, 15, d.Earned)
	assert.Equal(t, 15, d.Academic)

	assert.Equal(t, 12, d.For(balance.Casual))
	assert.Equal(t, 0, d.For(balance.LeaveType("unknown")))
}
