package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/blnkfinance/vault/internal/apierror"
	"github.com/blnkfinance/vault/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wacul/ptr"
)

func TestExecuteInTx_CommitsWithdrawal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM vault.accounts WHERE account_id = \\$1 FOR UPDATE").
		WithArgs("acc_1").
		WillReturnRows(sqlmock.NewRows(accountRowColumns).
			AddRow("acc_1", "001", "SAVINGS", "100.00", time.Now(), "cus_1", time.Now()))
	mock.ExpectExec("UPDATE vault.accounts").
		WithArgs("acc_1", model.AccountTypeSavings, decimal.RequireFromString("70.00")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO vault.transactions").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), decimal.RequireFromString("30.00"), model.TransactionTypeWithdrawal, "acc_1", nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	var recorded *model.Transaction
	err = ds.ExecuteInTx(context.Background(), func(tx Tx) error {
		account, err := tx.GetAccountForUpdate(context.Background(), "acc_1")
		if err != nil {
			return err
		}
		amount := decimal.RequireFromString("30.00")
		if err := account.ApplyWithdrawal(amount); err != nil {
			return err
		}
		if err := tx.UpdateAccount(context.Background(), account); err != nil {
			return err
		}
		recorded, err = tx.RecordTransaction(context.Background(), &model.Transaction{
			Amount:          amount,
			Type:            model.TransactionTypeWithdrawal,
			SourceAccountID: ptr.String("acc_1"),
		})
		return err
	})
	require.NoError(t, err)
	assert.Contains(t, recorded.TransactionID, "txn_")
	assert.False(t, recorded.Date.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteInTx_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FOR UPDATE").
		WithArgs("acc_1").
		WillReturnRows(sqlmock.NewRows(accountRowColumns).
			AddRow("acc_1", "001", "SAVINGS", "10.00", time.Now(), "cus_1", time.Now()))
	mock.ExpectRollback()

	err = ds.ExecuteInTx(context.Background(), func(tx Tx) error {
		account, err := tx.GetAccountForUpdate(context.Background(), "acc_1")
		if err != nil {
			return err
		}
		return account.ApplyWithdrawal(decimal.RequireFromString("20.00"))
	})
	assert.True(t, apierror.HasCode(err, apierror.ErrInsufficientFunds))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteInTx_RecordTransactionRefusesMalformedEntry(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectBegin()
	mock.ExpectRollback()

	err = ds.ExecuteInTx(context.Background(), func(tx Tx) error {
		_, err := tx.RecordTransaction(context.Background(), &model.Transaction{
			Amount:               decimal.RequireFromString("10.00"),
			Type:                 model.TransactionTypeDeposit,
			SourceAccountID:      ptr.String("acc_1"),
			DestinationAccountID: ptr.String("acc_2"),
		})
		return err
	})
	assert.True(t, apierror.HasCode(err, apierror.ErrMissingAccount))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteInTx_BeginFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	called := false
	err = ds.ExecuteInTx(context.Background(), func(tx Tx) error {
		called = true
		return nil
	})
	assert.False(t, called)
	assert.True(t, apierror.HasCode(err, apierror.ErrInternalServer))
}

func TestExecuteInTx_DeleteAccountCascade(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM vault.transactions").
		WithArgs("acc_1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM vault.accounts").
		WithArgs("acc_1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = ds.ExecuteInTx(context.Background(), func(tx Tx) error {
		if err := tx.DeleteTransactionsByAccount(context.Background(), "acc_1"); err != nil {
			return err
		}
		return tx.DeleteAccount(context.Background(), "acc_1")
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTransaction_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM vault.transactions WHERE transaction_id").
		WithArgs("txn_missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = ds.ExecuteInTx(context.Background(), func(tx Tx) error {
		return tx.DeleteTransaction(context.Background(), "txn_missing")
	})
	assert.True(t, apierror.HasCode(err, apierror.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
