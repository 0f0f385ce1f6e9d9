package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx registra commit e rollback; os demais métodos não são usados.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return f.commitErr
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx  *fakeTx
	err error
}

func (f *fakeBeginner) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tx, nil
}

func TestWithTxCommits(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	err := WithTx(context.Background(), b, func(context.Context, pgx.Tx) error { return nil })
	require.NoError(t, err)
	assert.True(t, b.tx.committed)
	assert.False(t, b.tx.rolledBack)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	boom := errors.New("boom")
	err := WithTx(context.Background(), b, func(context.Context, pgx.Tx) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, b.tx.committed)
	assert.True(t, b.tx.rolledBack)
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	assert.Panics(t, func() {
		_ = WithTx(context.Background(), b, func(context.Context, pgx.Tx) error { panic("falha") })
	})
	assert.True(t, b.tx.rolledBack)
}

func TestWithTxCommitFailure(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{commitErr: errors.New("conexão perdida")}}
	err := WithTx(context.Background(), b, func(context.Context, pgx.Tx) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit")
	assert.True(t, b.tx.rolledBack)
}

func TestWithTxBeginFailure(t *testing.T) {
	b := &fakeBeginner{err: errors.New("pool fechado")}
	called := false
	err := WithTx(context.Background(), b, func(context.Context, pgx.Tx) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}
