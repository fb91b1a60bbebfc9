package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestOpenSQLiteSetsPragmas(t *testing.T) {
	db, err := Open(context.Background(), Options{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "test.db")}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer db.Close()

	var fk int
	require.NoError(t, db.Get(&fk, "PRAGMA foreign_keys"))
	assert.Equal(t, 1, fk)

	var mode string
	require.NoError(t, db.Get(&mode, "PRAGMA journal_mode"))
	assert.Equal(t, "wal", mode)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "mysql"}, zaptest.NewLogger(t))
	assert.Error(t, err)
}
