package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSQL(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSeed(t *testing.T) {
	dir := t.TempDir()
	advocates := writeSQL(t, dir, "advocates.sql", "INSERT INTO advocates (user_id, email) VALUES ('sub-1', 'a@example.org')")
	campaigns := writeSQL(t, dir, "campaigns.sql", "INSERT INTO campaigns (title) VALUES ('x')")

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO advocates")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO campaigns")).WillReturnError(errors.New("null value in column"))

	err = Seed(context.Background(), conn, advocates, campaigns)
	assert.ErrorContains(t, err, "campaigns.sql")
	assert.NoError(t, mock.ExpectationsWereMet())

	err = Seed(context.Background(), conn, filepath.Join(dir, "missing.sql"))
	assert.ErrorContains(t, err, "read")
}

func TestSchemaReturnsCopy(t *testing.T) {
	s := Schema()
	require.Len(t, s, len(schema))
	s[0] = "DROP TABLE campaigns"
	assert.NotEqual(t, s[0], schema[0])
}
