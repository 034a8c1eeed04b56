package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runAdduser(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SQLITE_PATH", "")
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	err := run(args, strings.NewReader(stdin), stdout, stderr)
	return stdout.String(), err
}

func TestRun_Success(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tally.db")

	out, err := runAdduser(t, "", "-user", "alice", "-email", "alice@x.com", "-password", "secret", "-cost", "4", "-db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "User alice created successfully")
}

func TestRun_PromptsForPassword(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tally.db")

	out, err := runAdduser(t, "piped-secret\n", "-user", "alice", "-email", "alice@x.com", "-cost", "4", "-db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, "created successfully")
}

func TestRun_DuplicateUser(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tally.db")
	args := []string{"-user", "alice", "-email", "alice@x.com", "-password", "secret", "-cost", "4", "-db", dbPath}

	_, err := runAdduser(t, "", args...)
	require.NoError(t, err, "first run should succeed")

	_, err = runAdduser(t, "", args...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Email already in use")
}

func TestRun_MissingFlags(t *testing.T) {
	_, err := runAdduser(t, "", "-user", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required flags")
}

func TestRun_EmptyPassword(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tally.db")
	_, err := runAdduser(t, "\n", "-user", "alice", "-email", "alice@x.com", "-cost", "4", "-db", dbPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "All fields are required")
}
