package main

import (
	"bytes"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func writeJob(t *testing.T, dir string, destPath string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "files"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "files", "orders.csv"), []byte("id,name\n1,acme\n2,beta\n"), 0o644))
	job := fmt.Sprintf(`{
		"root_dir": %q,
		"destination": {"name": "dest", "driver": "sqlite", "url": %q},
		"sources": [{"name": "files"}],
		"orders": ["orders"],
		"checkpoint": {"path": %q}
	}`, dir, destPath, filepath.Join(dir, "checkpoint.json"))
	path := filepath.Join(dir, "job.json")
	require.NoError(t, os.WriteFile(path, []byte(job), 0o644))
	return path
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	job := writeJob(t, dir, filepath.Join(dir, "dest.db"))

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetArgs([]string{"validate", "--job", job})
	require.NoError(t, Execute())
	assert.Contains(t, out.String(), "1 orders, 1 sources")
}

func TestValidateCommandRejectsBadJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"orders": [""]}`), 0o644))

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"validate", "--job", path})
	err := Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "destination : name is required")
	assert.Contains(t, err.Error(), "orders[0] : table is required")
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	destPath := filepath.Join(dir, "dest.db")
	db, err := sql.Open("sqlite", destPath)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`CREATE TABLE orders (id INTEGER, name TEXT)`)
	require.NoError(t, err)
	job := writeJob(t, dir, destPath)

	rootCmd.SetArgs([]string{"run", "--job", job, "--refresh=false", "--log-level", "error"})
	require.NoError(t, Execute())

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&n))
	assert.Equal(t, 2, n)
	_, err = os.Stat(filepath.Join(dir, "checkpoint.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunCommandBadLogLevel(t *testing.T) {
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"run", "--job", "missing.json", "--log-level", "loud"})
	assert.ErrorContains(t, Execute(), "bad --log-level")
}
