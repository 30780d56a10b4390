package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestListEmbedded(t *testing.T) {
	out, err := run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "20250601120000_create_options")
	assert.Contains(t, out, "20250601120100_create_order_meta")
}

func TestCreateThenList(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, "create", "add courier index", "--path", dir, "-d", "speed up courier lookups")
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(dir, "*_add_courier_index.*.sql"))
	require.NoError(t, err)
	assert.Len(t, files, 2)

	out, err := run(t, "list", "--path", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "_add_courier_index")
}

func TestArgumentValidation(t *testing.T) {
	_, err := run(t, "step", "many")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid step count")

	_, err = run(t, "goto")
	require.Error(t, err)

	_, err = run(t, "down")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--confirm")
}

func TestMigrateRejectsSQLite(t *testing.T) {
	t.Setenv("SHIPKIA_DATABASE_DRIVER", "sqlite")
	t.Setenv("SHIPKIA_DATABASE_PATH", filepath.Join(t.TempDir(), "shipkia.db"))
	t.Setenv("SHIPKIA_APP_ENV", "")

	_, err := run(t, "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres driver")
}
