package configpkg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	content := "DB_DRIVER=memory\nSERVER_ADDRESS=127.0.0.1:9999\nLOCK_TTL=2s\n"
	if err := os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600); err != nil {
		t.Fatalf("os.WriteFile returned error: %v", err)
	}

	t.Setenv("LEDGER_MAX_RETRIES", "7")

	got, err := Load(dir)
	require.NoError(t, err)

	require.Equal(t, DriverMemory, got.DBDriver)
	require.Equal(t, "127.0.0.1:9999", got.ServerAddress)
	require.Equal(t, 2*time.Second, got.LockTTL)
	require.Equal(t, 7, got.LedgerMaxRetries)
	require.Equal(t, "USD,EUR,GBP", got.SupportedCurrencies)
	require.Equal(t, LockLocal, got.LockBackend)
	require.Equal(t, TokenPaseto, got.TokenMaker)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
}
