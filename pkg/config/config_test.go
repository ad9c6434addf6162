package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, StorageLocal, cfg.Storage.Mode)
	assert.Equal(t, 3, cfg.Recruit.InvitationDueDays)
	assert.Equal(t, 72*time.Hour, cfg.Recruit.InvitationDuePeriod())
	assert.False(t, cfg.Events.Enabled())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "short")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownStorage(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", testSecret)
	t.Setenv("STORAGE_MODE", "ftp")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "JWT_SECRET_KEY=" + testSecret + "\nDB_DRIVER=memory\nCORS_ORIGINS=http://a.test, http://b.test\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Cleanup(func() {
		os.Unsetenv("JWT_SECRET_KEY")
		os.Unsetenv("DB_DRIVER")
		os.Unsetenv("CORS_ORIGINS")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", testSecret)

	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
