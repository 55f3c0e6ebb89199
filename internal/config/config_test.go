package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory so no .env is picked up, and
// clears the variables Load consults.
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range []string{
		"HTTP_PORT", "PORT", "STORE_DRIVER", "DATABASE_URL", "POSTGRES_URL", "PGURL", "DATABASE_URL_FILE",
		"PGHOST", "POSTGRES_HOST", "PGUSER", "POSTGRES_USER", "PGPASSWORD", "POSTGRES_PASSWORD", "PGDATABASE", "POSTGRES_DB",
		"PGPORT", "POSTGRES_PORT", "PGSSLMODE",
		"JWT_SECRET", "JWT_EXPIRY", "STORE_UNIQUE_CODES", "MIN_PASSWORD_LENGTH", "SQLITE_PATH", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.True(t, cfg.UniqueCodes)
	assert.Equal(t, 12*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 6, cfg.MinPasswordLength)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "catalog", cfg.Mongo.DBName)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadValidation(t *testing.T) {
	isolate(t)

	t.Setenv("STORE_DRIVER", "memory")
	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "postgres")
	_, err = Load()
	assert.ErrorContains(t, err, "database configuration missing")

	t.Setenv("STORE_DRIVER", "redis")
	_, err = Load()
	assert.ErrorContains(t, err, "unknown STORE_DRIVER")
}

func TestLoadPostgresFromParts(t *testing.T) {
	isolate(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PGHOST", "db.internal")
	t.Setenv("PGUSER", "catalog")
	t.Setenv("PGPASSWORD", "pw")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://catalog:pw@db.internal:5432/catalog?sslmode=require", cfg.DatabaseURL)
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	content := "# comment\nexport STORE_DRIVER=sqlite\nJWT_SECRET=\"from-file\"\nSTORE_UNIQUE_CODES=false\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))
	t.Setenv("JWT_SECRET", "from-env")
	t.Cleanup(func() {
		os.Unsetenv("STORE_DRIVER")
		os.Unsetenv("STORE_UNIQUE_CODES")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.False(t, cfg.UniqueCodes)
}

func TestLoadDotEnvMalformed(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("NOEQUALS\n"), 0o600))
	_, err := Load()
	assert.ErrorContains(t, err, "missing '='")
}

func TestCoerceDatabaseURL(t *testing.T) {
	assert.Equal(t, "postgres://h/db", coerceDatabaseURL(" postgresql://h/db "))
	assert.Equal(t, "postgres://h/db", coerceDatabaseURL("postgres://h/db"))
	assert.Empty(t, coerceDatabaseURL("mysql://h/db"))
}
