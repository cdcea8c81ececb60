package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_DRIVER", "DB_DSN_PRIMARY", "JWT_SECRET", "JWT_SECRET_FILE", "RABBITMQ_URL", "PENDING_ORDER_TTL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMySQL, cfg.StoreDriver)
	assert.Contains(t, cfg.DBDSN, "parseTime=true")
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, 72*time.Hour, cfg.PendingOrderTTL)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	secretFile := filepath.Join(t.TempDir(), "jwt_secret")
	require.NoError(t, os.WriteFile(secretFile, []byte("from-file\n"), 0o600))

	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("JWT_SECRET_FILE", secretFile)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("PENDING_ORDER_TTL", "30m")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg := Load()

	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.PendingOrderTTL)
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadAddsParseTimeToDSN(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")

	t.Setenv("DB_DSN_PRIMARY", "app:secret@tcp(db:3306)/medistore")
	cfg := Load()
	assert.Contains(t, cfg.DBDSN, "parseTime=true")
	assert.Contains(t, cfg.DBDSN, "app:secret@tcp(db:3306)/medistore")

	ready := "app:secret@tcp(db:3306)/medistore?parseTime=true"
	t.Setenv("DB_DSN_PRIMARY", ready)
	assert.Equal(t, ready, Load().DBDSN)
}
