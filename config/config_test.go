package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigMemoryDriver(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, 3600, cfg.JwtAccessTTL)
	assert.Equal(t, 10, cfg.LLM_Timeout)
	assert.Equal(t, "content_studio", cfg.MongoDB_DBName)
}

func TestNewConfigMongoRequiresURI(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("MONGODB_CONNECTION_URI", "")

	_, err := NewConfig()
	assert.Error(t, err)
}

func TestNewConfigRejectsShortSecret(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("STORE_DRIVER", "memory")

	_, err := NewConfig()
	assert.Error(t, err)
}
