package target_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigour-dev/rigour/internal/target"
)

func writeConnFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "connection.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile_Flat(t *testing.T) {
	path := writeConnFile(t, `
base_url: https://api.example.com
auth_type: bearer
auth_token: tok-123
timeout: 45
verify_ssl: true
headers:
  User-Agent: Rigour/1.0
`)

	conn, err := target.LoadFile(path, "")
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", conn.BaseURL)
	assert.Equal(t, "bearer", conn.AuthType)
	assert.Equal(t, "tok-123", conn.AuthToken)
	assert.Equal(t, 45, conn.TimeoutSeconds)
	assert.True(t, conn.VerifySSL)
	assert.Equal(t, "Rigour/1.0", conn.Headers["User-Agent"])
}

func TestLoadFile_MultiEnvironment(t *testing.T) {
	path := writeConnFile(t, `
connections:
  staging:
    base_url: https://staging.example.com
  prod:
    base_url: https://prod.example.com
`)

	conn, err := target.LoadFile(path, "prod")
	require.NoError(t, err)
	assert.Equal(t, "https://prod.example.com", conn.BaseURL)

	// Unknown environment is an error.
	_, err = target.LoadFile(path, "qa")
	assert.Error(t, err)

	// Ambiguous selection without --env is an error.
	_, err = target.LoadFile(path, "")
	assert.Error(t, err)
}

func TestLoadFile_SingleEnvironmentAutoSelected(t *testing.T) {
	path := writeConnFile(t, `
connections:
  local:
    base_url: http://localhost:8000
`)

	conn, err := target.LoadFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", conn.BaseURL)
}

func TestLoadFile_EnvVarToken(t *testing.T) {
	t.Setenv("RIGOUR_TEST_TOKEN", "secret-from-env")
	path := writeConnFile(t, `
base_url: https://api.example.com
auth_type: bearer
auth_token: $RIGOUR_TEST_TOKEN
`)

	conn, err := target.LoadFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, "secret-from-env", conn.AuthToken)
}

func TestLoadFile_MissingBaseURL(t *testing.T) {
	path := writeConnFile(t, "auth_type: bearer\n")
	_, err := target.LoadFile(path, "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "base_url")
}

func TestAuthHeader(t *testing.T) {
	tests := []struct {
		name      string
		conn      target.Connection
		wantKey   string
		wantValue string
	}{
		{
			name:      "bearer",
			conn:      target.Connection{AuthType: "bearer", AuthToken: "tok"},
			wantKey:   "Authorization",
			wantValue: "Bearer tok",
		},
		{
			name:      "api key",
			conn:      target.Connection{AuthType: "api_key", AuthToken: "key"},
			wantKey:   "X-API-Key",
			wantValue: "key",
		},
		{
			name:      "basic",
			conn:      target.Connection{AuthType: "basic", Username: "u", Password: "p"},
			wantKey:   "Authorization",
			wantValue: "Basic dTpw", // base64("u:p")
		},
		{
			name: "no auth",
			conn: target.Connection{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, v := tt.conn.AuthHeader()
			assert.Equal(t, tt.wantKey, k)
			assert.Equal(t, tt.wantValue, v)
		})
	}
}

func TestAllHeaders_MergesAuth(t *testing.T) {
	conn := target.Connection{
		AuthType:  "bearer",
		AuthToken: "tok",
		Headers:   map[string]string{"User-Agent": "Rigour/1.0"},
	}

	headers := conn.AllHeaders()
	assert.Equal(t, "Rigour/1.0", headers["User-Agent"])
	assert.Equal(t, "Bearer tok", headers["Authorization"])
	// Original map untouched.
	_, ok := conn.Headers["Authorization"]
	assert.False(t, ok)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("RIGOUR_BASE_URL", "http://envhost:9000")
	t.Setenv("RIGOUR_AUTH_TYPE", "api_key")
	t.Setenv("RIGOUR_AUTH_TOKEN", "k-1")
	t.Setenv("RIGOUR_TIMEOUT", "10")
	t.Setenv("RIGOUR_VERIFY_SSL", "false")

	conn := target.FromEnv()
	assert.Equal(t, "http://envhost:9000", conn.BaseURL)
	assert.Equal(t, "api_key", conn.AuthType)
	assert.Equal(t, "k-1", conn.AuthToken)
	assert.Equal(t, 10, conn.TimeoutSeconds)
	assert.False(t, conn.VerifySSL)
}
