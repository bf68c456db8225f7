// Package target holds the connection configuration for the system under
// test. A Connection is consumed read-only by the pipeline: it is passed
// through unmodified to plan generation and into the generated artifacts.
package target

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Connection describes how to reach the system under test.
type Connection struct {
	// BaseURL is the root URL of the system under test.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// AuthType is the auth scheme: bearer, basic, or api_key.
	AuthType string `json:"auth_type,omitempty" yaml:"auth_type,omitempty"`

	// AuthToken is the bearer token or API key. In YAML files a value of
	// the form "$ENV_VAR" is resolved from the environment at load time.
	AuthToken string `json:"auth_token,omitempty" yaml:"auth_token,omitempty"`

	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`

	// Headers are default headers applied to every request.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// TimeoutSeconds is the per-request timeout inside generated tests.
	TimeoutSeconds int `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// VerifySSL controls TLS certificate verification in generated tests.
	VerifySSL bool `json:"verify_ssl" yaml:"verify_ssl"`

	// DBURL is an optional database URL for db_state assertions.
	DBURL string `json:"db_url,omitempty" yaml:"db_url,omitempty"`

	// Proxy is an optional HTTP proxy URL.
	Proxy string `json:"proxy,omitempty" yaml:"proxy,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// multiEnvFile is the wrapped, multi-environment connection file form:
// {connections: {staging: {...}, prod: {...}}}.
type multiEnvFile struct {
	Connections map[string]*Connection `yaml:"connections"`
}

// Default returns a Connection with local defaults, suitable for scaffolded
// example files.
func Default() *Connection {
	return &Connection{
		BaseURL:        "http://localhost:8000",
		TimeoutSeconds: 30,
		VerifySSL:      true,
	}
}

// FromEnv builds a Connection from RIGOUR_* environment variables, falling
// back to local defaults.
func FromEnv() *Connection {
	conn := Default()
	if v := os.Getenv("RIGOUR_BASE_URL"); v != "" {
		conn.BaseURL = v
	}
	conn.AuthType = os.Getenv("RIGOUR_AUTH_TYPE")
	conn.AuthToken = os.Getenv("RIGOUR_AUTH_TOKEN")
	conn.Username = os.Getenv("RIGOUR_USERNAME")
	conn.Password = os.Getenv("RIGOUR_PASSWORD")
	conn.DBURL = os.Getenv("RIGOUR_DB_URL")
	if v := os.Getenv("RIGOUR_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			conn.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("RIGOUR_VERIFY_SSL"); v != "" {
		conn.VerifySSL = strings.EqualFold(v, "true")
	}
	return conn
}

// LoadFile reads a connection config from a YAML file. Both the flat form
// and the multi-environment form ({connections: {env: {...}}}) are
// accepted; for the multi-environment form, env selects the entry to use,
// and an empty env picks the sole entry when exactly one exists.
//
// An AuthToken of the form "$ENV_VAR" is resolved from the environment.
func LoadFile(path, env string) (*Connection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("target: reading %s: %w", path, err)
	}

	var multi multiEnvFile
	if err := yaml.Unmarshal(data, &multi); err == nil && len(multi.Connections) > 0 {
		conn, err := pickEnvironment(multi.Connections, env)
		if err != nil {
			return nil, fmt.Errorf("target: %s: %w", path, err)
		}
		return finish(conn)
	}

	var conn Connection
	if err := yaml.Unmarshal(data, &conn); err != nil {
		return nil, fmt.Errorf("target: parsing %s: %w", path, err)
	}
	return finish(&conn)
}

// pickEnvironment selects the named environment from a multi-environment
// connection map.
func pickEnvironment(conns map[string]*Connection, env string) (*Connection, error) {
	if env != "" {
		conn, ok := conns[env]
		if !ok {
			return nil, fmt.Errorf("environment %q not found in connections", env)
		}
		return conn, nil
	}
	if len(conns) == 1 {
		for _, conn := range conns {
			return conn, nil
		}
	}
	return nil, fmt.Errorf("multiple environments defined; select one with --env")
}

// finish resolves env-var token indirection and validates the connection.
func finish(conn *Connection) (*Connection, error) {
	if strings.HasPrefix(conn.AuthToken, "$") {
		conn.AuthToken = os.Getenv(strings.TrimPrefix(conn.AuthToken, "$"))
	}
	if err := conn.Validate(); err != nil {
		return nil, err
	}
	return conn, nil
}

// Validate checks that the connection has a base URL.
func (c *Connection) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("target: base_url is required")
	}
	return nil
}

// AuthHeader derives the authorization header from the auth configuration.
// It returns empty strings when no auth scheme is configured or the scheme
// is unrecognised.
func (c *Connection) AuthHeader() (key, value string) {
	switch c.AuthType {
	case "bearer":
		return "Authorization", "Bearer " + c.AuthToken
	case "api_key":
		return "X-API-Key", c.AuthToken
	case "basic":
		creds := base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.Password))
		return "Authorization", "Basic " + creds
	}
	return "", ""
}

// AllHeaders returns the default headers merged with the derived auth
// header. The receiver's Headers map is not modified.
func (c *Connection) AllHeaders() map[string]string {
	headers := make(map[string]string, len(c.Headers)+1)
	for k, v := range c.Headers {
		headers[k] = v
	}
	if k, v := c.AuthHeader(); k != "" {
		headers[k] = v
	}
	return headers
}
