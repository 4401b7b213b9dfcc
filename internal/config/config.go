// Package config loads and persists user settings for the Jenkins client.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/alnah/go-jenkins/internal/endpoint"
)

// Config keys.
const (
	KeyURL       = "url"
	KeyUsername  = "username"
	KeyToken     = "token"
	KeyHTTPSPort = "https-port"
)

// Environment variable fallbacks.
const (
	EnvURL       = "JENKINS_URL"
	EnvUsername  = "JENKINS_USER"
	EnvToken     = "JENKINS_TOKEN"
	EnvHTTPSPort = "JENKINS_HTTPS_PORT"
)

// Keys lists all supported configuration keys.
var Keys = []string{KeyURL, KeyUsername, KeyToken, KeyHTTPSPort}

// envFallback maps each key to its environment variable.
var envFallback = map[string]string{
	KeyURL:       EnvURL,
	KeyUsername:  EnvUsername,
	KeyToken:     EnvToken,
	KeyHTTPSPort: EnvHTTPSPort,
}

var (
	// ErrInvalidKey indicates a key that cannot be stored in the config file.
	ErrInvalidKey = errors.New("invalid config key")

	// ErrInvalidSyntax indicates a config file line is not key=value.
	ErrInvalidSyntax = errors.New("invalid config syntax")

	// ErrInvalidValue indicates a value is not valid for its key.
	ErrInvalidValue = errors.New("invalid config value")
)

// Config holds user configuration loaded from ~/.config/go-jenkins/config.
type Config struct {
	URL       string
	Username  string
	Token     string
	HTTPSPort *int
}

// EnvVar returns the environment variable backing key, or "".
func EnvVar(key string) string {
	return envFallback[key]
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/go-jenkins.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "go-jenkins"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "go-jenkins"), nil
}

// path returns the full path to the config file.
func path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config"), nil
}

// Load reads the configuration file and environment variables.
// Precedence: config file values, then environment variable fallbacks.
// Returns an empty Config if the file doesn't exist (not an error).
func Load() (Config, error) {
	var cfg Config

	p, err := path()
	if err != nil {
		return cfg, err
	}

	data, err := parseFile(p)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		data = make(map[string]string)
	}

	// Environment variable fallback (only if not set in config).
	for key, env := range envFallback {
		if data[key] == "" {
			data[key] = os.Getenv(env)
		}
	}

	cfg.URL = data[KeyURL]
	cfg.Username = data[KeyUsername]
	cfg.Token = data[KeyToken]
	if v := data[KeyHTTPSPort]; v != "" {
		port, err := parsePort(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", KeyHTTPSPort, err)
		}
		cfg.HTTPSPort = &port
	}

	return cfg, nil
}

// Validate checks value against the rules of key.
func Validate(key, value string) error {
	switch key {
	case KeyURL:
		if _, err := endpoint.Recompose(value, "http", nil); err != nil {
			return fmt.Errorf("%s %q: %w", key, value, ErrInvalidValue)
		}
	case KeyHTTPSPort:
		if _, err := parsePort(value); err != nil {
			return err
		}
	case KeyUsername, KeyToken:
		if strings.ContainsAny(value, "\r\n") {
			return fmt.Errorf("%s must be a single line: %w", key, ErrInvalidValue)
		}
	default:
		return fmt.Errorf("unknown config key %q (valid keys: %v): %w", key, Keys, ErrInvalidKey)
	}
	return nil
}

// parsePort parses a TCP port number.
func parsePort(v string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %q: %w", v, ErrInvalidValue)
	}
	return port, nil
}

// parseFile reads a key=value config file.
// Format: one key=value per line, # comments, empty lines ignored.
func parseFile(p string) (map[string]string, error) {
	f, err := os.Open(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse key=value.
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: %q: %w", lineNum, line, ErrInvalidSyntax)
		}
		data[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return data, nil
}

// Save writes a single key=value to the config file.
func Save(key, value string) error {
	return SaveAll(map[string]string{key: value})
}

// SaveAll writes several key=value pairs in one write.
// Creates the config directory and file if they don't exist.
// Preserves existing key=value pairs but discards comments.
// The file is private to the user since it may hold an API token.
func SaveAll(values map[string]string) error {
	for key := range values {
		if key == "" || strings.ContainsAny(key, "=\r\n#") {
			return fmt.Errorf("key %q: %w", key, ErrInvalidKey)
		}
	}

	p, err := path()
	if err != nil {
		return err
	}

	// Ensure config directory exists.
	if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	// Read existing config (if any).
	existing, err := parseFile(p)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		existing = make(map[string]string)
	}

	maps.Copy(existing, values)
	return writeFile(p, existing)
}

// writeFile writes the config map to a file, sorted by key.
func writeFile(p string, data map[string]string) error {
	// #nosec G304 -- path from home dir
	f, err := os.OpenFile(p, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	for _, key := range slices.Sorted(maps.Keys(data)) {
		if _, err := fmt.Fprintf(f, "%s=%s\n", key, data[key]); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	return nil
}

// Get reads a single value from the config file.
// Returns empty string if the key doesn't exist.
func Get(key string) (string, error) {
	data, err := List()
	if err != nil {
		return "", err
	}
	return data[key], nil
}

// List returns all config file values as a map.
func List() (map[string]string, error) {
	p, err := path()
	if err != nil {
		return nil, err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}

	return data, nil
}

// Dir returns the configuration directory path (exported for testing).
func Dir() (string, error) {
	return dir()
}
