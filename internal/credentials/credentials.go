// Package credentials stores provider API keys in the user's home directory
// as a fallback for environment variables.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// envVars maps provider names to the environment variable holding their key.
var envVars = map[string]string{
	"anthropic":  "ANTHROPIC_API_KEY",
	"openai":     "OPENAI_API_KEY",
	"openrouter": "OPENROUTER_API_KEY",
	"google":     "GOOGLE_API_KEY",
}

// Providers returns the providers that take an API key, sorted.
func Providers() []string {
	out := make([]string, 0, len(envVars))
	for p := range envVars {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// EnvVar returns the environment variable for provider, or "".
func EnvVar(provider string) string {
	return envVars[provider]
}

// Credentials holds stored API keys by provider.
type Credentials struct {
	Keys map[string]string `json:"keys,omitempty"`
}

// Store reads and writes a credentials file.
type Store struct {
	path string
}

// NewStore returns a store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStore returns the store at ~/.kaku/credentials.json.
func DefaultStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting home directory: %w", err)
	}
	return NewStore(filepath.Join(home, ".kaku", "credentials.json")), nil
}

// Path returns the file location.
func (s *Store) Path() string { return s.path }

// Load reads the credentials. A missing file yields empty credentials.
func (s *Store) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Credentials{Keys: map[string]string{}}, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}
	if creds.Keys == nil {
		creds.Keys = map[string]string{}
	}
	return &creds, nil
}

// Save writes the credentials with owner-only permissions.
func (s *Store) Save(creds *Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating credentials directory: %w", err)
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling credentials: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	return nil
}

// Set stores key for provider.
func (s *Store) Set(provider, key string) error {
	if _, ok := envVars[provider]; !ok {
		return fmt.Errorf("provider %q does not use an API key", provider)
	}
	creds, err := s.Load()
	if err != nil {
		return err
	}
	creds.Keys[provider] = key
	return s.Save(creds)
}

// Remove deletes the stored key of provider, or every key when provider is "".
func (s *Store) Remove(provider string) error {
	creds, err := s.Load()
	if err != nil {
		return err
	}
	if provider == "" {
		creds.Keys = map[string]string{}
	} else {
		delete(creds.Keys, provider)
	}
	return s.Save(creds)
}

// APIKey returns the key for provider: the environment variable first, then
// the stored value.
func (s *Store) APIKey(provider string) string {
	if env := envVars[provider]; env != "" {
		if key := os.Getenv(env); key != "" {
			return key
		}
	}
	creds, err := s.Load()
	if err != nil {
		return ""
	}
	return creds.Keys[provider]
}
