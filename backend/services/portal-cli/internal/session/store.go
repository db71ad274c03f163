// Package session persists the portal session cookie between CLI invocations.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNoSession is returned by Load when nothing has been saved.
var ErrNoSession = errors.New("session: not logged in")

// Cookie is the persisted part of an http.Cookie.
type Cookie struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Session is what a successful login leaves on disk.
type Session struct {
	BaseURL string    `yaml:"baseUrl"`
	User    string    `yaml:"user,omitempty"`
	SavedAt time.Time `yaml:"savedAt"`
	Cookies []Cookie  `yaml:"cookies"`
}

// HTTPCookies converts the stored cookies for a cookie jar.
func (s *Session) HTTPCookies() []*http.Cookie {
	cookies := make([]*http.Cookie, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	return cookies
}

// FromHTTPCookies builds the stored form of cookies.
func FromHTTPCookies(cookies []*http.Cookie) []Cookie {
	out := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

// Store reads and writes one session file.
type Store struct {
	path string
}

// NewStore returns a store for path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path is the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Load returns the saved session or ErrNoSession.
func (s *Store) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("session: read %s: %w", s.path, err)
	}

	var sess Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("session: decode %s: %w", s.path, err)
	}
	if len(sess.Cookies) == 0 {
		return nil, ErrNoSession
	}
	return &sess, nil
}

// Save writes sess readable by the owner only.
func (s *Store) Save(sess *Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("session: create dir: %w", err)
	}
	data, err := yaml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("session: write: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("session: write: %w", err)
	}
	return nil
}

// Clear removes the session file. A missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("session: remove: %w", err)
	}
	return nil
}
