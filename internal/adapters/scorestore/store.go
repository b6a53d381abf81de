// Package scorestore persists the visitor's own ratings and the overlay of
// named score sets added for comparison.
package scorestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/adapters/kv"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/logger"
	"golang.org/x/text/unicode/norm"
)

// Persisted slot names.
const (
	ScoresKey = "satoshi_scores_v1"
	UsersKey  = "radar_submissions_v1"
)

// MaxNameLen bounds overlay names, counted in runes after normalisation.
const MaxNameLen = 64

// Store is the local score store. Last write wins.
type Store struct {
	kv     kv.Store
	logger logger.Logger
	mu     sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report unreadable slots.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a store over backend.
func New(backend kv.Store, opts ...Option) *Store {
	s := &Store{kv: backend, logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the stored ratings. A missing or unreadable slot yields an empty map.
func (s *Store) Get(ctx context.Context) category.ScoreMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, _ := s.scores(ctx)
	return m
}

// scores loads the ratings slot. Missing and corrupt slots read as empty; the
// error is only set when the backend itself failed, so writers do not replace
// ratings they could not see.
func (s *Store) scores(ctx context.Context) (category.ScoreMap, error) {
	var m category.ScoreMap
	ok, err := s.read(ctx, ScoresKey, &m)
	if err != nil || !ok || m == nil {
		return category.ScoreMap{}, err
	}
	return m, nil
}

// read decodes a slot into out and reports whether it did. Missing and corrupt
// slots report false; backend failures are returned wrapped in ErrPersist.
func (s *Store) read(ctx context.Context, key string, out any) (bool, error) {
	b, err := s.kv.Get(ctx, key)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		return false, nil
	case errors.Is(err, kv.ErrCorrupted):
		s.logger.Warn(ctx, "score document corrupt", logger.String("key", key), logger.Error(err))
		return false, nil
	case err != nil:
		s.logger.Warn(ctx, "score slot unreadable", logger.String("key", key), logger.Error(err))
		return false, fmt.Errorf("%w: read %s: %w", ErrPersist, key, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		s.logger.Warn(ctx, "score slot corrupt", logger.String("key", key), logger.Error(err))
		return false, nil
	}
	return true, nil
}

func (s *Store) write(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPersist, key, err)
	}
	if err := s.kv.Put(ctx, key, b); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPersist, key, err)
	}
	return nil
}

// Set stores one rating. Unknown categories and values outside the scale are rejected.
func (s *Store) Set(ctx context.Context, c category.Category, v float64) error {
	if err := category.CheckScore(c, v); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.scores(ctx)
	if err != nil {
		return err
	}
	m[c] = v
	return s.write(ctx, ScoresKey, m)
}

// Replace overwrites all ratings with m.
func (s *Store) Replace(ctx context.Context, m category.ScoreMap) error {
	if err := m.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, ScoresKey, m)
}

// Clear forgets every rating.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, ScoresKey); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPersist, ScoresKey, err)
	}
	return nil
}

// NormalizeName trims and NFC-normalises an overlay name.
func NormalizeName(name string) (string, error) {
	n := norm.NFC.String(strings.TrimSpace(name))
	if n == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(n) > MaxNameLen {
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidName, MaxNameLen)
	}
	return n, nil
}

// User is one named score set of the overlay.
type User struct {
	Name   string            `json:"name"`
	Scores category.ScoreMap `json:"scores"`
}

func (s *Store) users(ctx context.Context) (map[string]category.ScoreMap, error) {
	var m map[string]category.ScoreMap
	ok, err := s.read(ctx, UsersKey, &m)
	if err != nil || !ok || m == nil {
		return map[string]category.ScoreMap{}, err
	}
	return m, nil
}

// Users returns the overlay sorted by name.
func (s *Store) Users(ctx context.Context) []User {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, _ := s.users(ctx)
	out := make([]User, 0, len(m))
	for name, scores := range m {
		out = append(out, User{Name: name, Scores: scores})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AddUser stores scores under name, replacing an existing entry of the same name.
// It returns the normalised name.
func (s *Store) AddUser(ctx context.Context, name string, scores category.ScoreMap) (string, error) {
	n, err := NormalizeName(name)
	if err != nil {
		return "", err
	}
	if err := scores.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.users(ctx)
	if err != nil {
		return "", err
	}
	m[n] = scores.Clone()
	return n, s.write(ctx, UsersKey, m)
}

// RemoveUser drops one overlay entry. Removing an unknown name reports ErrUserNotFound.
func (s *Store) RemoveUser(ctx context.Context, name string) error {
	n, err := NormalizeName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.users(ctx)
	if err != nil {
		return err
	}
	if _, ok := m[n]; !ok {
		return fmt.Errorf("%w: %q", ErrUserNotFound, n)
	}
	delete(m, n)
	return s.write(ctx, UsersKey, m)
}

// ClearUsers empties the overlay.
func (s *Store) ClearUsers(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, UsersKey); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPersist, UsersKey, err)
	}
	return nil
}
