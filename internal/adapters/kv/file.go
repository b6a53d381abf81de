package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/logger"
)

// corruptSuffix is appended to a corrupt document moved out of the way.
const corruptSuffix = ".corrupt"

// FileStore keeps every key in one JSON object on disk. Writes go to a temporary
// file that is renamed over the document, so readers never see a partial file.
type FileStore struct {
	path   string
	logger logger.Logger
	mu     sync.Mutex
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithFileLogger sets the logger that reports discarded documents.
func WithFileLogger(l logger.Logger) FileOption {
	return func(s *FileStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewFileStore returns a store backed by path. The file is created on first write.
func NewFileStore(path string, opts ...FileOption) *FileStore {
	s := &FileStore{path: path, logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FileStore) load() (map[string]json.RawMessage, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(b) == 0 {
		return map[string]json.RawMessage{}, nil
	}
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupted, s.path, err)
	}
	return doc, nil
}

func (s *FileStore) save(doc map[string]json.RawMessage) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	v, ok := doc[key]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(v), nil
}

// Put implements Store. value must be valid JSON.
func (s *FileStore) Put(_ context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	if !json.Valid(value) {
		return fmt.Errorf("put %s: value is not valid JSON", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if errors.Is(err, ErrCorrupted) {
		// A corrupt document would block every write; it is kept next to the
		// fresh one for manual recovery.
		if qerr := s.quarantine(err); qerr != nil {
			return qerr
		}
		doc = map[string]json.RawMessage{}
	} else if err != nil {
		return err
	}
	doc[key] = json.RawMessage(value)
	return s.save(doc)
}

// quarantine renames the corrupt document to path.corrupt, replacing an older copy.
func (s *FileStore) quarantine(cause error) error {
	aside := s.path + corruptSuffix
	if err := os.Rename(s.path, aside); err != nil {
		return fmt.Errorf("move corrupt %s aside: %w", s.path, err)
	}
	s.logger.Warn(context.Background(), "corrupt score document moved aside",
		logger.String("path", s.path),
		logger.String("moved_to", aside),
		logger.Error(cause),
	)
	return nil
}

// Delete implements Store.
func (s *FileStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	return s.save(doc)
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }
