package tokenstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/voyago/voyago-client/pkg/logger"
)

// FileStore keeps a small JSON key/value document on disk, with the token
// bundle serialized under StorageKey. The file is written atomically; readers
// of a half-written file just see "no token".
type FileStore struct {
	path string
	logg *logger.Logger
}

func NewFileStore(path string, logg *logger.Logger) (*FileStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home dir: %w", err)
		}
		path = filepath.Join(home, ".voyago", "storage.json")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating storage dir: %w", err)
	}
	return &FileStore{path: path, logg: logg}, nil
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Read(ctx context.Context) (*TokenBundle, bool) {
	doc, err := s.load()
	if err != nil {
		s.debug(ctx, "token read failed, proceeding without token", err)
		return nil, false
	}
	raw, ok := doc[StorageKey]
	if !ok || len(raw) == 0 {
		return nil, false
	}
	var bundle TokenBundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		s.debug(ctx, "token bundle corrupt, proceeding without token", err)
		return nil, false
	}
	if !bundle.HasAccessToken() {
		return nil, false
	}
	return &bundle, true
}

func (s *FileStore) Write(ctx context.Context, bundle *TokenBundle) error {
	if bundle == nil {
		return s.Clear(ctx)
	}
	doc, err := s.load()
	if err != nil {
		doc = map[string]json.RawMessage{}
	}
	raw, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("marshal token bundle: %w", err)
	}
	doc[StorageKey] = raw
	return s.save(doc)
}

func (s *FileStore) Clear(_ context.Context) error {
	doc, err := s.load()
	if err != nil {
		doc = map[string]json.RawMessage{}
	}
	delete(doc, StorageKey)
	return s.save(doc)
}

func (s *FileStore) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *FileStore) save(doc map[string]json.RawMessage) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal storage doc: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write storage file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace storage file: %w", err)
	}
	return nil
}

func (s *FileStore) debug(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Debug(s.logg.WithField(ctx, "error", err.Error()), msg)
}
