package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/identinet/did-web-server/pkg/helpers"
	"github.com/identinet/did-web-server/pkg/model"
)

// FileStore persists one JSON file per DID below a root directory.
// Writes go through a temporary file and a rename so that concurrent
// readers observe whole documents only, and are serialized per key.
type FileStore struct {
	directory string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFileStore creates a file store rooted at directory
func NewFileStore(directory string) (*FileStore, error) {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, helpers.NewErrorDetails(helpers.ErrNoFileWrite.Title, err.Error())
	}
	return &FileStore{
		directory: directory,
		locks:     make(map[string]*sync.Mutex),
	}, nil
}

// keyLock returns the mutex serializing writes to a key
func (s *FileStore) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// id2filename computes the file a key is stored at, <root>/<key>.json.
// The root DID key .well-known maps to <root>/.well-known.json. Keys
// escaping the root directory are rejected.
func (s *FileStore) id2filename(key string) (string, error) {
	if key == "" {
		return "", helpers.NewErrorDetails(helpers.ErrNoFileName.Title, "empty key")
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return "", helpers.NewErrorDetails(helpers.ErrNoFileName.Title, fmt.Sprintf("key %q escapes the store directory", key))
		}
	}

	filename := filepath.Join(s.directory, filepath.FromSlash(key)+".json")

	rel, err := filepath.Rel(s.directory, filename)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", helpers.NewErrorDetails(helpers.ErrNoFileName.Title, fmt.Sprintf("key %q escapes the store directory", key))
	}

	return filename, nil
}

// filename2id reverses id2filename
func (s *FileStore) filename2id(filename string) (string, error) {
	rel, err := filepath.Rel(s.directory, filename)
	if err != nil {
		return "", helpers.NewErrorDetails(helpers.ErrNoFileName.Title, err.Error())
	}
	if !strings.HasSuffix(rel, ".json") {
		return "", helpers.NewErrorDetails(helpers.ErrNoFileName.Title, fmt.Sprintf("%q is not a document file", filename))
	}
	return filepath.ToSlash(strings.TrimSuffix(rel, ".json")), nil
}

func (s *FileStore) read(filename string) (*model.Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, helpers.NewErrorDetails(helpers.ErrDIDNotFound.Title, "DID not found")
		}
		return nil, helpers.NewErrorDetails(helpers.ErrNoFileRead.Title, err.Error())
	}

	doc, err := model.ParseDocument(data)
	if err != nil {
		return nil, helpers.NewErrorDetails(helpers.ErrContentConversion.Title, err.Error())
	}
	return doc, nil
}

// write persists a document atomically, temp file plus rename
func (s *FileStore) write(filename string, doc *model.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return helpers.NewErrorDetails(helpers.ErrContentConversion.Title, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return helpers.NewErrorDetails(helpers.ErrNoFileWrite.Title, err.Error())
	}

	tmp, err := os.CreateTemp(filepath.Dir(filename), ".did-*")
	if err != nil {
		return helpers.NewErrorDetails(helpers.ErrNoFileWrite.Title, err.Error())
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return helpers.NewErrorDetails(helpers.ErrNoFileWrite.Title, err.Error())
	}
	if err := tmp.Close(); err != nil {
		return helpers.NewErrorDetails(helpers.ErrNoFileWrite.Title, err.Error())
	}

	if err := os.Rename(tmp.Name(), filename); err != nil {
		return helpers.NewErrorDetails(helpers.ErrNoFileWrite.Title, err.Error())
	}
	return nil
}

// Get returns the document stored at key
func (s *FileStore) Get(ctx context.Context, key string) (*model.Document, error) {
	filename, err := s.id2filename(key)
	if err != nil {
		return nil, err
	}
	return s.read(filename)
}

// Create stores a document at a previously empty key
func (s *FileStore) Create(ctx context.Context, key string, doc *model.Document) (*model.Document, error) {
	filename, err := s.id2filename(key)
	if err != nil {
		return nil, err
	}

	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	if _, err := os.Stat(filename); err == nil {
		return nil, helpers.NewErrorDetails(helpers.ErrDIDExists.Title, fmt.Sprintf("DID already exists: %s", doc.ID))
	}

	if err := s.write(filename, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Update replaces the document at an existing key
func (s *FileStore) Update(ctx context.Context, key string, doc *model.Document) (*model.Document, error) {
	filename, err := s.id2filename(key)
	if err != nil {
		return nil, err
	}

	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	if _, err := os.Stat(filename); err != nil {
		return nil, helpers.NewErrorDetails(helpers.ErrDIDNotFound.Title, "DID not found")
	}

	if err := s.write(filename, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Remove deletes the document at key and returns it
func (s *FileStore) Remove(ctx context.Context, key string) (*model.Document, error) {
	filename, err := s.id2filename(key)
	if err != nil {
		return nil, err
	}

	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	doc, err := s.read(filename)
	if err != nil {
		return nil, err
	}

	if err := os.Remove(filename); err != nil {
		return nil, helpers.NewErrorDetails(helpers.ErrNoFileWrite.Title, err.Error())
	}
	return doc, nil
}
