package connector

import (
	"errors"
	"os"

	"github.com/mrz1836/deeplink/internal/fileutil"
	dlerr "github.com/mrz1836/deeplink/pkg/errors"
)

// stateFileVersion is the current state file format.
const stateFileVersion = 1

// Store persists connector states between processes.
type Store interface {
	Load() ([]State, error)
	Save(states []State) error
}

// stateFile is the on-disk layout of a FileStore.
type stateFile struct {
	Version int     `json:"version"`
	Wallets []State `json:"wallets"`
}

// FileStore keeps connector states in a JSON file.
type FileStore struct {
	path string
}

// Compile-time interface check
var _ Store = (*FileStore)(nil)

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the state file path.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads saved states. A missing file yields no states.
func (f *FileStore) Load() ([]State, error) {
	var file stateFile
	if err := fileutil.ReadJSON(f.path, &file); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, dlerr.WithSuggestion(
			dlerr.WithCause(dlerr.ErrStateCorrupted, err),
			"run 'deeplink reset' to start over",
		)
	}
	return file.Wallets, nil
}

// Save writes states atomically.
func (f *FileStore) Save(states []State) error {
	return fileutil.WriteJSON(f.path, stateFile{Version: stateFileVersion, Wallets: states}, fileutil.FilePerm)
}

// Load creates a registry populated from store.
func Load(store Store, opts ...RegistryOption) (*Registry, error) {
	states, err := store.Load()
	if err != nil {
		return nil, err
	}
	r := NewRegistry(opts...)
	r.Restore(states)
	return r, nil
}

// Save writes the registry's states to store.
func (r *Registry) Save(store Store) error {
	return store.Save(r.Snapshot())
}
