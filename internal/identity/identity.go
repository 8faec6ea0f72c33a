// Package identity persists the logged-in actor between invocations.
//
// The store holds one small JSON document written by `neuroscan login` and
// removed by `neuroscan logout`. It is read once at startup and converted into
// an explicit screening.AuthContext.
package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rbright/neuroscan/internal/logging"
	"github.com/rbright/neuroscan/internal/screening"
)

// FileName is the identity document name inside the state directory.
const FileName = "identity.json"

// ErrNotFound is returned by Load when no identity has been saved.
var ErrNotFound = errors.New("no saved identity")

// Identity is the on-disk shape of a login.
type Identity struct {
	Role string `json:"role"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Auth converts the stored identity into an AuthContext.
func (i Identity) Auth() (screening.AuthContext, error) {
	role, err := screening.ParseRole(i.Role)
	if err != nil {
		return screening.AuthContext{}, err
	}
	return screening.AuthContext{
		Role:      role,
		PatientID: strings.TrimSpace(i.ID),
		Name:      strings.TrimSpace(i.Name),
	}, nil
}

// FromAuth builds the persisted form of an AuthContext.
func FromAuth(auth screening.AuthContext) Identity {
	return Identity{Role: string(auth.Role), ID: auth.PatientID, Name: auth.Name}
}

// Store reads and writes the identity document at Path.
type Store struct {
	Path string
}

// DefaultStore places the identity file in the neuroscan state directory.
func DefaultStore() (Store, error) {
	dir, err := logging.StateDir()
	if err != nil {
		return Store{}, fmt.Errorf("resolve identity dir: %w", err)
	}
	return Store{Path: filepath.Join(dir, FileName)}, nil
}

// Load reads the saved identity. A missing file yields ErrNotFound.
func (s Store) Load() (Identity, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Identity{}, ErrNotFound
		}
		return Identity{}, fmt.Errorf("read identity %q: %w", s.Path, err)
	}

	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return Identity{}, fmt.Errorf("decode identity %q: %w", s.Path, err)
	}
	if strings.TrimSpace(id.ID) == "" {
		return Identity{}, fmt.Errorf("identity %q has no id", s.Path)
	}
	return id, nil
}

// Save writes the identity with owner-only permissions.
func (s Store) Save(id Identity) error {
	if strings.TrimSpace(id.ID) == "" {
		return fmt.Errorf("identity id must not be empty")
	}
	if _, err := screening.ParseRole(id.Role); err != nil {
		return err
	}

	data, err := json.MarshalIndent(id, "", "  ")
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("create identity dir: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace identity: %w", err)
	}
	return nil
}

// Remove deletes the saved identity. It reports whether a file existed.
func (s Store) Remove() (bool, error) {
	err := os.Remove(s.Path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("remove identity %q: %w", s.Path, err)
}
