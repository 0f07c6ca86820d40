package user

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound is returned when no user matches a lookup.
var ErrNotFound = errors.New("user not found")

// Repository is the persisted staff-account store.
type Repository interface {
	List() ([]User, error)
	FindByUsername(username string) (*User, error)
	FindByID(id string) (*User, error)
	Create(u User) error
}

// FileRepository keeps users in a JSON file. The file is read on every
// call — login and session checks always see the latest contents, so an
// operator can edit accounts without restarting the server.
type FileRepository struct {
	path string
	mu   sync.Mutex // serializes read-modify-write on Create
}

// NewFileRepository creates a repository over the given users file.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// List reads and decodes the whole users file.
func (r *FileRepository) List() ([]User, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("users file %s not found", r.path)
		}
		return nil, fmt.Errorf("reading users file: %w", err)
	}
	var users []User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("decoding users file: %w", err)
	}
	return users, nil
}

// FindByUsername looks a user up case-insensitively.
func (r *FileRepository) FindByUsername(username string) (*User, error) {
	users, err := r.List()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Username, username) {
			return &users[i], nil
		}
	}
	return nil, ErrNotFound
}

// FindByID looks a user up by id.
func (r *FileRepository) FindByID(id string) (*User, error) {
	users, err := r.List()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, ErrNotFound
}

// Create appends a user to the file, creating it (and its directory) on
// first use.
func (r *FileRepository) Create(u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.List()
	if err != nil && !strings.Contains(err.Error(), "not found") {
		return err
	}
	for i := range users {
		if strings.EqualFold(users[i].Username, u.Username) {
			return fmt.Errorf("username %s already exists", u.Username)
		}
	}
	users = append(users, u)
	return r.write(users)
}

// Seed replaces the users file contents wholesale.
func (r *FileRepository) Seed(users []User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(users)
}

func (r *FileRepository) write(users []User) error {
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating users directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding users file: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o600); err != nil {
		return fmt.Errorf("writing users file: %w", err)
	}
	return nil
}
