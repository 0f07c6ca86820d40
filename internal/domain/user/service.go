package user

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/carepulse/carepulse/internal/platform/auth"
)

// ErrInvalidCredentials covers both unknown usernames and wrong
// passwords so a login response cannot be used to enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid username or password")

var validRoles = map[string]bool{
	auth.RoleAdmin:        true,
	auth.RoleReceptionist: true,
	auth.RoleDoctor:       true,
	auth.RoleLaboratorian: true,
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate checks a username/password pair against the users file.
func (s *Service) Authenticate(username, password string) (*User, error) {
	u, err := s.repo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GetByID returns the user with the given id.
func (s *Service) GetByID(id string) (*User, error) {
	return s.repo.FindByID(id)
}

// NewAccount is the input for staff account creation.
type NewAccount struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	FullName string `json:"fullName"`
}

// Create validates and stores a new staff account with a hashed password.
func (s *Service) Create(acct NewAccount) (*User, error) {
	if strings.TrimSpace(acct.Username) == "" || acct.Password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	if !validRoles[acct.Role] {
		return nil, fmt.Errorf("invalid role: %s", acct.Role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(acct.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	u := User{
		ID:        uuid.New().String(),
		Username:  acct.Username,
		Password:  string(hash),
		Role:      acct.Role,
		FullName:  acct.FullName,
		CreatedAt: Timestamp(time.Now()),
	}
	if err := s.repo.Create(u); err != nil {
		return nil, err
	}
	return &u, nil
}
