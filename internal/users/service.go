package users

import (
	"context"
	"errors"

	"github.com/versegallery/versegallery/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Service encapsulates credential-store business logic over a Repository.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// Register stores a new user with a salted bcrypt digest and empty metadata.
// Username matching is case-sensitive exact; a taken name fails without
// touching the existing record.
func (s *Service) Register(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return errors.New("username and password required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u := &models.User{
		Username:     username,
		PasswordHash: string(hash),
	}
	return s.repo.Create(ctx, u)
}

// Verify checks the password against the stored digest. bcrypt's comparison
// is constant-time; the plaintext is never logged or echoed. Callers must
// not surface whether the username or the password was the mismatch.
func (s *Service) Verify(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadPassword
	}
	return u, nil
}

// MergeMetadata applies a field-wise partial update to the record identified
// by username. The merge target is always an explicit username, never an
// ambient "current user".
func (s *Service) MergeMetadata(ctx context.Context, username string, partial models.Metadata) (*models.User, error) {
	return s.repo.MergeMetadata(ctx, username, partial)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// Exists reports whether the username is registered. Session credentials are
// only ever issued for existing users.
func (s *Service) Exists(ctx context.Context, username string) bool {
	_, err := s.repo.GetByUsername(ctx, username)
	return err == nil
}
