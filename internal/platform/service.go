package platform

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/cryptobalance/tracker/internal/domain"
)

// ErrInvalidName indicates a platform name outside the accepted format.
var ErrInvalidName = errors.New("platform name must be 1-24 letters")

var nameFormat = regexp.MustCompile(`^[A-Za-z]{1,24}$`)

// Service manages platform records.
type Service struct {
	repo Repository
}

// NewService creates a new platform Service.
func NewService(repo Repository) *Service {
	if repo == nil {
		panic("platform.NewService: repo is nil")
	}
	return &Service{repo: repo}
}

// Create registers a new platform. The name is normalized to uppercase and
// must be unique.
func (s *Service) Create(ctx context.Context, name string) (domain.Platform, error) {
	normalized, err := normalize(name)
	if err != nil {
		return domain.Platform{}, err
	}

	p := domain.Platform{
		ID:   uuid.NewString(),
		Name: normalized,
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return domain.Platform{}, err
	}
	return p, nil
}

// Rename changes a platform's name, keeping the uppercase-unique rule.
func (s *Service) Rename(ctx context.Context, id, name string) (domain.Platform, error) {
	normalized, err := normalize(name)
	if err != nil {
		return domain.Platform{}, err
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Platform{}, err
	}

	p.Name = normalized
	if err := s.repo.Update(ctx, p); err != nil {
		return domain.Platform{}, err
	}
	return p, nil
}

// Get retrieves a platform by id.
func (s *Service) Get(ctx context.Context, id string) (domain.Platform, error) {
	return s.repo.FindByID(ctx, id)
}

// List retrieves all platforms.
func (s *Service) List(ctx context.Context) ([]domain.Platform, error) {
	return s.repo.FindAll(ctx)
}

func normalize(name string) (string, error) {
	normalized := domain.NormalizePlatformName(name)
	if !nameFormat.MatchString(normalized) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return normalized, nil
}
