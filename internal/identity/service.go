package identity

import (
	"context"
	"errors"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=identity
type Repository interface {
	GetIdentity(ctx context.Context) (*Identity, error)
	SaveIdentity(ctx context.Context, id *Identity) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the saved identity, or the default one when onboarding has not
// happened yet.
func (s *Service) Get(ctx context.Context) (Identity, error) {
	id, err := s.repo.GetIdentity(ctx)
	if errors.Is(err, ErrNotFound) {
		return Default(), nil
	}

	if err != nil {
		return Identity{}, err
	}

	id.Onboarded = true

	return *id, nil
}

type UpdateParams struct {
	Name        string
	Occupation  string
	Description string
}

// Update saves the identity. Blank name or occupation fall back to the
// defaults.
func (s *Service) Update(ctx context.Context, params UpdateParams) (Identity, error) {
	id := normalize(Identity{
		Name:        params.Name,
		Occupation:  params.Occupation,
		Description: params.Description,
	})

	if err := s.repo.SaveIdentity(ctx, &id); err != nil {
		return Identity{}, err
	}

	id.Onboarded = true

	return id, nil
}
