package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/teamsales/salesportal/models"
)

type OrganizationService struct {
	orgs OrganizationStore
}

func NewOrganizationService(orgs OrganizationStore) *OrganizationService {
	return &OrganizationService{orgs: orgs}
}

func (s *OrganizationService) List(ctx context.Context) ([]models.Organization, error) {
	return s.orgs.List(ctx)
}

// nameTaken reports whether another organization already uses name, ignoring case.
func (s *OrganizationService) nameTaken(ctx context.Context, name, exceptID string) (bool, error) {
	orgs, err := s.orgs.List(ctx)
	if err != nil {
		return false, err
	}
	for _, o := range orgs {
		if o.ID != exceptID && strings.EqualFold(strings.TrimSpace(o.Name), name) {
			return true, nil
		}
	}
	return false, nil
}

func (s *OrganizationService) Create(ctx context.Context, actor Actor, name string) (*models.Organization, error) {
	if !actor.IsAdmin() {
		return nil, forbidden("only admin may add organizations")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name is required")
	}
	taken, err := s.nameTaken(ctx, name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: organization %q already exists", ErrConflict, name)
	}
	org := &models.Organization{Name: name}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

// Rename changes the display name. Reports filed under the old name keep it
// and render the placeholder from then on.
func (s *OrganizationService) Rename(ctx context.Context, actor Actor, id, name string) error {
	if !actor.IsAdmin() {
		return forbidden("only admin may rename organizations")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("name is required")
	}
	taken, err := s.nameTaken(ctx, name, id)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: organization %q already exists", ErrConflict, name)
	}
	return s.orgs.Rename(ctx, id, name)
}

func (s *OrganizationService) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.IsAdmin() {
		return forbidden("only admin may delete organizations")
	}
	return s.orgs.Delete(ctx, id)
}

// Resolver maps the organisation names stored on reports to current names.
type Resolver struct {
	known map[string]string
}

// Resolver snapshots the current organizations.
func (s *OrganizationService) Resolver(ctx context.Context) (*Resolver, error) {
	orgs, err := s.orgs.List(ctx)
	if err != nil {
		return nil, err
	}
	return NewResolver(orgs), nil
}

func NewResolver(orgs []models.Organization) *Resolver {
	r := &Resolver{known: make(map[string]string, len(orgs))}
	for _, o := range orgs {
		r.known[strings.ToLower(strings.TrimSpace(o.Name))] = o.Name
	}
	return r
}

// ResolveName returns the organization's current spelling, or the
// placeholder when no organization has that name.
func (r *Resolver) ResolveName(name string) string {
	if r == nil {
		return name
	}
	if n, ok := r.known[strings.ToLower(strings.TrimSpace(name))]; ok {
		return n
	}
	return models.UnknownOrganisation
}
