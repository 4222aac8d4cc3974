package organization

import (
	"context"
	"strings"

	"github.com/soudan/casebook/internal/platform/apperr"
)

var validOrgTypes = map[string]bool{
	TypeService: true, TypeMedical: true, TypeGuardian: true, TypeOther: true,
}

type Service struct {
	orgs  Repository
	links LinkRepository
	users UserChecker
}

func NewService(orgs Repository, links LinkRepository, users UserChecker) *Service {
	return &Service{orgs: orgs, links: links, users: users}
}

// -- Organizations --

func validateOrg(o *Organization) error {
	if strings.TrimSpace(o.Name) == "" {
		return apperr.Validation("name is required")
	}
	if !validOrgTypes[o.OrganizationType] {
		return apperr.Validation("invalid organization_type: %q", o.OrganizationType)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in Input) (*Organization, error) {
	o := &Organization{}
	in.apply(o)
	if err := validateOrg(o); err != nil {
		return nil, err
	}
	if err := s.orgs.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Organization, error) {
	return s.orgs.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, in Input) (*Organization, error) {
	o, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(o)
	if err := validateOrg(o); err != nil {
		return nil, err
	}
	if err := s.orgs.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.orgs.SoftDelete(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Organization, int, error) {
	if f.OrganizationType != "" && !validOrgTypes[f.OrganizationType] {
		return nil, 0, apperr.Validation("invalid organization_type: %q", f.OrganizationType)
	}
	return s.orgs.List(ctx, f, limit, offset)
}

// -- User links --

func validateLink(l *Link) error {
	if l.OrganizationID == 0 {
		return apperr.Validation("organization_id is required")
	}
	if !l.StartDate.IsZero() && !l.EndDate.IsZero() && l.EndDate.Before(l.StartDate) {
		return apperr.Validation("end_date must not be before start_date")
	}
	return nil
}

// LinkUser attaches an organization to the user in the URL. A user_id in
// the body must agree with it.
func (s *Service) LinkUser(ctx context.Context, userID int64, in LinkInput) (*Link, error) {
	if in.UserID != nil && *in.UserID != userID {
		return nil, apperr.Validation("user_id in body does not match the URL")
	}
	if err := s.users.Exists(ctx, userID); err != nil {
		return nil, err
	}
	l := &Link{UserID: userID}
	in.apply(l)
	if err := validateLink(l); err != nil {
		return nil, err
	}
	if _, err := s.orgs.GetByID(ctx, l.OrganizationID); err != nil {
		return nil, err
	}
	if err := s.links.Create(ctx, l); err != nil {
		return nil, err
	}
	return s.links.GetByID(ctx, l.ID)
}

func (s *Service) UpdateLink(ctx context.Context, id int64, in LinkInput) (*Link, error) {
	l, err := s.links.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.UserID != nil && *in.UserID != l.UserID {
		return nil, apperr.Validation("a link cannot be moved to another user")
	}
	in.apply(l)
	if err := validateLink(l); err != nil {
		return nil, err
	}
	if in.OrganizationID != nil {
		if _, err := s.orgs.GetByID(ctx, l.OrganizationID); err != nil {
			return nil, err
		}
	}
	if err := s.links.Update(ctx, l); err != nil {
		return nil, err
	}
	return s.links.GetByID(ctx, id)
}

func (s *Service) DeleteLink(ctx context.Context, id int64) error {
	return s.links.SoftDelete(ctx, id)
}

func (s *Service) LinksForUser(ctx context.Context, userID int64) ([]*Link, error) {
	if err := s.users.Exists(ctx, userID); err != nil {
		return nil, err
	}
	return s.links.ListByUser(ctx, userID)
}

func (s *Service) LinksForOrganization(ctx context.Context, orgID int64) ([]*Link, error) {
	if _, err := s.orgs.GetByID(ctx, orgID); err != nil {
		return nil, err
	}
	return s.links.ListByOrganization(ctx, orgID)
}
