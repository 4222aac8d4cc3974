package notebook

import (
	"context"

	"github.com/soudan/casebook/internal/platform/apperr"
)

var validNotebookTypes = map[string]bool{
	TypeRyoiku: true, TypeSeishin: true,
}

type Service struct {
	repo  Repository
	users UserChecker
}

func NewService(repo Repository, users UserChecker) *Service {
	return &Service{repo: repo, users: users}
}

func (s *Service) validate(ctx context.Context, n *Notebook) error {
	if n.UserID == 0 {
		return apperr.Validation("user_id is required")
	}
	if !validNotebookTypes[n.NotebookType] {
		return apperr.Validation("invalid notebook_type: %q", n.NotebookType)
	}
	if !n.IssueDate.IsZero() && !n.RenewalDate.IsZero() && n.RenewalDate.Before(n.IssueDate) {
		return apperr.Validation("renewal_date must not be before issue_date")
	}
	return s.users.Exists(ctx, n.UserID)
}

func (s *Service) Create(ctx context.Context, in Input) (*Notebook, error) {
	n := &Notebook{}
	in.apply(n)
	if err := s.validate(ctx, n); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Notebook, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, in Input) (*Notebook, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(n)
	if err := s.validate(ctx, n); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Notebook, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

// ListForUser returns NotFound when the user itself is missing.
func (s *Service) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]*Notebook, int, error) {
	if err := s.users.Exists(ctx, userID); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, ListFilter{UserID: &userID}, limit, offset)
}
