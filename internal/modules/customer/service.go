package customer

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
)

const searchLimit = 10

type Service interface {
	ListCustomers(ctx context.Context, f ListFilter) (*ListResult, error)
	GetCustomer(ctx context.Context, id string) (*Detail, error)
	SearchCustomers(ctx context.Context, query string) ([]*Customer, error)
	UpdateCustomer(ctx context.Context, id string, req UpdateRequest) (*Customer, error)
	Stats(ctx context.Context) (*Stats, error)
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) ListCustomers(ctx context.Context, f ListFilter) (*ListResult, error) {
	f.Search = strings.TrimSpace(f.Search)
	customers, total, err := s.repo.ListCustomers(ctx, f)
	if err != nil {
		return nil, err
	}
	return &ListResult{Customers: customers, Pagination: f.Result(total)}, nil
}

func (s *service) GetCustomer(ctx context.Context, id string) (*Detail, error) {
	cid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid customer id")
	}
	c, err := s.repo.GetCustomer(ctx, cid)
	if err != nil {
		return nil, err
	}
	jobs, err := s.repo.ListCustomerJobs(ctx, cid)
	if err != nil {
		return nil, err
	}
	return &Detail{Customer: c, Jobs: jobs}, nil
}

func (s *service) SearchCustomers(ctx context.Context, query string) ([]*Customer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("search query is required")
	}
	return s.repo.SearchCustomers(ctx, query, searchLimit)
}

func (s *service) UpdateCustomer(ctx context.Context, id string, req UpdateRequest) (*Customer, error) {
	cid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid customer id")
	}
	name := strings.TrimSpace(req.Name)
	phone := NormalizePhone(req.Phone)
	if name == "" || phone == "" {
		return nil, apperr.Validation("name and phone are required")
	}

	c, err := s.repo.GetCustomer(ctx, cid)
	if err != nil {
		return nil, err
	}
	c.Name = name
	c.Phone = phone
	c.Email = NormalizeEmail(req.Email)
	if err := s.repo.UpdateCustomer(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.CustomerStats(ctx)
}

// NormalizePhone trims surrounding whitespace; phone is the dedup key.
func NormalizePhone(phone string) string { return strings.TrimSpace(phone) }

// NormalizeEmail lower-cases email and maps empty to nil.
func NormalizeEmail(email string) *string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	return &email
}
