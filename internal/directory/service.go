package directory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pitstop-erp/pitstop-erp/internal/platform/httpx"
	"github.com/pitstop-erp/pitstop-erp/internal/shared"
)

// Service owns directory business rules: input validation, name
// normalisation, and contact cache invalidation on writes.
type Service struct {
	repo     *Repository
	cache    *ContactCache
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService constructs the directory service.
func NewService(repo *Repository, cache *ContactCache, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

var titleCaser = cases.Title(language.English)

// normaliseName trims and title-cases a person or company name so lookups
// and listings stay consistent regardless of input casing.
func normaliseName(name string) string {
	return titleCaser.String(strings.TrimSpace(strings.ToLower(name)))
}

func (s *Service) checkInput(input any) error {
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return nil
}

// --- Customers ---

func (s *Service) ListCustomers(ctx context.Context, filters ListFilters, page shared.PageRequest) (shared.PagedResponse[Customer], error) {
	page = page.Clamp()
	customers, total, err := s.repo.ListCustomers(ctx, filters, page.Size, page.Offset())
	if err != nil {
		return shared.PagedResponse[Customer]{}, err
	}
	if customers == nil {
		customers = []Customer{}
	}
	return shared.PagedResponse[Customer]{Data: customers, TotalCount: total, PageNumber: page.Number, PageSize: page.Size}, nil
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

func (s *Service) CreateCustomer(ctx context.Context, input CustomerInput) (Customer, error) {
	if err := s.checkInput(input); err != nil {
		return Customer{}, err
	}
	input.Name = normaliseName(input.Name)
	customer, err := s.repo.CreateCustomer(ctx, input)
	if err != nil {
		return Customer{}, err
	}
	s.invalidateContacts(ctx)
	return customer, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id int64, input CustomerInput) error {
	if err := s.checkInput(input); err != nil {
		return err
	}
	input.Name = normaliseName(input.Name)
	if err := s.repo.UpdateCustomer(ctx, id, input); err != nil {
		return err
	}
	s.invalidateContacts(ctx)
	return nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	if err := s.repo.DeleteCustomer(ctx, id); err != nil {
		return err
	}
	s.invalidateContacts(ctx)
	return nil
}

// --- Suppliers ---

func (s *Service) ListSuppliers(ctx context.Context, filters ListFilters, page shared.PageRequest) (shared.PagedResponse[Supplier], error) {
	page = page.Clamp()
	suppliers, total, err := s.repo.ListSuppliers(ctx, filters, page.Size, page.Offset())
	if err != nil {
		return shared.PagedResponse[Supplier]{}, err
	}
	if suppliers == nil {
		suppliers = []Supplier{}
	}
	return shared.PagedResponse[Supplier]{Data: suppliers, TotalCount: total, PageNumber: page.Number, PageSize: page.Size}, nil
}

func (s *Service) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	return s.repo.GetSupplier(ctx, id)
}

func (s *Service) CreateSupplier(ctx context.Context, input SupplierInput) (Supplier, error) {
	if err := s.checkInput(input); err != nil {
		return Supplier{}, err
	}
	input.Name = normaliseName(input.Name)
	supplier, err := s.repo.CreateSupplier(ctx, input)
	if err != nil {
		return Supplier{}, err
	}
	s.invalidateContacts(ctx)
	return supplier, nil
}

func (s *Service) UpdateSupplier(ctx context.Context, id int64, input SupplierInput) error {
	if err := s.checkInput(input); err != nil {
		return err
	}
	input.Name = normaliseName(input.Name)
	if err := s.repo.UpdateSupplier(ctx, id, input); err != nil {
		return err
	}
	s.invalidateContacts(ctx)
	return nil
}

func (s *Service) DeleteSupplier(ctx context.Context, id int64) error {
	if err := s.repo.DeleteSupplier(ctx, id); err != nil {
		return err
	}
	s.invalidateContacts(ctx)
	return nil
}

// invalidateContacts bumps the contact cache version. A failed bump only
// delays freshness until TTL expiry, so it is logged, not returned.
func (s *Service) invalidateContacts(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil && s.logger != nil {
		s.logger.Warn("contact cache bump failed", slog.Any("error", err))
	}
}
