package parts

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pitstop-erp/pitstop-erp/internal/platform/httpx"
	"github.com/pitstop-erp/pitstop-erp/internal/shared"
)

// Service owns parts business rules.
type Service struct {
	repo     *Repository
	validate *validator.Validate
}

// NewService constructs the parts service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo, validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (s *Service) List(ctx context.Context, filters ListFilters, page shared.PageRequest) (shared.PagedResponse[Part], error) {
	page = page.Clamp()
	parts, total, err := s.repo.List(ctx, filters, page.Size, page.Offset())
	if err != nil {
		return shared.PagedResponse[Part]{}, err
	}
	if parts == nil {
		parts = []Part{}
	}
	return shared.PagedResponse[Part]{Data: parts, TotalCount: total, PageNumber: page.Number, PageSize: page.Size}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Part, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, input PartInput) (Part, error) {
	input.PartNumber = strings.ToUpper(strings.TrimSpace(input.PartNumber))
	if err := s.validate.Struct(input); err != nil {
		return Part{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return s.repo.Create(ctx, input)
}

func (s *Service) Update(ctx context.Context, id int64, input PartInput) error {
	input.PartNumber = strings.ToUpper(strings.TrimSpace(input.PartNumber))
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return s.repo.Update(ctx, id, input)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// AdjustStock applies a manual stock correction.
func (s *Service) AdjustStock(ctx context.Context, id int64, adjustment StockAdjustment) (Part, error) {
	if err := s.validate.Struct(adjustment); err != nil {
		return Part{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return s.repo.AdjustStock(ctx, id, adjustment.Delta, adjustment.Reason)
}
