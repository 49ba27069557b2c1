package vehicles

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pitstop-erp/pitstop-erp/internal/platform/httpx"
	"github.com/pitstop-erp/pitstop-erp/internal/shared"
)

// Service owns vehicle business rules.
type Service struct {
	repo     *Repository
	validate *validator.Validate
}

// NewService constructs the vehicle service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo, validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (s *Service) List(ctx context.Context, filters ListFilters, page shared.PageRequest) (shared.PagedResponse[Vehicle], error) {
	page = page.Clamp()
	vehicles, total, err := s.repo.List(ctx, filters, page.Size, page.Offset())
	if err != nil {
		return shared.PagedResponse[Vehicle]{}, err
	}
	if vehicles == nil {
		vehicles = []Vehicle{}
	}
	return shared.PagedResponse[Vehicle]{Data: vehicles, TotalCount: total, PageNumber: page.Number, PageSize: page.Size}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Vehicle, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, input VehicleInput) (Vehicle, error) {
	normalise(&input)
	if err := s.validate.Struct(input); err != nil {
		return Vehicle{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return s.repo.Create(ctx, input)
}

func (s *Service) Update(ctx context.Context, id int64, input VehicleInput) error {
	normalise(&input)
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return s.repo.Update(ctx, id, input)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Plates and VINs are stored upper-cased without surrounding whitespace so
// equality checks and the unique index behave.
func normalise(input *VehicleInput) {
	input.LicensePlate = strings.ToUpper(strings.TrimSpace(input.LicensePlate))
	input.VIN = strings.ToUpper(strings.TrimSpace(input.VIN))
}
