package appointments

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pitstop-erp/pitstop-erp/internal/platform/httpx"
	"github.com/pitstop-erp/pitstop-erp/internal/shared"
)

// Service owns appointment business rules.
type Service struct {
	repo     *Repository
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService constructs the appointment service.
func NewService(repo *Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

func (s *Service) List(ctx context.Context, filters ListFilters, page shared.PageRequest) (shared.PagedResponse[Appointment], error) {
	page = page.Clamp()
	appointments, total, err := s.repo.List(ctx, filters, page.Size, page.Offset())
	if err != nil {
		return shared.PagedResponse[Appointment]{}, err
	}
	if appointments == nil {
		appointments = []Appointment{}
	}
	return shared.PagedResponse[Appointment]{Data: appointments, TotalCount: total, PageNumber: page.Number, PageSize: page.Size}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Appointment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, input AppointmentInput) (Appointment, error) {
	if err := s.validate.Struct(input); err != nil {
		return Appointment{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	if input.ScheduledAt.Before(time.Now()) {
		return Appointment{}, fmt.Errorf("%w: scheduledAt must be in the future", httpx.ErrValidation)
	}
	s.warnOnOverlap(ctx, input)
	return s.repo.Create(ctx, input)
}

func (s *Service) Update(ctx context.Context, id int64, input AppointmentInput) error {
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return s.repo.Update(ctx, id, input)
}

// Transition moves the appointment through its lifecycle. Invalid jumps are
// rejected before touching the store.
func (s *Service) Transition(ctx context.Context, id int64, to Status) (Appointment, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if !CanTransition(current.Status, to) {
		return Appointment{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, to)
	}
	if err := s.repo.SetStatus(ctx, id, current.Status, to); err != nil {
		return Appointment{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Double bookings are allowed but logged; the front desk sometimes stacks
// short jobs deliberately.
func (s *Service) warnOnOverlap(ctx context.Context, input AppointmentInput) {
	duration := time.Duration(input.EstimatedMins) * time.Minute
	if duration == 0 {
		duration = time.Hour
	}
	count, err := s.repo.CountOverlapping(ctx, input.VehicleID, input.ScheduledAt, input.ScheduledAt.Add(duration))
	if err != nil {
		s.logger.Warn("overlap check failed", slog.Any("error", err))
		return
	}
	if count > 0 {
		s.logger.Warn("appointment overlaps existing booking",
			slog.Int64("vehicleId", input.VehicleID),
			slog.Time("scheduledAt", input.ScheduledAt),
			slog.Int("overlaps", count))
	}
}
