package aging

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pitstop-erp/pitstop-erp/internal/platform/httpx"
	"github.com/pitstop-erp/pitstop-erp/internal/shared"
)

// Handler serves the aging endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers aging routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/payables", h.list(Payables))
	r.Get("/payables/summary", h.summarize(Payables))
	r.Get("/receivables", h.list(Receivables))
	r.Get("/receivables/summary", h.summarize(Receivables))
}

func (h *Handler) list(side Side) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, page, asOf, err := parseQuery(r)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Query", err.Error())
			return
		}

		result, err := h.service.List(r.Context(), side, query, page, asOf)
		if err != nil {
			h.respondError(w, side, err)
			return
		}
		httpx.JSON(w, http.StatusOK, result)
	}
}

func (h *Handler) summarize(side Side) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, _, asOf, err := parseQuery(r)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Query", err.Error())
			return
		}

		summary, err := h.service.Summarize(r.Context(), side, query, asOf)
		if err != nil {
			h.respondError(w, side, err)
			return
		}
		httpx.JSON(w, http.StatusOK, summary)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, side Side, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidDateRange):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Date Range", err.Error())
	case errors.Is(err, ErrDataSource):
		h.logger.Error("aging source fetch failed", slog.String("side", string(side)), slog.Any("error", err))
		httpx.RespondError(w, httpx.ErrUpstream)
	default:
		h.logger.Error("aging request failed", slog.String("side", string(side)), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func parseQuery(r *http.Request) (Query, shared.PageRequest, time.Time, error) {
	values := r.URL.Query()

	var query Query
	if raw := values.Get("counterpartyId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Query{}, shared.PageRequest{}, time.Time{}, errors.New("counterpartyId must be an integer")
		}
		query.CounterpartyID = id
	}
	if raw := values.Get("fromDate"); raw != "" {
		date, err := parseDate(raw)
		if err != nil {
			return Query{}, shared.PageRequest{}, time.Time{}, errors.New("fromDate must be an RFC3339 or YYYY-MM-DD date")
		}
		query.FromDate = date
	}
	if raw := values.Get("toDate"); raw != "" {
		date, err := parseDate(raw)
		if err != nil {
			return Query{}, shared.PageRequest{}, time.Time{}, errors.New("toDate must be an RFC3339 or YYYY-MM-DD date")
		}
		query.ToDate = date
	}
	if raw := values.Get("minOverdueDays"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return Query{}, shared.PageRequest{}, time.Time{}, errors.New("minOverdueDays must be an integer")
		}
		query.MinOverdueDays = &days
	}
	if raw := values.Get("paymentStatus"); raw != "" {
		status := PaymentStatus(raw)
		if status != StatusUnpaid && status != StatusPartial {
			return Query{}, shared.PageRequest{}, time.Time{}, errors.New("paymentStatus must be Unpaid or Partial")
		}
		query.PaymentStatus = status
	}

	page := shared.PageRequest{
		Number: atoiDefault(values.Get("page"), 1),
		Size:   atoiDefault(values.Get("pageSize"), shared.DefaultPageSize),
	}.Clamp()

	asOf := time.Now().UTC()
	if raw := values.Get("asOf"); raw != "" {
		date, err := parseDate(raw)
		if err != nil {
			return Query{}, shared.PageRequest{}, time.Time{}, errors.New("asOf must be an RFC3339 or YYYY-MM-DD date")
		}
		asOf = date
	}

	return query, page, asOf, nil
}

func parseDate(raw string) (time.Time, error) {
	if date, err := time.Parse(time.RFC3339, raw); err == nil {
		return date, nil
	}
	return time.Parse("2006-01-02", raw)
}

func atoiDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
