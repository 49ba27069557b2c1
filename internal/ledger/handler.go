package ledger

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

// Handler serves the ledger endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers ledger routes. No update route exists on purpose.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.record)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.void)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	filters := ListFilters{
		TransactionType: TransactionType(values.Get("transactionType")),
		SourceType:      SourceType(values.Get("sourceType")),
	}
	if id, err := strconv.ParseInt(values.Get("referenceId"), 10, 64); err == nil {
		filters.ReferenceID = id
	}
	if date, err := time.Parse("2006-01-02", values.Get("fromDate")); err == nil {
		filters.FromDate = date
	}
	if date, err := time.Parse("2006-01-02", values.Get("toDate")); err == nil {
		filters.ToDate = date
	}
	page := shared.PageRequest{Number: 1, Size: shared.DefaultPageSize}
	if n, err := strconv.Atoi(values.Get("page")); err == nil {
		page.Number = n
	}
	if n, err := strconv.Atoi(values.Get("pageSize")); err == nil {
		page.Size = n
	}

	result, err := h.service.List(r.Context(), filters, page)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidDateRange) {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Date Range", err.Error())
			return
		}
		h.logger.Error("list transactions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive integer")
		return
	}
	transaction, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, transaction)
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	var input TransactionInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	transaction, err := h.service.Record(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, transaction)
}

func (h *Handler) void(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive integer")
		return
	}
	if err := h.service.Void(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
