package aging

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/pitstop-erp/pitstop-erp/internal/shared"
)

func newTestHandler(repo Repository) http.Handler {
	handler := NewHandler(slog.New(slog.DiscardHandler), newTestService(repo, nil))
	router := chi.NewRouter()
	handler.MountRoutes(router)
	return router
}

func getStatus(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
	return recorder
}

func TestHandlerRejectsMalformedQuery(t *testing.T) {
	router := newTestHandler(&memoryAgingRepo{})

	require.Equal(t, http.StatusBadRequest, getStatus(t, router, "/payables?counterpartyId=abc").Code)
	require.Equal(t, http.StatusBadRequest, getStatus(t, router, "/payables?fromDate=01-31-2024").Code)
	require.Equal(t, http.StatusBadRequest, getStatus(t, router, "/payables?toDate=soon").Code)
	require.Equal(t, http.StatusBadRequest, getStatus(t, router, "/payables?minOverdueDays=ten").Code)
	require.Equal(t, http.StatusBadRequest, getStatus(t, router, "/payables?asOf=whenever").Code)

	// Paid obligations never appear, so Paid is not a valid filter value.
	require.Equal(t, http.StatusBadRequest, getStatus(t, router, "/payables?paymentStatus=Paid").Code)
	require.Equal(t, http.StatusBadRequest, getStatus(t, router, "/receivables/summary?paymentStatus=Settled").Code)
}

func TestHandlerRejectsInvertedDateRange(t *testing.T) {
	router := newTestHandler(&memoryAgingRepo{})
	recorder := getStatus(t, router, "/payables?fromDate=2024-03-01&toDate=2024-01-01")
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHandlerMapsSourceFailureTo502(t *testing.T) {
	router := newTestHandler(&memoryAgingRepo{failSources: true})
	require.Equal(t, http.StatusBadGateway, getStatus(t, router, "/receivables").Code)
	require.Equal(t, http.StatusBadGateway, getStatus(t, router, "/receivables/summary").Code)
}

func TestHandlerAsOfOverride(t *testing.T) {
	jan1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	router := newTestHandler(&memoryAgingRepo{
		purchaseOrders: []PurchaseOrderRecord{{
			ID: 1, SupplierID: 5, Status: "Received", TotalAmount: 100,
			OrderDate: jan1, ReceivedDate: datePtr(jan1), PaymentTerms: "Net 30",
		}},
	})

	// Due Jan 31; as of Feb 15 the order is 15 days overdue.
	recorder := getStatus(t, router, "/payables?asOf=2024-02-15")
	require.Equal(t, http.StatusOK, recorder.Code)

	var result shared.PagedResponse[ReconciledBalance]
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	require.Len(t, result.Data, 1)
	require.Equal(t, 15, result.Data[0].OverdueDays)

	// Before the due date nothing is overdue.
	recorder = getStatus(t, router, "/payables?asOf=2024-01-10")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	require.Zero(t, result.Data[0].OverdueDays)
}
