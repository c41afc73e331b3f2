package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/eggledger/pkg/config"
	"github.com/ghuser/eggledger/pkg/logger"
	"github.com/ghuser/eggledger/services/ledger/application/handlers"
	appsvcs "github.com/ghuser/eggledger/services/ledger/application/services"
	ledgerdomain "github.com/ghuser/eggledger/services/ledger/domain"
	"github.com/ghuser/eggledger/services/ledger/domain/models"
	"github.com/ghuser/eggledger/services/ledger/domain/repositories"
	domainsvcs "github.com/ghuser/eggledger/services/ledger/domain/services"
)

// memoryRepo is an in-memory LedgerRepository for handler tests.
type memoryRepo struct {
	batches map[uuid.UUID]*models.Batch
	sales   map[uuid.UUID]*models.Sale
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		batches: make(map[uuid.UUID]*models.Batch),
		sales:   make(map[uuid.UUID]*models.Sale),
	}
}

func (m *memoryRepo) SaveBatch(_ context.Context, batch *models.Batch) error {
	for _, b := range m.batches {
		if b.Name == batch.Name {
			return ledgerdomain.ErrBatchExists
		}
	}
	m.batches[batch.ID] = batch
	return nil
}

func (m *memoryRepo) GetBatch(_ context.Context, id uuid.UUID) (*models.Batch, error) {
	b, ok := m.batches[id]
	if !ok {
		return nil, ledgerdomain.ErrBatchNotFound
	}
	return b, nil
}

func (m *memoryRepo) ListBatches(_ context.Context) ([]*models.Batch, error) {
	out := make([]*models.Batch, 0, len(m.batches))
	for _, b := range m.batches {
		out = append(out, b)
	}
	return out, nil
}

func (m *memoryRepo) DeleteBatch(_ context.Context, id uuid.UUID) error {
	if _, ok := m.batches[id]; !ok {
		return ledgerdomain.ErrBatchNotFound
	}
	for _, s := range m.sales {
		if s.BatchID == id {
			return ledgerdomain.ErrBatchInUse
		}
	}
	delete(m.batches, id)
	return nil
}

func (m *memoryRepo) RecordSale(_ context.Context, batchID uuid.UUID, quantitySold int, salePrice decimal.Decimal) (*models.Sale, error) {
	b, ok := m.batches[batchID]
	if !ok {
		return nil, ledgerdomain.ErrBatchNotFound
	}
	if err := domainsvcs.CanDeduct(b, quantitySold); err != nil {
		return nil, err
	}
	sale := models.NewSale(b, quantitySold, salePrice)
	b.Quantity -= quantitySold
	m.sales[sale.ID] = sale
	return sale, nil
}

func (m *memoryRepo) ReverseSale(_ context.Context, saleID uuid.UUID) (*models.Sale, error) {
	s, ok := m.sales[saleID]
	if !ok {
		return nil, ledgerdomain.ErrSaleNotFound
	}
	delete(m.sales, saleID)
	if b, ok := m.batches[s.BatchID]; ok {
		b.Quantity += s.QuantitySold
	}
	return s, nil
}

func (m *memoryRepo) ListSales(_ context.Context) ([]*models.Sale, error) {
	out := make([]*models.Sale, 0, len(m.sales))
	for _, s := range m.sales {
		out = append(out, s)
	}
	return out, nil
}

func (m *memoryRepo) UpsertBatch(_ context.Context, batch *models.Batch) (uuid.UUID, error) {
	for id, b := range m.batches {
		if b.Name == batch.Name {
			batch.ID = id
			m.batches[id] = batch
			return id, nil
		}
	}
	m.batches[batch.ID] = batch
	return batch.ID, nil
}

func (m *memoryRepo) UpsertSale(_ context.Context, sale *models.Sale) error {
	m.sales[sale.ID] = sale
	return nil
}

func (m *memoryRepo) AuditConservation(_ context.Context) ([]repositories.ConservationDrift, error) {
	return nil, nil
}

// newTestRouter mounts the ledger handlers the way LedgerRoutes does, backed
// by an in-memory repository and no Redis.
func newTestRouter(repo repositories.LedgerRepository) chi.Router {
	log := logger.New(&config.Config{LogLevel: "error"})
	svcs := &appsvcs.Services{Ledger: appsvcs.NewLedgerService(repo, nil, log)}

	r := chi.NewRouter()
	r.Route("/batches", func(r chi.Router) {
		r.Get("/", handlers.NewGetBatchesHandler(svcs).Execute)
		r.Post("/", handlers.NewPostBatchHandler(svcs).Execute)
		r.Get("/{id}", handlers.NewGetBatchHandler(svcs).Execute)
		r.Delete("/{id}", handlers.NewDeleteBatchHandler(svcs).Execute)
	})
	r.Route("/sales", func(r chi.Router) {
		r.Get("/", handlers.NewGetSalesHandler(svcs).Execute)
		r.Post("/", handlers.NewPostSaleHandler(svcs).Execute)
		r.Delete("/{id}", handlers.NewDeleteSaleHandler(svcs).Execute)
	})
	r.Post("/sync", handlers.NewPostSyncHandler(svcs).Execute)
	return r
}

func doJSON(t *testing.T, router chi.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestPostBatch(t *testing.T) {
	router := newTestRouter(newMemoryRepo())

	w := doJSON(t, router, http.MethodPost, "/batches",
		`{"name":"May layers","trays":10,"buying_price":"320.50"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID == uuid.Nil {
		t.Error("expected non-nil batch ID in response")
	}
}

func TestPostBatch_RejectsNonPositiveTrays(t *testing.T) {
	router := newTestRouter(newMemoryRepo())

	for _, body := range []string{
		`{"name":"May layers","trays":0,"buying_price":"320.50"}`,
		`{"name":"May layers","trays":-4,"buying_price":"320.50"}`,
	} {
		w := doJSON(t, router, http.MethodPost, "/batches", body)
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("body %s: expected 422, got %d", body, w.Code)
		}
	}
}

func TestPostBatch_DuplicateName(t *testing.T) {
	router := newTestRouter(newMemoryRepo())

	body := `{"name":"May layers","trays":10,"buying_price":"320.50"}`
	if w := doJSON(t, router, http.MethodPost, "/batches", body); w.Code != http.StatusCreated {
		t.Fatalf("first create: expected 201, got %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodPost, "/batches", body); w.Code != http.StatusConflict {
		t.Fatalf("duplicate create: expected 409, got %d", w.Code)
	}
}

func TestGetBatch(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(repo)

	w := doJSON(t, router, http.MethodPost, "/batches",
		`{"name":"May layers","trays":10,"buying_price":"320.50"}`)
	var created struct {
		ID uuid.UUID `json:"id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	w = doJSON(t, router, http.MethodGet, "/batches/"+created.ID.String(), "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var got struct {
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != "May layers" || got.Quantity != 300 {
		t.Errorf("unexpected batch: %+v", got)
	}
}

func TestGetBatch_InvalidID(t *testing.T) {
	router := newTestRouter(newMemoryRepo())

	w := doJSON(t, router, http.MethodGet, "/batches/not-a-uuid", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetBatch_NotFound(t *testing.T) {
	router := newTestRouter(newMemoryRepo())

	w := doJSON(t, router, http.MethodGet, "/batches/"+uuid.NewString(), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestPostSale_DeductsStock(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(repo)

	w := doJSON(t, router, http.MethodPost, "/batches",
		`{"name":"May layers","trays":10,"buying_price":"320.50"}`)
	var created struct {
		ID uuid.UUID `json:"id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	w = doJSON(t, router, http.MethodPost, "/sales",
		`{"batch_id":"`+created.ID.String()+`","quantity_sold":50,"sale_price":"15.00"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	batch, _ := repo.GetBatch(context.Background(), created.ID)
	if batch.Quantity != 250 {
		t.Errorf("expected quantity 250 after sale, got %d", batch.Quantity)
	}
}

func TestPostSale_InsufficientStock(t *testing.T) {
	router := newTestRouter(newMemoryRepo())

	w := doJSON(t, router, http.MethodPost, "/batches",
		`{"name":"May layers","trays":1,"buying_price":"320.50"}`)
	var created struct {
		ID uuid.UUID `json:"id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	w = doJSON(t, router, http.MethodPost, "/sales",
		`{"batch_id":"`+created.ID.String()+`","quantity_sold":31,"sale_price":"15.00"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversell, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPostSale_UnknownBatch(t *testing.T) {
	router := newTestRouter(newMemoryRepo())

	w := doJSON(t, router, http.MethodPost, "/sales",
		`{"batch_id":"`+uuid.NewString()+`","quantity_sold":10,"sale_price":"15.00"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestDeleteSale_ReversesOnce(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(repo)

	w := doJSON(t, router, http.MethodPost, "/batches",
		`{"name":"May layers","trays":10,"buying_price":"320.50"}`)
	var created struct {
		ID uuid.UUID `json:"id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	w = doJSON(t, router, http.MethodPost, "/sales",
		`{"batch_id":"`+created.ID.String()+`","quantity_sold":50,"sale_price":"15.00"}`)
	var sale struct {
		ID uuid.UUID `json:"id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &sale)

	if w := doJSON(t, router, http.MethodDelete, "/sales/"+sale.ID.String(), ""); w.Code != http.StatusOK {
		t.Fatalf("reversal: expected 200, got %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodDelete, "/sales/"+sale.ID.String(), ""); w.Code != http.StatusNotFound {
		t.Fatalf("second reversal: expected 404, got %d", w.Code)
	}

	batch, _ := repo.GetBatch(context.Background(), created.ID)
	if batch.Quantity != 300 {
		t.Errorf("expected quantity restored to 300, got %d", batch.Quantity)
	}
}

func TestDeleteBatch_InUse(t *testing.T) {
	router := newTestRouter(newMemoryRepo())

	w := doJSON(t, router, http.MethodPost, "/batches",
		`{"name":"May layers","trays":10,"buying_price":"320.50"}`)
	var created struct {
		ID uuid.UUID `json:"id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	doJSON(t, router, http.MethodPost, "/sales",
		`{"batch_id":"`+created.ID.String()+`","quantity_sold":50,"sale_price":"15.00"}`)

	if w := doJSON(t, router, http.MethodDelete, "/batches/"+created.ID.String(), ""); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for batch with live sales, got %d", w.Code)
	}
}

func TestPostSync_ReportsPerItem(t *testing.T) {
	router := newTestRouter(newMemoryRepo())

	body := `{
		"batches": [
			{"name": "May layers", "trays": 10, "quantity": 250, "buying_price": "320.50"}
		],
		"sales": [
			{"id": "` + uuid.NewString() + `", "batch_id": "` + uuid.NewString() + `", "batch_name": "May layers", "quantity_sold": 50, "sale_price": "15.00"},
			{"id": "` + uuid.NewString() + `", "quantity_sold": -1, "sale_price": "15.00"}
		]
	}`

	w := doJSON(t, router, http.MethodPost, "/sync", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Report  struct {
			BatchesApplied int `json:"batches_applied"`
			SalesApplied   int `json:"sales_applied"`
			Failed         []struct {
				Key   string `json:"key"`
				Error string `json:"error"`
			} `json:"failed"`
		} `json:"report"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Report.BatchesApplied != 1 {
		t.Errorf("expected 1 batch applied, got %d", resp.Report.BatchesApplied)
	}
	if resp.Report.SalesApplied != 1 {
		t.Errorf("expected 1 sale applied, got %d", resp.Report.SalesApplied)
	}
	if len(resp.Report.Failed) != 1 {
		t.Errorf("expected 1 failed item, got %d", len(resp.Report.Failed))
	}
}

func TestGetSales_UsesNameSnapshot(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(repo)

	w := doJSON(t, router, http.MethodPost, "/batches",
		`{"name":"May layers","trays":10,"buying_price":"320.50"}`)
	var created struct {
		ID uuid.UUID `json:"id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	doJSON(t, router, http.MethodPost, "/sales",
		`{"batch_id":"`+created.ID.String()+`","quantity_sold":50,"sale_price":"15.00"}`)

	// Rename the batch after the sale; the listing keeps the sale-time name.
	batch, _ := repo.GetBatch(context.Background(), created.ID)
	batch.Name = models.BatchName("renamed")

	w = doJSON(t, router, http.MethodGet, "/sales", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var sales []struct {
		BatchName string `json:"batch_name"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &sales); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sales) != 1 || sales[0].BatchName != "May layers" {
		t.Errorf("expected snapshot name %q, got %+v", "May layers", sales)
	}
}
