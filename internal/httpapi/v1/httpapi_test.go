package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tinoosan/bookkeep/internal/engine"
	"github.com/tinoosan/bookkeep/internal/storage/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng, err := engine.Boot("", "", engine.Options{Store: memory.New(), Logger: logger})
	if err != nil {
		t.Fatalf("boot: %v", err)
	}
	t.Cleanup(func() { eng.Close() })
	return New(eng, logger)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func createAccount(t *testing.T, s *Server, name, typ string) accountResponse {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/v1/accounts", accountRequest{
		Name: name, Type: typ, Currency: "USD",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create %s: status %d: %s", name, rec.Code, rec.Body)
	}
	return decode[accountResponse](t, rec)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAccountLifecycle(t *testing.T) {
	s := newTestServer(t)

	created := createAccount(t, s, "Checking", "checking")
	if created.ID == "" || created.Type != "checking" {
		t.Fatalf("created = %+v", created)
	}

	rec := doJSON(t, s, http.MethodGet, "/v1/accounts/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status %d", rec.Code)
	}
	got := decode[accountResponse](t, rec)
	if got.Name != "Checking" {
		t.Errorf("name = %q", got.Name)
	}

	rec = doJSON(t, s, http.MethodGet, "/v1/accounts?type=checking", nil)
	list := decode[[]accountResponse](t, rec)
	if len(list) != 1 {
		t.Errorf("list = %d, want 1", len(list))
	}

	rec = doJSON(t, s, http.MethodDelete, "/v1/accounts/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, "/v1/accounts/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: status %d, want 404", rec.Code)
	}
}

func TestPostTransactionAndBalance(t *testing.T) {
	s := newTestServer(t)
	checking := createAccount(t, s, "Checking", "checking")

	for i := 0; i < 3; i++ {
		rec := doJSON(t, s, http.MethodPost, "/v1/transactions", transactionRequest{
			Date: "2024-06-01", Currency: "USD", Payee: "Payee",
			Entries: []entryPayload{
				{AccountID: checking.ID, Amount: "10.00", Currency: "USD"},
			},
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("post %d: status %d: %s", i, rec.Code, rec.Body)
		}
	}
	rec := doJSON(t, s, http.MethodGet,
		"/v1/accounts/"+checking.ID+"/balance?start=2024-01-01&end=2024-12-31&currency=USD", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("balance: status %d: %s", rec.Code, rec.Body)
	}
	balance := decode[balanceResponse](t, rec)
	if balance.Balance != "30.00" {
		t.Errorf("balance = %q, want 30.00", balance.Balance)
	}
}

func TestUnbalancedTransactionRejected(t *testing.T) {
	s := newTestServer(t)
	checking := createAccount(t, s, "Checking", "checking")
	groceries := createAccount(t, s, "Groceries", "expense")

	rec := doJSON(t, s, http.MethodPost, "/v1/transactions", transactionRequest{
		Date: "2024-06-01", Currency: "USD",
		Entries: []entryPayload{
			{AccountID: checking.ID, Amount: "-10.00", Currency: "USD"},
			{AccountID: groceries.ID, Amount: "9.99", Currency: "USD"},
		},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", rec.Code, rec.Body)
	}
	resp := decode[errorResponse](t, rec)
	if resp.Code != "unbalanced" {
		t.Errorf("code = %q, want unbalanced", resp.Code)
	}
}

func TestMalformedAmountRejected(t *testing.T) {
	s := newTestServer(t)
	checking := createAccount(t, s, "Checking", "checking")

	rec := doJSON(t, s, http.MethodPost, "/v1/transactions", transactionRequest{
		Date: "2024-06-01", Currency: "USD",
		Entries: []entryPayload{
			{AccountID: checking.ID, Amount: "ten dollars", Currency: "USD"},
		},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body)
	}
}

func TestCurrencyConflict(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/v1/currencies", currencyRequest{Symbol: "USD", Scale: 2})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", rec.Code, rec.Body)
	}
}

func TestExchangeRateEndpoints(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/v1/currencies", currencyRequest{Symbol: "EUR", Scale: 2})
	if rec.Code != http.StatusCreated {
		t.Fatalf("currency: status %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodPost, "/v1/rates", rateRequest{
		From: "EUR", To: "USD", Rate: "1.1", Date: "2024-01-01",
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("rate: status %d: %s", rec.Code, rec.Body)
	}
	rec = doJSON(t, s, http.MethodGet, "/v1/rates/EUR/USD?date=2024-06-01", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get rate: status %d: %s", rec.Code, rec.Body)
	}
	got := decode[rateResponse](t, rec)
	if got.Rate != "1.1" {
		t.Errorf("rate = %q, want 1.1", got.Rate)
	}
	rec = doJSON(t, s, http.MethodGet, "/v1/rates/EUR/USD?date=2023-06-01", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("pre-history rate: status %d, want 422", rec.Code)
	}
}

func TestBudgetEndpoints(t *testing.T) {
	s := newTestServer(t)
	groceries := createAccount(t, s, "Groceries", "expense")

	goals := make([]string, 12)
	for i := range goals {
		goals[i] = "100.00"
	}
	rec := doJSON(t, s, http.MethodPost, "/v1/budgets", budgetRequest{
		Name: "Household", Period: "monthly",
		Goals: map[string]budgetGoals{groceries.ID: {Goals: goals}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("post: status %d: %s", rec.Code, rec.Body)
	}
	created := decode[budgetResponse](t, rec)
	rec = doJSON(t, s, http.MethodGet, "/v1/budgets/"+created.ID, nil)
	got := decode[budgetResponse](t, rec)
	if len(got.Goals[groceries.ID].Goals) != 12 {
		t.Errorf("goals = %d, want 12", len(got.Goals[groceries.ID].Goals))
	}
}

func TestReminderEndpoints(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/v1/reminders", reminderRequest{
		Type: "weekly", Description: "rent", StartDate: "2024-06-04", Enabled: true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("post: status %d: %s", rec.Code, rec.Body)
	}
	rec = doJSON(t, s, http.MethodGet, "/v1/reminders/pending?ref=2024-06-01", nil)
	pending := decode[[]reminderResponse](t, rec)
	if len(pending) != 1 || pending[0].Description != "rent" {
		t.Errorf("pending = %+v", pending)
	}
}

func TestTrashEndpoints(t *testing.T) {
	s := newTestServer(t)
	doomed := createAccount(t, s, "Doomed", "bank")

	rec := doJSON(t, s, http.MethodDelete, "/v1/accounts/"+doomed.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, "/v1/trash", nil)
	entries := decode[[]trashResponse](t, rec)
	if len(entries) != 1 || entries[0].ObjectID != doomed.ID {
		t.Fatalf("trash = %+v", entries)
	}
	rec = doJSON(t, s, http.MethodDelete, "/v1/trash/"+entries[0].ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("purge: status %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, "/v1/trash", nil)
	if got := decode[[]trashResponse](t, rec); len(got) != 0 {
		t.Errorf("trash after purge = %+v", got)
	}
}

func TestPreferenceEndpoints(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPut, "/v1/preferences/theme", preferenceBody{Value: "dark"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("put: status %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, "/v1/preferences/theme", nil)
	if got := decode[preferenceBody](t, rec); got.Value != "dark" {
		t.Errorf("value = %q, want dark", got.Value)
	}
}

func TestAttributeEndpoints(t *testing.T) {
	s := newTestServer(t)
	a := createAccount(t, s, "Checking", "checking")

	rec := doJSON(t, s, http.MethodPut,
		fmt.Sprintf("/v1/accounts/%s/attributes/bank", a.ID), preferenceBody{Value: "First National"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("put: status %d: %s", rec.Code, rec.Body)
	}
	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/v1/accounts/%s/attributes/bank", a.ID), nil)
	if got := decode[preferenceBody](t, rec); got.Value != "First National" {
		t.Errorf("value = %q", got.Value)
	}
}
