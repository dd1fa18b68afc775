package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarylab/library-backend/internal/api"
	"github.com/librarylab/library-backend/internal/auth"
	"github.com/librarylab/library-backend/internal/config"
	"github.com/librarylab/library-backend/internal/repository/repotest"
	"github.com/librarylab/library-backend/internal/services"
	"github.com/librarylab/library-backend/internal/worker"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := repotest.New()
	wp := worker.NewPool(1)
	t.Cleanup(wp.Stop)

	cfg := config.Config{RateRPS: 0} // no rate limit in tests
	tm := auth.NewTokenManager("test-secret", "library-backend", "library-clients", time.Hour)

	r := api.NewRouter(api.RouterDeps{
		Cfg:         cfg,
		TM:          tm,
		UserSvc:     services.NewUserService(store.Users(), tm),
		BookSvc:     services.NewBookService(store.Books(), store.AuditLogs(), wp),
		BorrowerSvc: services.NewBorrowerService(store.Borrowers(), store.AuditLogs(), wp),
		LoanSvc:     services.NewLoanService(store.Loans(), store.AuditLogs(), wp, 14*24*time.Hour, time.Now),
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var decoded map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func Test_FullLendingFlow(t *testing.T) {
	srv := newTestServer(t)

	// auth routes are open, everything else is guarded
	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/books", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]any{
		"username": "alice", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]any{
		"username": "alice", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]any{
		"username": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// catalog
	resp, book := doJSON(t, http.MethodPost, srv.URL+"/api/books", token, map[string]any{
		"title": "The Go Programming Language", "author": "Donovan & Kernighan",
		"isbn": "978-0134190440", "total_copies": 1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	bookID, _ := book["id"].(string)
	require.NotEmpty(t, bookID)
	assert.EqualValues(t, 1, book["available_copies"])

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/books", token, map[string]any{
		"title": "Another", "author": "Copy", "isbn": "978-0134190440", "total_copies": 1,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/books", token, map[string]any{
		"title": "x", "author": "", "isbn": "123", "total_copies": 0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/api/books/"+bookID, token, map[string]any{
		"total_copies": 0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "a book keeps at least one copy")

	resp, borrower := doJSON(t, http.MethodPost, srv.URL+"/api/borrowers", token, map[string]any{
		"name": "Alice Smith", "email": "alice@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	borrowerID, _ := borrower["id"].(string)
	require.NotEmpty(t, borrowerID)

	// lending
	resp, loan := doJSON(t, http.MethodPost, srv.URL+"/api/loans", token, map[string]any{
		"book_id": bookID, "borrower_id": borrowerID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	loanID, _ := loan["id"].(string)
	require.NotEmpty(t, loanID)
	assert.Equal(t, "The Go Programming Language", loan["book_title"])
	assert.Equal(t, "Alice Smith", loan["borrower_name"])

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/loans", token, map[string]any{
		"book_id": bookID, "borrower_id": borrowerID,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "no copies left")

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/books/"+bookID, token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "open loan blocks delete")

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/loans/overdue", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/returns", token, map[string]any{"loan_id": loanID})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/returns", token, map[string]any{"loan_id": loanID})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "second return")

	resp, book = doJSON(t, http.MethodGet, srv.URL+"/api/books/"+bookID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, book["available_copies"])

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/books/"+bookID, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func Test_HealthAndMetricsAreOpen(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}
