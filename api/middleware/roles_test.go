package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireVoidRightsBlocksCashier(t *testing.T) {
	t.Parallel()

	handler := RequireVoidRights(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run for a cashier")
	}))

	req := httptest.NewRequest(http.MethodPost, "/orders/x/void", nil)
	req = req.WithContext(WithRole(req.Context(), "cashier"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRequireVoidRightsAllowsManager(t *testing.T) {
	t.Parallel()

	var called bool
	handler := RequireVoidRights(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/orders/x/void", nil)
	req = req.WithContext(WithRole(req.Context(), "manager"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called || rec.Code != http.StatusNoContent {
		t.Fatalf("expected manager to pass through, status = %d", rec.Code)
	}
}
