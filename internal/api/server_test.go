package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/evanesaias-afk/taxbox/internal/domain"
	"github.com/evanesaias-afk/taxbox/internal/infra/jsonstore"
	"github.com/evanesaias-afk/taxbox/internal/ledger"
)

type nopRoles struct{}

func (nopRoles) GrantRole(ctx context.Context, userID, roleID string) error  { return nil }
func (nopRoles) RevokeRole(ctx context.Context, userID, roleID string) error { return nil }

type nopNotifier struct{}

func (nopNotifier) NotifyTaxDue(ctx context.Context, sellerID string, owed int64) error { return nil }

func newTestServer(t *testing.T) (*Server, *ledger.Service) {
	t.Helper()
	store, err := jsonstore.New(filepath.Join(t.TempDir(), "ledger.json"))
	if err != nil {
		t.Fatalf("jsonstore.New: %v", err)
	}
	svc := ledger.NewService(store, nopRoles{}, nopNotifier{}, ledger.Config{
		TaxRate: decimal.RequireFromString("0.25"),
		Tiers:   []domain.TierRule{{MinSpend: 100, RoleID: "classic", Name: "classic"}},
	}, nil)
	return NewServer(svc), svc
}

func doJSON(t *testing.T, h http.Handler, method, path string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding %s %s response: %v", method, path, err)
	}
	return rec.Code, body
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	code, body := doJSON(t, srv.Handler(), http.MethodGet, "/health")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
}

func TestAccountUnknownUserIsZero(t *testing.T) {
	srv, _ := newTestServer(t)
	code, body := doJSON(t, srv.Handler(), http.MethodGet, "/api/accounts/nobody")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["total_spent"].(float64) != 0 || body["tax_owed"].(float64) != 0 {
		t.Errorf("unknown account not zero: %v", body)
	}
}

func TestAccountAfterTransaction(t *testing.T) {
	srv, svc := newTestServer(t)
	if _, _, err := svc.RecordTransaction(context.Background(), "cust", "sell", 200); err != nil {
		t.Fatalf("RecordTransaction: %v", err)
	}

	code, body := doJSON(t, srv.Handler(), http.MethodGet, "/api/accounts/cust")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if got := body["total_spent"].(float64); got != 200 {
		t.Errorf("total_spent = %v, want 200", got)
	}
	tiers := body["tiers"].([]interface{})
	if len(tiers) != 1 || tiers[0] != "classic" {
		t.Errorf("tiers = %v, want [classic]", tiers)
	}

	code, body = doJSON(t, srv.Handler(), http.MethodGet, "/api/accounts/sell")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if got := body["tax_owed"].(float64); got != 50 {
		t.Errorf("tax_owed = %v, want 50", got)
	}
	if got := body["total_earned"].(float64); got != 150 {
		t.Errorf("total_earned = %v, want 150", got)
	}
}

func TestOutstanding(t *testing.T) {
	srv, svc := newTestServer(t)
	for _, seller := range []string{"zeta", "alpha"} {
		if _, _, err := svc.RecordTransaction(context.Background(), "cust", seller, 100); err != nil {
			t.Fatalf("RecordTransaction: %v", err)
		}
	}

	code, body := doJSON(t, srv.Handler(), http.MethodGet, "/api/outstanding")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if got := body["total"].(float64); got != 50 {
		t.Errorf("total = %v, want 50", got)
	}
	sellers := body["sellers"].([]interface{})
	if len(sellers) != 2 {
		t.Fatalf("sellers = %d entries, want 2", len(sellers))
	}
	first := sellers[0].(map[string]interface{})
	if first["seller_id"] != "alpha" {
		t.Errorf("first seller = %v, want alpha (sorted)", first["seller_id"])
	}
}

func TestSettle(t *testing.T) {
	srv, svc := newTestServer(t)
	if _, _, err := svc.RecordTransaction(context.Background(), "cust", "sell", 100); err != nil {
		t.Fatalf("RecordTransaction: %v", err)
	}

	code, body := doJSON(t, srv.Handler(), http.MethodPost, "/api/settle/sell")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["settled"] != true {
		t.Errorf("settled = %v, want true", body["settled"])
	}

	// Second settle has nothing to clear.
	code, _ = doJSON(t, srv.Handler(), http.MethodPost, "/api/settle/sell")
	if code != http.StatusConflict {
		t.Errorf("repeat settle status = %d, want 409", code)
	}
}
