package plans

import (
	"encoding/json"
	"strings"
	"testing"
)

func validCatalog() []Plan {
	return []Plan{
		{ID: "starter", Name: "Starter", Slug: "starter", Price: 1000, Currency: "USD", Interval: "month", ProductID: "prod_starter"},
		{ID: "pro", Name: "Pro", Slug: "pro", Price: 2500, Currency: "USD", Interval: "month", ProductID: "prod_pro"},
	}
}

func TestValidate_ValidCatalog(t *testing.T) {
	r := NewRegistry(validCatalog())
	if errs := r.Validate(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestValidate_EmptyCatalog(t *testing.T) {
	r := NewRegistry(nil)
	errs := r.Validate()
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error for empty catalog, got %v", errs)
	}
	if !strings.Contains(errs[0], "no subscription plans configured") {
		t.Fatalf("unexpected error message: %s", errs[0])
	}
}

func TestValidate_NamesEveryViolation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func([]Plan) []Plan
		wantSub string
	}{
		{
			name:    "missing id",
			mutate:  func(p []Plan) []Plan { p[0].ID = ""; return p },
			wantSub: "missing id",
		},
		{
			name:    "missing name",
			mutate:  func(p []Plan) []Plan { p[0].Name = ""; return p },
			wantSub: "missing name",
		},
		{
			name:    "missing slug",
			mutate:  func(p []Plan) []Plan { p[1].Slug = ""; return p },
			wantSub: "missing slug",
		},
		{
			name:    "missing productId",
			mutate:  func(p []Plan) []Plan { p[1].ProductID = ""; return p },
			wantSub: "missing productId",
		},
		{
			name:    "zero price",
			mutate:  func(p []Plan) []Plan { p[0].Price = 0; return p },
			wantSub: "invalid price",
		},
		{
			name:    "negative price",
			mutate:  func(p []Plan) []Plan { p[1].Price = -100; return p },
			wantSub: "invalid price",
		},
		{
			name:    "duplicate productId",
			mutate:  func(p []Plan) []Plan { p[1].ProductID = p[0].ProductID; return p },
			wantSub: "duplicate productId: prod_starter",
		},
		{
			name:    "duplicate slug",
			mutate:  func(p []Plan) []Plan { p[1].Slug = p[0].Slug; return p },
			wantSub: "duplicate slug: starter",
		},
		{
			name:    "duplicate plan id",
			mutate:  func(p []Plan) []Plan { p[1].ID = p[0].ID; return p },
			wantSub: "duplicate plan id: starter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(tt.mutate(validCatalog()))
			errs := r.Validate()
			if len(errs) == 0 {
				t.Fatalf("expected validation errors")
			}
			found := false
			for _, e := range errs {
				if strings.Contains(e, tt.wantSub) {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("expected an error containing %q, got %v", tt.wantSub, errs)
			}
		})
	}
}

func TestLookups(t *testing.T) {
	r := NewRegistry(validCatalog())

	if p, ok := r.ByID("pro"); !ok || p.Name != "Pro" {
		t.Fatalf("ByID(pro) = %v, %v", p, ok)
	}
	if p, ok := r.ByProductID("prod_starter"); !ok || p.ID != "starter" {
		t.Fatalf("ByProductID(prod_starter) = %v, %v", p, ok)
	}
	if p, ok := r.BySlug("pro"); !ok || p.ProductID != "prod_pro" {
		t.Fatalf("BySlug(pro) = %v, %v", p, ok)
	}
	if _, ok := r.ByID("enterprise"); ok {
		t.Fatalf("expected miss for unknown plan id")
	}
	if _, ok := r.ByProductID("prod_nope"); ok {
		t.Fatalf("expected miss for unknown product id")
	}
	if _, ok := r.BySlug("nope"); ok {
		t.Fatalf("expected miss for unknown slug")
	}
}

func TestLookups_FirstMatchOnDuplicates(t *testing.T) {
	catalog := validCatalog()
	catalog = append(catalog, Plan{ID: "starter", Name: "Shadow", Slug: "shadow", Price: 1, Currency: "USD", ProductID: "prod_shadow"})
	r := NewRegistry(catalog)

	p, ok := r.ByID("starter")
	if !ok || p.Name != "Starter" {
		t.Fatalf("expected first match to win, got %v", p)
	}
}

func TestProductsForCheckout(t *testing.T) {
	r := NewRegistry(validCatalog())

	ids := r.ProductIDs()
	if len(ids) != 2 || ids[0] != "prod_starter" || ids[1] != "prod_pro" {
		t.Fatalf("unexpected product ids: %v", ids)
	}

	products := r.ProductsForCheckout()
	if len(products) != 2 {
		t.Fatalf("expected 2 checkout products, got %d", len(products))
	}
	if products[0].ProductID != "prod_starter" || products[0].Slug != "starter" {
		t.Fatalf("unexpected checkout product: %+v", products[0])
	}
}

func TestNewRegistryFromEnv_JSONArray(t *testing.T) {
	t.Setenv("SUBSCRIPTION_PLANS", `[{"id":"pro","name":"Pro","slug":"pro","price":2500,"currency":"USD","interval":"month","productId":"prod_pro","features":[{"name":"Seats","included":true,"limit":5}]}]`)

	r := NewRegistryFromEnv()
	if errs := r.Validate(); len(errs) != 0 {
		t.Fatalf("expected valid catalog, got %v", errs)
	}
	p, ok := r.ByID("pro")
	if !ok {
		t.Fatalf("expected pro plan")
	}
	if len(p.Features) != 1 || p.Features[0].Limit != "5" {
		t.Fatalf("expected numeric feature limit parsed as string, got %+v", p.Features)
	}
}

func TestNewRegistryFromEnv_SingleObject(t *testing.T) {
	t.Setenv("SUBSCRIPTION_PLANS", `{"id":"solo","name":"Solo","slug":"solo","price":500,"currency":"USD","interval":"month","productId":"prod_solo"}`)

	r := NewRegistryFromEnv()
	if len(r.All()) != 1 {
		t.Fatalf("expected single-object catalog to parse, got %d plans", len(r.All()))
	}
}

func TestNewRegistryFromEnv_LegacyFallback(t *testing.T) {
	t.Setenv("SUBSCRIPTION_PLANS", "")
	t.Setenv("STARTER_TIER", "prod_legacy")
	t.Setenv("STARTER_SLUG", "starter")

	r := NewRegistryFromEnv()
	p, ok := r.ByProductID("prod_legacy")
	if !ok {
		t.Fatalf("expected legacy starter plan")
	}
	if p.ID != "starter" || p.Price != 1000 || p.Interval != "month" {
		t.Fatalf("unexpected legacy plan: %+v", p)
	}
	if errs := r.Validate(); len(errs) != 0 {
		t.Fatalf("legacy plan should validate, got %v", errs)
	}
}

func TestNewRegistryFromEnv_Empty(t *testing.T) {
	t.Setenv("SUBSCRIPTION_PLANS", "")
	t.Setenv("STARTER_TIER", "")
	t.Setenv("STARTER_SLUG", "")

	r := NewRegistryFromEnv()
	if len(r.All()) != 0 {
		t.Fatalf("expected empty catalog")
	}
	if errs := r.Validate(); len(errs) == 0 {
		t.Fatalf("expected empty catalog to fail validation")
	}
}

func TestFeatureUnmarshal_StringLimit(t *testing.T) {
	var f Feature
	if err := json.Unmarshal([]byte(`{"name":"Storage","included":true,"limit":"10GB"}`), &f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Limit != "10GB" {
		t.Fatalf("expected string limit, got %q", f.Limit)
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		price    int64
		currency string
		want     string
	}{
		{1000, "USD", "$10"},
		{2500, "usd", "$25"},
		{1000, "EUR", "€10"},
		{99900, "GBP", "£999"},
		{1000, "", "$10"},
		{1000, "SEK", "SEK 10"},
	}

	for _, tt := range tests {
		if got := FormatPrice(tt.price, tt.currency); got != tt.want {
			t.Fatalf("FormatPrice(%d, %q) = %q, want %q", tt.price, tt.currency, got, tt.want)
		}
	}
}
