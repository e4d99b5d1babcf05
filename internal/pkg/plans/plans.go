package plans

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/launchkit/launchkit/internal/pkg/env"
)

// Feature is a single line item on a plan's feature list. Limit accepts both
// string and numeric JSON values because catalogs written by hand use either.
type Feature struct {
	Name     string `json:"name"`
	Included bool   `json:"included"`
	Limit    string `json:"limit,omitempty"`
}

func (f *Feature) UnmarshalJSON(data []byte) error {
	type rawFeature struct {
		Name     string          `json:"name"`
		Included bool            `json:"included"`
		Limit    json.RawMessage `json:"limit"`
	}
	var raw rawFeature
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.Name = raw.Name
	f.Included = raw.Included
	f.Limit = ""
	if len(raw.Limit) == 0 || string(raw.Limit) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.Limit, &s); err == nil {
		f.Limit = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw.Limit, &n); err != nil {
		return fmt.Errorf("feature limit must be string or number: %w", err)
	}
	f.Limit = n.String()
	return nil
}

// Plan describes one purchasable subscription tier. Price is in minor
// currency units. ProductID references the payment provider's product.
type Plan struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Currency    string    `json:"currency"`
	Interval    string    `json:"interval"`
	ProductID   string    `json:"productId"`
	Features    []Feature `json:"features"`
	Popular     bool      `json:"popular,omitempty"`
	ButtonText  string    `json:"buttonText,omitempty"`
}

// CheckoutProduct pairs a provider product id with its catalog slug for
// configuring checkout sessions.
type CheckoutProduct struct {
	ProductID string `json:"productId"`
	Slug      string `json:"slug"`
}

// Registry holds the parsed plan catalog. It is immutable after construction
// and safe for concurrent readers.
type Registry struct {
	plans []Plan
}

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// Default returns the process-wide registry, parsing the environment on
// first access. Parsing is deterministic so concurrent cold starts converge.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistryFromEnv()
	})
	return defaultRegistry
}

// NewRegistryFromEnv builds a registry from SUBSCRIPTION_PLANS (a JSON array,
// or a single plan object) with a legacy STARTER_TIER/STARTER_SLUG fallback.
func NewRegistryFromEnv() *Registry {
	return NewRegistry(parsePlansFromEnv())
}

// NewRegistry builds a registry from an explicit catalog, mainly for tests
// and for callers that prefer injecting configuration over the package
// default.
func NewRegistry(plans []Plan) *Registry {
	return &Registry{plans: plans}
}

func parsePlansFromEnv() []Plan {
	if raw := strings.TrimSpace(env.GetEnv("SUBSCRIPTION_PLANS", "")); raw != "" {
		var parsed []Plan
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
			return parsed
		}
		var single Plan
		if err := json.Unmarshal([]byte(raw), &single); err == nil {
			return []Plan{single}
		}
		// fall through to the legacy variables on malformed JSON
	}

	legacyTier := strings.TrimSpace(env.GetEnv("STARTER_TIER", ""))
	legacySlug := strings.TrimSpace(env.GetEnv("STARTER_SLUG", ""))
	if legacyTier == "" || legacySlug == "" {
		return nil
	}
	return []Plan{{
		ID:          "starter",
		Name:        "Starter",
		Slug:        legacySlug,
		Description: "Perfect for getting started",
		Price:       1000,
		Currency:    "USD",
		Interval:    "month",
		ProductID:   legacyTier,
		Features: []Feature{
			{Name: "5 Projects", Included: true},
			{Name: "10GB Storage", Included: true},
			{Name: "1 Team Member", Included: true, Limit: "1"},
			{Name: "Email Support", Included: true},
		},
		ButtonText: "Get Started",
	}}
}

// All returns the catalog in configured order.
func (r *Registry) All() []Plan {
	return r.plans
}

// ByID returns the first plan with the given id.
func (r *Registry) ByID(planID string) (Plan, bool) {
	for _, p := range r.plans {
		if p.ID == planID {
			return p, true
		}
	}
	return Plan{}, false
}

// ByProductID returns the first plan referencing the given provider product.
func (r *Registry) ByProductID(productID string) (Plan, bool) {
	for _, p := range r.plans {
		if p.ProductID == productID {
			return p, true
		}
	}
	return Plan{}, false
}

// BySlug returns the first plan with the given slug.
func (r *Registry) BySlug(slug string) (Plan, bool) {
	for _, p := range r.plans {
		if p.Slug == slug {
			return p, true
		}
	}
	return Plan{}, false
}

// ProductIDs lists every configured provider product id.
func (r *Registry) ProductIDs() []string {
	ids := make([]string, 0, len(r.plans))
	for _, p := range r.plans {
		ids = append(ids, p.ProductID)
	}
	return ids
}

// ProductsForCheckout lists product/slug pairs for checkout configuration.
func (r *Registry) ProductsForCheckout() []CheckoutProduct {
	products := make([]CheckoutProduct, 0, len(r.plans))
	for _, p := range r.plans {
		products = append(products, CheckoutProduct{ProductID: p.ProductID, Slug: p.Slug})
	}
	return products
}

// Validate collects configuration errors instead of failing on the first
// one. A non-empty result is a fatal startup condition for callers that need
// a usable catalog.
func (r *Registry) Validate() []string {
	var errs []string
	if len(r.plans) == 0 {
		errs = append(errs, "no subscription plans configured; set SUBSCRIPTION_PLANS or STARTER_TIER/STARTER_SLUG")
		return errs
	}

	productIDs := make(map[string]struct{}, len(r.plans))
	slugs := make(map[string]struct{}, len(r.plans))
	planIDs := make(map[string]struct{}, len(r.plans))

	for i, p := range r.plans {
		if p.ID == "" {
			errs = append(errs, fmt.Sprintf("plan at index %d missing id", i))
		}
		if p.Name == "" {
			errs = append(errs, fmt.Sprintf("plan at index %d missing name", i))
		}
		if p.Slug == "" {
			errs = append(errs, fmt.Sprintf("plan at index %d missing slug", i))
		}
		if p.ProductID == "" {
			errs = append(errs, fmt.Sprintf("plan at index %d missing productId", i))
		}
		if p.Price <= 0 {
			errs = append(errs, fmt.Sprintf("plan at index %d has invalid price", i))
		}

		if p.ProductID != "" {
			if _, dup := productIDs[p.ProductID]; dup {
				errs = append(errs, "duplicate productId: "+p.ProductID)
			}
			productIDs[p.ProductID] = struct{}{}
		}
		if p.Slug != "" {
			if _, dup := slugs[p.Slug]; dup {
				errs = append(errs, "duplicate slug: "+p.Slug)
			}
			slugs[p.Slug] = struct{}{}
		}
		if p.ID != "" {
			if _, dup := planIDs[p.ID]; dup {
				errs = append(errs, "duplicate plan id: "+p.ID)
			}
			planIDs[p.ID] = struct{}{}
		}
	}

	return errs
}
