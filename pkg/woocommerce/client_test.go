package woocommerce

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	pkgerrors "github.com/angelmondragon/narkk-storefront/pkg/errors"
)

const productsJSON = `[{
	"id": 42,
	"name": "Sherthal",
	"slug": "sherthal",
	"description": "<p>Modular sofa</p>",
	"short_description": "Modular lounge sofa element",
	"price": "15200.50",
	"featured": true,
	"images": [{"src": "https://img/1.jpg"}, {"src": "https://img/2.jpg"}],
	"categories": [{"id": 2, "name": "Live", "slug": "live"}],
	"attributes": [{"name": "Wood", "options": ["Teak", "Oak"]}]
}]`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Credentials{APIURL: srv.URL + "/wp-json/wc/v3/", ConsumerKey: "ck_test", ConsumerSecret: "cs_test"}, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestListProductsMapsPayloadAndAuthenticates(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		_, _ = io.WriteString(w, productsJSON)
	})

	products, err := client.ListProducts(context.Background(), ProductQuery{Featured: true})
	if err != nil {
		t.Fatalf("list products: %v", err)
	}

	if gotPath != "/wp-json/wc/v3/products" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotQuery["consumer_key"][0] != "ck_test" || gotQuery["consumer_secret"][0] != "cs_test" {
		t.Fatalf("credentials missing from query: %v", gotQuery)
	}
	if gotQuery["featured"][0] != "true" {
		t.Fatalf("featured filter missing: %v", gotQuery)
	}

	if len(products) != 1 {
		t.Fatalf("expected one product, got %d", len(products))
	}
	p := products[0]
	if p.ID != 42 || p.ShortDescription != "Modular lounge sofa element" || !p.Featured {
		t.Fatalf("unexpected mapping %+v", p)
	}
	if p.Price.String() != "15200.5" {
		t.Fatalf("unexpected price %s", p.Price)
	}
	if len(p.Images) != 2 || p.Images[0] != "https://img/1.jpg" {
		t.Fatalf("unexpected images %v", p.Images)
	}
	if len(p.Categories) != 1 || p.Categories[0].Slug != "live" {
		t.Fatalf("unexpected categories %+v", p.Categories)
	}
	if got := p.Options["Wood"]; len(got) != 2 || got[1] != "Oak" {
		t.Fatalf("unexpected options %v", p.Options)
	}
}

func TestRelatedQueryShape(t *testing.T) {
	var rawQuery map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.Query()
		_, _ = io.WriteString(w, "[]")
	})

	_, err := client.ListProducts(context.Background(), ProductQuery{
		Category: JoinCategoryIDs([]Category{{ID: 2}, {ID: 5}}),
		Exclude:  []int64{42},
		PerPage:  3,
	})
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if rawQuery["category"][0] != "2,5" || rawQuery["exclude"][0] != "42" || rawQuery["per_page"][0] != "3" {
		t.Fatalf("unexpected related query %v", rawQuery)
	}
}

func TestListCategories(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/wc/v3/products/categories" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = io.WriteString(w, `[{"id":2,"name":"Live","slug":"live","description":"Living room furniture"}]`)
	})

	cats, err := client.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(cats) != 1 || cats[0].Description != "Living room furniture" {
		t.Fatalf("unexpected categories %+v", cats)
	}
}

func TestCreateOrderPostsPayload(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/wp-json/wc/v3/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": 727, "status": "processing"}`)
	})

	id, err := client.CreateOrder(context.Background(), OrderRequest{
		PaymentMethod:      "bacs",
		PaymentMethodTitle: "Direct Bank Transfer",
		SetPaid:            true,
		Billing:            Address{FirstName: "Asha", Country: "IN", Email: "asha@example.com"},
		Shipping:           Address{FirstName: "Asha", Country: "IN"},
		LineItems:          []LineItem{{ProductID: 2, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if id != "727" {
		t.Fatalf("expected id 727, got %q", id)
	}
	if body["payment_method"] != "bacs" || body["set_paid"] != true {
		t.Fatalf("unexpected body %v", body)
	}
	items := body["line_items"].([]any)
	if first := items[0].(map[string]any); first["product_id"] != float64(2) || first["quantity"] != float64(3) {
		t.Fatalf("unexpected line items %v", items)
	}
	if _, ok := body["shipping"].(map[string]any)["email"]; ok {
		t.Fatalf("shipping should not carry email")
	}
}

func TestNon2xxIsDependencyError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"code":"woocommerce_rest_cannot_view"}`)
	})

	_, err := client.ListProducts(context.Background(), ProductQuery{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	cause := errors.Unwrap(err)
	if cause == nil || !strings.Contains(cause.Error(), "status 401") || !strings.Contains(cause.Error(), "woocommerce_rest_cannot_view") {
		t.Fatalf("error should carry status and body: %v", cause)
	}
}

func TestMalformedBodyIsDependencyError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"not":"a list"`)
	})
	if _, err := client.ListCategories(context.Background()); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(Credentials{APIURL: "https://shop", ConsumerKey: "ck"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestNewClientRejectsUntrustedPrivateEndpoints(t *testing.T) {
	for _, apiURL := range []string{
		"http://shop.example/wp-json/wc/v3",
		"https://localhost/wp-json/wc/v3",
		"https://127.0.0.1:8080/admin",
		"https://10.0.0.5/wp-json/wc/v3",
		"https://169.254.169.254/latest/meta-data",
		"https://[::1]/wp-json/wc/v3",
		"https://[::ffff:192.168.1.1]/",
		"https://metadata.google.internal/",
		"https://intranet/wp-json/wc/v3",
		"https://user:pw@shop.example/wp-json/wc/v3",
	} {
		_, err := NewClient(Credentials{APIURL: apiURL, ConsumerKey: "ck", ConsumerSecret: "cs", Untrusted: true})
		if !errors.Is(err, ErrPrivateEndpoint) {
			t.Fatalf("expected ErrPrivateEndpoint for %s, got %v", apiURL, err)
		}
	}

	if _, err := NewClient(Credentials{APIURL: "https://shop.example/wp-json/wc/v3", ConsumerKey: "ck", ConsumerSecret: "cs", Untrusted: true}); err != nil {
		t.Fatalf("public https endpoint should be accepted: %v", err)
	}
}

func TestUntrustedClientRefusesPrivateAddressesAtDial(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, "[]")
	}))
	t.Cleanup(srv.Close)

	// Passes the url check but resolves to loopback, the same shape as a
	// rebinding DNS name.
	client, err := NewClient(Credentials{APIURL: "https://shop.example/wp-json/wc/v3", ConsumerKey: "ck", ConsumerSecret: "cs", Untrusted: true},
		WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.creds.APIURL = srv.URL + "/wp-json/wc/v3"

	if _, err := client.ListCategories(context.Background()); err == nil {
		t.Fatalf("expected dial to loopback to be refused")
	}
	if n := hits.Load(); n != 0 {
		t.Fatalf("request reached the private server %d times", n)
	}
}

func TestParsePriceFallsBackToZero(t *testing.T) {
	if !parsePrice("").IsZero() || !parsePrice("n/a").IsZero() {
		t.Fatal("expected zero for unparseable prices")
	}
	if parsePrice(" 4500 ").String() != "4500" {
		t.Fatal("expected trimmed price to parse")
	}
}
