package woocommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/narkk-storefront/pkg/errors"
)

const (
	defaultTimeout             = 10 * time.Second
	responseBodyReadLimit int64 = 1024
)

// ErrNotConfigured is returned when any of the three credential values is blank.
var ErrNotConfigured = errors.New("woocommerce api credentials not configured")

// Credentials identify one WooCommerce REST v3 endpoint, e.g.
// https://shop.example/wp-json/wc/v3.
type Credentials struct {
	APIURL         string `json:"apiUrl"`
	ConsumerKey    string `json:"consumerKey"`
	ConsumerSecret string `json:"consumerSecret"`

	// Untrusted marks credentials supplied by a shopper session. Their
	// endpoint must be public and is re-checked when connecting.
	Untrusted bool `json:"-"`
}

// Complete reports whether all three values are present.
func (c Credentials) Complete() bool {
	return strings.TrimSpace(c.APIURL) != "" &&
		strings.TrimSpace(c.ConsumerKey) != "" &&
		strings.TrimSpace(c.ConsumerSecret) != ""
}

// Client talks to the WooCommerce REST API with query-string authentication.
type Client struct {
	httpClient *http.Client
	creds      Credentials
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient builds a client for the given credentials.
func NewClient(creds Credentials, opts ...Option) (*Client, error) {
	if !creds.Complete() {
		return nil, ErrNotConfigured
	}
	creds.APIURL = strings.TrimRight(strings.TrimSpace(creds.APIURL), "/")

	client := &Client{
		creds:      creds,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if creds.Untrusted {
		if err := CheckPublicEndpoint(creds.APIURL); err != nil {
			return nil, err
		}
		client.httpClient = publicOnlyClient(client.httpClient)
	}
	return client, nil
}

// ProductQuery filters GET /products. Zero values are omitted.
type ProductQuery struct {
	Featured bool
	Category string
	Slug     string
	Exclude  []int64
	PerPage  int
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	if q.Featured {
		v.Set("featured", "true")
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Slug != "" {
		v.Set("slug", q.Slug)
	}
	if len(q.Exclude) > 0 {
		v.Set("exclude", joinIDs(q.Exclude))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return v
}

// ListProducts fetches products matching q.
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) ([]Product, error) {
	var payload []productPayload
	if err := c.do(ctx, http.MethodGet, "/products", q.values(), nil, &payload); err != nil {
		return nil, err
	}
	products := make([]Product, 0, len(payload))
	for _, p := range payload {
		products = append(products, p.toProduct())
	}
	return products, nil
}

// ListCategories fetches product categories.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var payload []categoryPayload
	if err := c.do(ctx, http.MethodGet, "/products/categories", nil, nil, &payload); err != nil {
		return nil, err
	}
	categories := make([]Category, 0, len(payload))
	for _, cat := range payload {
		categories = append(categories, cat.toCategory())
	}
	return categories, nil
}

// CreateOrder posts a new order and returns the id WooCommerce assigned.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (string, error) {
	var created struct {
		ID json.Number `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/orders", nil, req, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "order response missing id")
	}
	return created.ID.String(), nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body any, out any) error {
	if c == nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, ErrNotConfigured, "woocommerce client not configured")
	}

	target, err := c.buildURL(endpoint, query)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build woocommerce url")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal woocommerce request")
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build woocommerce request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute woocommerce request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), fmt.Sprintf("woocommerce %s %s failed", method, endpoint))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode woocommerce response")
	}
	return nil
}

// buildURL appends the endpoint to the API URL and authenticates through the query string.
func (c *Client) buildURL(endpoint string, query url.Values) (string, error) {
	u, err := url.Parse(c.creds.APIURL + endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("consumer_key", c.creds.ConsumerKey)
	q.Set("consumer_secret", c.creds.ConsumerSecret)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// JoinCategoryIDs renders category ids the way the category filter expects them.
func JoinCategoryIDs(categories []Category) string {
	ids := make([]int64, len(categories))
	for i, cat := range categories {
		ids[i] = cat.ID
	}
	return joinIDs(ids)
}
