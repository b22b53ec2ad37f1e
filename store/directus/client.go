// Package directus implements the store capability against a Directus-style
// items HTTP API: filtered collection reads, id(+version) reads, and count
// aggregations.
package directus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-headless/internal/logging"
	"github.com/goliatone/go-headless/pkg/interfaces"
	"github.com/goliatone/go-headless/store"
)

// Config captures the connection settings for a Directus instance.
type Config struct {
	// BaseURL is the instance root, e.g. https://cms.example.com.
	BaseURL string
	// Token is the default static access token. Per-query tokens override it.
	Token string
	// HTTPClient owns transport policy (timeouts, retries, proxies). The
	// default client is used when nil.
	HTTPClient *http.Client
	Logger     interfaces.Logger
}

// Client talks to the Directus items API. It is stateless and safe for
// concurrent use.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  interfaces.Logger
}

// New constructs a client. BaseURL is required.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("directus: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Client{
		baseURL: base,
		token:   strings.TrimSpace(cfg.Token),
		http:    httpClient,
		logger:  logger,
	}, nil
}

// QueryByFilter implements store.Store.
func (c *Client) QueryByFilter(ctx context.Context, collection string, q store.Query) ([]store.Row, error) {
	if collection == "" {
		return nil, store.ErrCollectionRequired
	}

	params := url.Values{}
	if err := encodeJSONParam(params, "filter", map[string]any(q.Filter)); err != nil {
		return nil, err
	}
	if err := encodeJSONParam(params, "deep", q.Deep); err != nil {
		return nil, err
	}
	if fields := FlattenFields(q.Fields); len(fields) > 0 {
		params.Set("fields", strings.Join(fields, ","))
	}
	if len(q.Sort) > 0 {
		params.Set("sort", strings.Join(q.Sort, ","))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}

	var payload struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.get(ctx, c.itemsURL(collection, "", params), q.Token, collection, &payload); err != nil {
		return nil, err
	}
	return decodeRows(payload.Data, collection)
}

// QueryByID implements store.Store. Version errors surface as missing rows so
// callers never receive substituted published content.
func (c *Client) QueryByID(ctx context.Context, collection, id string, opts store.GetOptions) (store.Row, error) {
	if collection == "" {
		return nil, store.ErrCollectionRequired
	}
	if strings.TrimSpace(id) == "" {
		return nil, store.ErrIDRequired
	}

	params := url.Values{}
	if opts.Version != "" {
		params.Set("version", opts.Version)
	}
	if err := encodeJSONParam(params, "deep", opts.Deep); err != nil {
		return nil, err
	}
	if fields := FlattenFields(opts.Fields); len(fields) > 0 {
		params.Set("fields", strings.Join(fields, ","))
	}

	var payload struct {
		Data store.Row `json:"data"`
	}
	if err := c.get(ctx, c.itemsURL(collection, id, params), opts.Token, collection, &payload); err != nil {
		return nil, err
	}
	if payload.Data == nil {
		return nil, &store.NotFoundError{Collection: collection, Key: id}
	}
	return payload.Data, nil
}

// AggregateCount implements store.Store.
func (c *Client) AggregateCount(ctx context.Context, collection string, filter store.Filter) (int, error) {
	if collection == "" {
		return 0, store.ErrCollectionRequired
	}

	params := url.Values{}
	params.Set("aggregate[count]", "*")
	if err := encodeJSONParam(params, "filter", map[string]any(filter)); err != nil {
		return 0, err
	}

	var payload struct {
		Data []map[string]any `json:"data"`
	}
	if err := c.get(ctx, c.itemsURL(collection, "", params), "", collection, &payload); err != nil {
		return 0, err
	}
	if len(payload.Data) == 0 {
		return 0, nil
	}
	switch count := payload.Data[0]["count"].(type) {
	case float64:
		return int(count), nil
	case string:
		parsed, err := strconv.Atoi(count)
		if err != nil {
			return 0, store.WrapTransport(err, "aggregate", collection)
		}
		return parsed, nil
	default:
		return 0, nil
	}
}

func (c *Client) itemsURL(collection, id string, params url.Values) string {
	path := c.baseURL + "/items/" + url.PathEscape(collection)
	if id != "" {
		path += "/" + url.PathEscape(id)
	}
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	return path
}

func (c *Client) get(ctx context.Context, rawURL, token, collection string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return store.WrapTransport(err, "request", collection)
	}
	req.Header.Set("Accept", "application/json")
	if token = strings.TrimSpace(token); token == "" {
		token = c.token
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return store.WrapTransport(err, "fetch", collection)
	}
	defer resp.Body.Close()

	// Directus reports missing rows as 403 for anonymous access and 404 for
	// known-but-absent ids. Both are NotFound, not transport failures.
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return &store.NotFoundError{Collection: collection}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Error("directus.request.failed", "collection", collection, "status", resp.StatusCode)
		return store.WrapTransport(fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), "fetch", collection)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return store.WrapTransport(err, "decode", collection)
	}
	return nil
}

func decodeRows(raw json.RawMessage, collection string) ([]store.Row, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	trimmed := strings.TrimSpace(string(raw))
	// Singletons come back as a bare object; normalize to one row.
	if strings.HasPrefix(trimmed, "{") {
		var row store.Row
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, store.WrapTransport(err, "decode", collection)
		}
		return []store.Row{row}, nil
	}
	var rows []store.Row
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, store.WrapTransport(err, "decode", collection)
	}
	return rows, nil
}

func encodeJSONParam(params url.Values, key string, value map[string]any) error {
	if len(value) == 0 {
		return nil
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("directus: encode %s: %w", key, err)
	}
	params.Set(key, string(encoded))
	return nil
}

var _ store.Store = (*Client)(nil)
