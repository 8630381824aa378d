package printify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"podsync/internal/logger"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
)

type Options struct {
	BaseURL    string
	APIToken   string
	ShopID     string
	Timeout    time.Duration
	RetryCount int
	PageLimit  int
	// RetryWait is the initial backoff between read retries.
	RetryWait time.Duration
}

// Client talks to the storefront and catalog API. Reads are retried on
// transient failures. Writes are sent once.
type Client struct {
	shopID    string
	pageLimit int
	reader    *resty.Client
	writer    *resty.Client
	logger    *logger.Logger
}

func NewClient(opts Options, logger *logger.Logger) *Client {
	if opts.PageLimit <= 0 {
		opts.PageLimit = 50
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = 500 * time.Millisecond
	}

	reader := newRestyClient(opts, logger).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(10 * opts.RetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			ctx := context.Background()
			var raw *http.Response
			if r != nil {
				raw = r.RawResponse
				if r.Request != nil {
					ctx = r.Request.Context()
				}
			}
			retry, _ := retryablehttp.DefaultRetryPolicy(ctx, raw, err)
			return retry
		})

	return &Client{
		shopID:    opts.ShopID,
		pageLimit: opts.PageLimit,
		reader:    reader,
		writer:    newRestyClient(opts, logger).SetRetryCount(0),
		logger:    logger,
	}
}

func newRestyClient(opts Options, logger *logger.Logger) *resty.Client {
	return resty.New().
		SetBaseURL(opts.BaseURL).
		SetAuthToken(opts.APIToken).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(opts.Timeout).
		SetLogger(restyLogger{logger})
}

// GetStoreProducts fetches every product of the shop, following pagination.
func (c *Client) GetStoreProducts(ctx context.Context) ([]Product, error) {
	path := fmt.Sprintf("/shops/%s/products.json", c.shopID)

	var products []Product
	for page := 1; ; page++ {
		var resp ProductsResponse
		err := c.get(ctx, path, map[string]string{
			"page":  strconv.Itoa(page),
			"limit": strconv.Itoa(c.pageLimit),
		}, &resp)
		if err != nil {
			return nil, err
		}
		if resp.Data == nil && page == 1 {
			return nil, &APIError{Method: http.MethodGet, Path: path, Err: fmt.Errorf("response has no data field"), kind: ErrUpstreamUnavailable}
		}

		products = append(products, resp.Data...)
		c.logger.Debug("Fetched products page %d/%d (%d products)", page, resp.LastPage, len(resp.Data))

		if resp.LastPage == 0 || page >= resp.LastPage || len(resp.Data) == 0 {
			break
		}
	}

	return products, nil
}

// GetProviderVariants fetches the variant catalog of a provider for a blueprint.
func (c *Client) GetProviderVariants(ctx context.Context, blueprintID, providerID int) (*ProviderCatalog, error) {
	path := fmt.Sprintf("/catalog/blueprints/%d/print_providers/%d/variants.json", blueprintID, providerID)

	var raw struct {
		Variants *[]CatalogVariant `json:"variants"`
	}
	if err := c.get(ctx, path, nil, &raw); err != nil {
		return nil, err
	}
	if raw.Variants == nil {
		return nil, &APIError{Method: http.MethodGet, Path: path, Err: fmt.Errorf("response has no variants field"), kind: ErrUpstreamUnavailable}
	}

	return &ProviderCatalog{Variants: *raw.Variants}, nil
}

// GetBlueprintProviders lists the providers offering a blueprint in catalog order.
func (c *Client) GetBlueprintProviders(ctx context.Context, blueprintID int) ([]CatalogProvider, error) {
	path := fmt.Sprintf("/catalog/blueprints/%d.json", blueprintID)

	var resp blueprintResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	return resp.PrintProviders, nil
}

// UpdateProduct writes a status-only or provider-switch payload. It is not retried.
func (c *Client) UpdateProduct(ctx context.Context, productID string, payload UpdatePayload) error {
	path := fmt.Sprintf("/shops/%s/products/%s.json", c.shopID, productID)

	resp, err := c.writer.R().
		SetContext(ctx).
		SetBody(payload).
		Put(path)
	if err != nil {
		return &APIError{Method: http.MethodPut, Path: path, Err: err, kind: ErrUpdateRejected}
	}
	if !resp.IsSuccess() {
		return &APIError{Method: http.MethodPut, Path: path, StatusCode: resp.StatusCode(), Body: resp.String(), kind: ErrUpdateRejected}
	}

	return nil
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, out interface{}) error {
	req := c.reader.R().SetContext(ctx)
	if query != nil {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(path)
	if err != nil {
		return &APIError{Method: http.MethodGet, Path: path, Err: err, kind: ErrUpstreamUnavailable}
	}
	if !resp.IsSuccess() {
		return &APIError{Method: http.MethodGet, Path: path, StatusCode: resp.StatusCode(), Body: resp.String(), kind: ErrUpstreamUnavailable}
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &APIError{Method: http.MethodGet, Path: path, Err: fmt.Errorf("failed to decode response: %w", err), kind: ErrUpstreamUnavailable}
	}

	return nil
}

type restyLogger struct {
	l *logger.Logger
}

func (r restyLogger) Errorf(format string, v ...interface{}) { r.l.Error(format, v...) }
func (r restyLogger) Warnf(format string, v ...interface{})  { r.l.Warn(format, v...) }
func (r restyLogger) Debugf(format string, v ...interface{}) { r.l.Debug(format, v...) }
