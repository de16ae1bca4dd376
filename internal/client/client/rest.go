package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/tubeboost/internal/client/models"
	"github.com/dmitrijs2005/tubeboost/internal/logging"
)

const (
	pathLogin       = "/api/users/login/"
	pathRegister    = "/api/users/register/"
	pathProfile     = "/api/users/profile/"
	pathHomeConfig  = "/api/home-config/"
	pathFAQs        = "/api/faqs/"
	pathArticles    = "/api/seo-articles/"
	pathOrders      = "/api/orders/"
	pathAdminOrders = "/api/admin/orders/"
)

// RESTClient talks JSON over HTTP to the backend. Request paths are
// appended to the resolved base URL; every request carries the current
// Defaults.
type RESTClient struct {
	baseURL  string
	http     *http.Client
	defaults *Defaults
	log      logging.Logger
}

// NewRESTClient builds a client for baseURL, which must already be
// normalized by ResolveBaseURL. A nil httpClient selects http.DefaultClient,
// so no timeout is imposed beyond what the caller's context carries.
func NewRESTClient(baseURL string, httpClient *http.Client, defaults *Defaults, log logging.Logger) *RESTClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if defaults == nil {
		defaults = NewDefaults()
	}
	if log == nil {
		log = logging.Nop()
	}
	return &RESTClient{baseURL: baseURL, http: httpClient, defaults: defaults, log: log}
}

// BaseURL returns the backend base URL requests are sent to.
func (c *RESTClient) BaseURL() string {
	return c.baseURL
}

func (c *RESTClient) Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	if err := c.do(ctx, http.MethodPost, pathLogin, creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *RESTClient) Register(ctx context.Context, creds models.Credentials) error {
	return c.do(ctx, http.MethodPost, pathRegister, creds, nil)
}

func (c *RESTClient) Profile(ctx context.Context) (map[string]json.RawMessage, error) {
	fields := make(map[string]json.RawMessage)
	if err := c.do(ctx, http.MethodGet, pathProfile, nil, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// HomeConfig returns the first landing page configuration, or nil when the
// backend has none.
func (c *RESTClient) HomeConfig(ctx context.Context) (*models.HomeConfig, error) {
	var list []models.HomeConfig
	if err := c.do(ctx, http.MethodGet, pathHomeConfig, nil, &list); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

func (c *RESTClient) FAQs(ctx context.Context) ([]models.FAQ, error) {
	var list []models.FAQ
	if err := c.do(ctx, http.MethodGet, pathFAQs, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *RESTClient) Articles(ctx context.Context) ([]models.Article, error) {
	var list []models.Article
	if err := c.do(ctx, http.MethodGet, pathArticles, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *RESTClient) Orders(ctx context.Context) ([]models.Order, error) {
	var list []models.Order
	if err := c.do(ctx, http.MethodGet, pathOrders, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *RESTClient) CreateOrder(ctx context.Context, o models.NewOrder) (*models.Order, error) {
	var created models.Order
	if err := c.do(ctx, http.MethodPost, pathOrders, o, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *RESTClient) AdminOrders(ctx context.Context) ([]models.Order, error) {
	var list []models.Order
	if err := c.do(ctx, http.MethodGet, pathAdminOrders, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *RESTClient) UpdateOrder(ctx context.Context, id int64, u models.OrderUpdate) (*models.Order, error) {
	var updated models.Order
	path := pathAdminOrders + strconv.FormatInt(id, 10) + "/"
	if err := c.do(ctx, http.MethodPatch, path, u, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *RESTClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	c.defaults.apply(req)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s %s: %w", method, path, ctxErr)
		}
		return fmt.Errorf("%s %s: %w: %w", method, path, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s response: %w", method, path, err)
	}

	c.log.Debug(ctx, "api call", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: data}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}

	// Field validation errors come back as {"field": ["msg", ...]}.
	var fields map[string][]string
	if err := json.Unmarshal(body, &fields); err == nil {
		for _, msgs := range fields {
			if len(msgs) > 0 {
				return msgs[0]
			}
		}
	}
	return ""
}

// IsHTTPStatus reports whether err is an HTTPError with the given status.
func IsHTTPStatus(err error, status int) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.StatusCode == status
}
