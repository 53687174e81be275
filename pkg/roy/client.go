// Package roy is a thin client for consuming REST APIs.
//
// A Client prepends a fixed base URL to every endpoint, optionally attaches a
// static Authorization header, encodes payloads as JSON and hands back the raw
// response. Transport failures are not returned as errors: the response is
// simply nil. HTTP error statuses are still responses.
//
//	c := roy.New("https://httpbin.org")
//	if resp := c.Get(ctx, "/get", false); resp != nil {
//		fmt.Println(resp.StatusCode())
//	}
package roy

import (
	"context"
	"encoding/json"
	"maps"
	"net/http"

	"github.com/samvad-hq/roy/pkg/httpclient"
	"golang.org/x/net/http/httpguts"
)

const (
	// SingleObjectAccept asks a PostgREST-style backend for one object instead of an array.
	SingleObjectAccept = "application/vnd.pgrst.object+json"

	headerAccept        = "Accept"
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	contentTypeJSON     = "application/json"
)

// Response is the transport response forwarded untouched to callers.
type Response = httpclient.Response

// Client issues one-shot requests against a base URL. It is immutable after
// construction and safe for concurrent use.
type Client struct {
	baseURL   string
	transport httpclient.Client
	headers   map[string]string
	log       Logger
}

// New creates a Client for baseURL. The URL is stored verbatim.
func New(baseURL string, opts ...Option) *Client {
	return build(baseURL, opts, nil)
}

// NewAuth creates a Client that sends token as the Authorization header on every
// request. The token is used verbatim, so include any scheme ("Bearer ...").
// A token that is not a valid header value is logged and dropped; the client
// is still returned without the header.
func NewAuth(baseURL, token string, opts ...Option) *Client {
	return build(baseURL, opts, func(c *Client) {
		if !httpguts.ValidHeaderFieldValue(token) {
			c.log.WarnObj("authorization header dropped", "client_config", map[string]any{
				"base_url": baseURL,
				"reason":   "token is not a valid header value",
			})
			return
		}
		c.headers[headerAuthorization] = token
	})
}

func build(baseURL string, opts []Option, finish func(*Client)) *Client {
	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	c := &Client{
		baseURL:   baseURL,
		transport: cfg.transport,
		log:       ensureLogger(cfg.log),
	}
	c.headers = sanitizeHeaders(cfg.headers, c.log)
	if c.transport == nil {
		c.transport = httpclient.NewRestyClientWithOptions(httpclient.Options{
			Timeout: cfg.timeout,
			Logger:  cfg.transportLog,
		})
	}
	if finish != nil {
		finish(c)
	}
	return c
}

// BaseURL returns the base URL exactly as it was supplied.
func (c *Client) BaseURL() string { return c.baseURL }

// FormatURL concatenates the base URL and endpoint. No separator is inserted
// and nothing is escaped, so endpoints normally start with "/".
func (c *Client) FormatURL(endpoint string) string {
	return c.baseURL + endpoint
}

// Get sends a GET to the endpoint. With single set, the request asks for one
// object rather than a collection.
func (c *Client) Get(ctx context.Context, endpoint string, single bool) Response {
	return c.GetAbs(ctx, c.FormatURL(endpoint), single)
}

// GetAbs sends a GET to url as given, ignoring the base URL.
func (c *Client) GetAbs(ctx context.Context, url string, single bool) Response {
	var extra map[string]string
	if single {
		extra = map[string]string{headerAccept: SingleObjectAccept}
	}
	return c.send(ctx, GET, url, extra, nil)
}

// Post sends data as a JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, data any) Response {
	return c.sendJSON(ctx, POST, endpoint, data)
}

// Put sends data as a JSON body.
func (c *Client) Put(ctx context.Context, endpoint string, data any) Response {
	return c.sendJSON(ctx, PUT, endpoint, data)
}

// Patch sends data as a JSON body.
func (c *Client) Patch(ctx context.Context, endpoint string, data any) Response {
	return c.sendJSON(ctx, PATCH, endpoint, data)
}

// Delete sends a DELETE without a body.
func (c *Client) Delete(ctx context.Context, endpoint string) Response {
	return c.send(ctx, DELETE, c.FormatURL(endpoint), nil, nil)
}

// Request dispatches to the verb method selected by method. A nil data is
// sent as an empty JSON string for verbs that carry a body and ignored otherwise.
func (c *Client) Request(ctx context.Context, endpoint string, method RequestMethod, data any) Response {
	if data == nil {
		data = ""
	}
	switch method {
	case GET:
		return c.Get(ctx, endpoint, false)
	case POST:
		return c.Post(ctx, endpoint, data)
	case PUT:
		return c.Put(ctx, endpoint, data)
	case PATCH:
		return c.Patch(ctx, endpoint, data)
	case DELETE:
		return c.Delete(ctx, endpoint)
	default:
		c.log.WarnObj("request skipped", "request_error", map[string]any{
			"method": method.String(),
			"url":    c.FormatURL(endpoint),
			"error":  "unknown request method",
		})
		return nil
	}
}

func (c *Client) sendJSON(ctx context.Context, method RequestMethod, endpoint string, data any) Response {
	url := c.FormatURL(endpoint)
	body, err := json.Marshal(data)
	if err != nil {
		c.log.WarnObj("request payload not encodable", "request_error", map[string]any{
			"method": method.String(),
			"url":    url,
			"error":  err.Error(),
		})
		return nil
	}
	return c.send(ctx, method, url, map[string]string{headerContentType: contentTypeJSON}, body)
}

func (c *Client) send(ctx context.Context, method RequestMethod, url string, extra map[string]string, body []byte) Response {
	headers := make(map[string]string, len(c.headers)+len(extra))
	maps.Copy(headers, c.headers)
	maps.Copy(headers, extra)

	resp, err := c.transport.Execute(ctx, method.String(), url, headers, body)
	if err != nil || resp == nil {
		meta := map[string]any{
			"method": method.String(),
			"url":    url,
		}
		if err != nil {
			meta["error"] = err.Error()
		}
		c.log.WarnObj("request failed", "request_error", meta)
		return nil
	}

	c.log.DebugObj("request completed", "request_result", map[string]any{
		"method": method.String(),
		"url":    url,
		"status": resp.StatusCode(),
	})
	return resp
}

// sanitizeHeaders copies headers under their canonical keys, dropping entries
// that cannot be sent. Request-specific headers and the token overwrite these
// by key, so the keys must be canonical.
func sanitizeHeaders(headers map[string]string, log Logger) map[string]string {
	out := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		if !httpguts.ValidHeaderFieldName(k) || !httpguts.ValidHeaderFieldValue(v) {
			log.WarnObj("default header dropped", "header", k)
			continue
		}
		out[http.CanonicalHeaderKey(k)] = v
	}
	return out
}
