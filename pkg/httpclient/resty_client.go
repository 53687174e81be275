package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Options tunes the underlying resty client. The zero value gives transport defaults.
type Options struct {
	// Timeout bounds a whole request. Zero leaves it unbounded.
	Timeout time.Duration
	// Logger receives resty's own warnings. zap's SugaredLogger satisfies it.
	Logger resty.Logger
}

// RestyClient adapts resty.Client to the httpclient.Client interface.
// It is safe for concurrent use once constructed.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClientWithOptions creates a RestyClient from opts.
func NewRestyClientWithOptions(opts Options) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(opts)}
}

// newRestyBaseClient creates a new resty.Client from opts.
func newRestyBaseClient(opts Options) *resty.Client {
	c := resty.New()
	if opts.Timeout > 0 {
		c.SetTimeout(opts.Timeout)
	}
	if opts.Logger != nil {
		c.SetLogger(opts.Logger)
	}
	return c
}

// Execute performs a request with an arbitrary verb. A nil body sends no payload.
func (r *RestyClient) Execute(ctx context.Context, method, url string, headers map[string]string, body []byte) (Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }
