package roy

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/roy/pkg/httpclient"
)

type options struct {
	transport    httpclient.Client
	transportLog resty.Logger
	log          Logger
	timeout      time.Duration
	headers      map[string]string
}

// Option configures a Client at construction time.
type Option func(*options)

// WithTransport replaces the default resty transport. The transport may be
// shared between clients.
func WithTransport(t httpclient.Client) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithLogger sets the logger used for dropped headers and failed requests.
func WithLogger(log Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithTransportLogger forwards resty's internal warnings to log.
// Ignored when WithTransport is used.
func WithTransportLogger(log resty.Logger) Option {
	return func(o *options) {
		o.transportLog = log
	}
}

// WithTimeout bounds each request of the default transport. Ignored when
// WithTransport is used.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithHeaders adds static headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(o *options) {
		if o.headers == nil {
			o.headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			o.headers[k] = v
		}
	}
}
