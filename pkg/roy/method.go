package roy

import (
	"fmt"
	"net/http"
	"strings"
)

// RequestMethod selects the verb used by Client.Request.
type RequestMethod int

// Supported request methods.
const (
	GET RequestMethod = iota
	POST
	PUT
	PATCH
	DELETE
)

var methodNames = [...]string{
	GET:    http.MethodGet,
	POST:   http.MethodPost,
	PUT:    http.MethodPut,
	PATCH:  http.MethodPatch,
	DELETE: http.MethodDelete,
}

// String returns the HTTP verb, e.g. "GET".
func (m RequestMethod) String() string {
	if m < GET || m > DELETE {
		return fmt.Sprintf("RequestMethod(%d)", int(m))
	}
	return methodNames[m]
}

// HasBody reports whether the verb carries a JSON payload.
func (m RequestMethod) HasBody() bool {
	return m == POST || m == PUT || m == PATCH
}

// ParseMethod maps a case-insensitive verb name to a RequestMethod.
func ParseMethod(s string) (RequestMethod, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range methodNames {
		if n == name {
			return RequestMethod(i), nil
		}
	}
	return 0, fmt.Errorf("unsupported request method %q", s)
}
