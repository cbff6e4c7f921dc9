package soap

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

type CallContent struct {
	Header http.Header
	Body   string
}

// CallResult records one request/response exchange. Body holds the decoded
// response content: a Map of the children of the operation response
// element, or its text when it has none.
type CallResult struct {
	Operation       string
	RequestURL      string
	StatusCode      int
	RequestContent  CallContent
	ResponseContent CallContent
	Body            interface{}
	InvokeAt        time.Time
	ReturnAt        time.Time
	DecodedAt       time.Time
}

// Trace renders the exchange for troubleshooting.
func (r *CallResult) Trace() string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "operation: %s\n", r.Operation)
	fmt.Fprintf(&b, "url: %s\n", r.RequestURL)
	fmt.Fprintf(&b, "status: %d\n", r.StatusCode)
	if !r.InvokeAt.IsZero() {
		fmt.Fprintf(&b, "invoked: %s\n", r.InvokeAt.Format(time.RFC3339Nano))
	}
	if !r.ReturnAt.IsZero() {
		fmt.Fprintf(&b, "returned: +%s\n", r.ReturnAt.Sub(r.InvokeAt))
	}
	if !r.DecodedAt.IsZero() {
		fmt.Fprintf(&b, "decoded: +%s\n", r.DecodedAt.Sub(r.InvokeAt))
	}
	writeHeaders(&b, "request", r.RequestContent.Header)
	writeHeaders(&b, "response", r.ResponseContent.Header)
	return b.String()
}

func writeHeaders(b *strings.Builder, label string, h http.Header) {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == "Authorization" {
			fmt.Fprintf(b, "%s header %s: [redacted]\n", label, k)
			continue
		}
		fmt.Fprintf(b, "%s header %s: %s\n", label, k, strings.Join(h[k], ", "))
	}
}
