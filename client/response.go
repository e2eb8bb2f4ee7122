package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const maxLoggedBodyLength = 2000

// Response is everything the client captured from a single HTTP response.
type Response struct {
	StatusCode int
	// Header lookups through Get are case-insensitive.
	Header http.Header
	// Body is the parsed JSON body. A body that is not valid JSON is kept as a string value.
	// If the response had no body at all, Body is null and HasBody is false.
	Body     ldvalue.Value
	HasBody  bool
	RawBody  []byte
	Duration time.Duration
}

// NewResponse builds a Response from raw response data, parsing the body as JSON when possible.
func NewResponse(status int, header http.Header, body []byte) Response {
	canonical := make(http.Header, len(header))
	for k, vs := range header {
		for _, v := range vs {
			canonical.Add(k, v)
		}
	}
	r := Response{
		StatusCode: status,
		Header:     canonical,
		RawBody:    body,
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return r
	}
	r.HasBody = true
	if json.Valid(trimmed) {
		r.Body = ldvalue.Parse(trimmed)
	} else {
		r.Body = ldvalue.String(string(body))
	}
	return r
}

// IsSuccess reports whether the status code is in the 2xx range.
func (r Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r Response) String() string {
	if !r.HasBody {
		return fmt.Sprintf("HTTP %d (no body)", r.StatusCode)
	}
	body := r.Body.JSONString()
	if len(body) > maxLoggedBodyLength {
		body = body[:maxLoggedBodyLength] + "..."
	}
	return fmt.Sprintf("HTTP %d %s", r.StatusCode, body)
}
