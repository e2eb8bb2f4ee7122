package expect

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/launchdarkly/posts-contract-tests/client"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Kind identifies what an Expectation checks.
type Kind string

const (
	KindStatusEquals      Kind = "status-equals"
	KindHeaderContains    Kind = "header-contains"
	KindBodyFieldEquals   Kind = "body-field-equals"
	KindBodyLengthEquals  Kind = "body-length-equals"
	KindBodyArrayContains Kind = "body-array-contains"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindStatusEquals, KindHeaderContains, KindBodyFieldEquals, KindBodyLengthEquals, KindBodyArrayContains:
		return true
	}
	return false
}

// Expectation is a single declarative check against a captured response. Which fields are
// used depends on Kind:
//
//   - status-equals: Status
//   - header-contains: Header, Substring
//   - body-field-equals: Path, Value
//   - body-length-equals: Path, Length
//   - body-array-contains: Path, Value
//
// Path uses the syntax described in Lookup; an empty path means the whole body.
type Expectation struct {
	Kind      Kind          `json:"kind"`
	Status    int           `json:"status,omitempty"`
	Header    string        `json:"header,omitempty"`
	Substring string        `json:"substring,omitempty"`
	Path      string        `json:"path,omitempty"`
	Value     ldvalue.Value `json:"value"`
	Length    int           `json:"length,omitempty"`
}

func StatusEquals(status int) Expectation {
	return Expectation{Kind: KindStatusEquals, Status: status}
}

func HeaderContains(header, substring string) Expectation {
	return Expectation{Kind: KindHeaderContains, Header: header, Substring: substring}
}

// BodyFieldEquals expects the value at path to be exactly equal to value. The value can be
// anything that encoding/json can marshal, or an ldvalue.Value.
func BodyFieldEquals(path string, value interface{}) Expectation {
	return Expectation{Kind: KindBodyFieldEquals, Path: path, Value: ToValue(value)}
}

// BodyLength expects the whole body to be an array with exactly n elements.
func BodyLength(n int) Expectation {
	return BodyLengthEquals("", n)
}

// BodyLengthEquals expects the value at path to be an array, or a string, of exactly n elements.
func BodyLengthEquals(path string, n int) Expectation {
	return Expectation{Kind: KindBodyLengthEquals, Path: path, Length: n}
}

// BodyArrayContains expects the value at path to be an array with at least one element equal
// to value. Use a "*" path segment to check a field of each element, as in "*.id".
func BodyArrayContains(path string, value interface{}) Expectation {
	return Expectation{Kind: KindBodyArrayContains, Path: path, Value: ToValue(value)}
}

// ToValue converts an arbitrary value to an ldvalue.Value by way of its JSON representation.
func ToValue(value interface{}) ldvalue.Value {
	if v, ok := value.(ldvalue.Value); ok {
		return v
	}
	data, err := json.Marshal(value)
	if err != nil {
		return ldvalue.String(fmt.Sprint(value))
	}
	return ldvalue.Parse(data)
}

func (e Expectation) String() string {
	switch e.Kind {
	case KindStatusEquals:
		return fmt.Sprintf("status equals %d", e.Status)
	case KindHeaderContains:
		return fmt.Sprintf("header %q contains %q", e.Header, e.Substring)
	case KindBodyFieldEquals:
		return fmt.Sprintf("%s equals %s", describePath(e.Path), e.Value.JSONString())
	case KindBodyLengthEquals:
		return fmt.Sprintf("%s has length %d", describePath(e.Path), e.Length)
	case KindBodyArrayContains:
		return fmt.Sprintf("%s contains %s", describePath(e.Path), e.Value.JSONString())
	}
	return fmt.Sprintf("unknown expectation %q", e.Kind)
}

// Check tests the response against the expectation. If it does not match, it returns a
// description of the mismatch.
func (e Expectation) Check(resp client.Response) (failure string, ok bool) {
	switch e.Kind {
	case KindStatusEquals:
		if resp.StatusCode != e.Status {
			return fmt.Sprintf("expected status %d, got %d", e.Status, resp.StatusCode), false
		}

	case KindHeaderContains:
		values, present := resp.Header[http.CanonicalHeaderKey(e.Header)]
		if !present {
			return fmt.Sprintf("expected header %q to contain %q, but it was not present",
				e.Header, e.Substring), false
		}
		actual := strings.Join(values, ", ")
		if !strings.Contains(actual, e.Substring) {
			return fmt.Sprintf("expected header %q to contain %q, got %q", e.Header, e.Substring, actual), false
		}

	case KindBodyFieldEquals:
		actual, found := lookupBody(resp, e.Path)
		if !found {
			return fmt.Sprintf("expected %s to equal %s, but it was not present",
				describePath(e.Path), e.Value.JSONString()), false
		}
		if !actual.Equal(e.Value) {
			return fmt.Sprintf("expected %s to equal %s, got %s",
				describePath(e.Path), e.Value.JSONString(), actual.JSONString()), false
		}

	case KindBodyLengthEquals:
		actual, found := lookupBody(resp, e.Path)
		if !found {
			return fmt.Sprintf("expected %s to have length %d, but it was not present",
				describePath(e.Path), e.Length), false
		}
		var n int
		switch actual.Type() {
		case ldvalue.ArrayType:
			n = actual.Count()
		case ldvalue.StringType:
			n = len([]rune(actual.StringValue()))
		default:
			return fmt.Sprintf("expected %s to be an array of length %d, got %s",
				describePath(e.Path), e.Length, actual.Type()), false
		}
		if n != e.Length {
			return fmt.Sprintf("expected %s to have length %d, got %d", describePath(e.Path), e.Length, n), false
		}

	case KindBodyArrayContains:
		actual, found := lookupBody(resp, e.Path)
		if !found {
			return fmt.Sprintf("expected %s to contain %s, but it was not present",
				describePath(e.Path), e.Value.JSONString()), false
		}
		if actual.Type() != ldvalue.ArrayType {
			return fmt.Sprintf("expected %s to be an array containing %s, got %s",
				describePath(e.Path), e.Value.JSONString(), actual.Type()), false
		}
		for i := 0; i < actual.Count(); i++ {
			if actual.GetByIndex(i).Equal(e.Value) {
				return "", true
			}
		}
		return fmt.Sprintf("expected %s to contain %s, got %s",
			describePath(e.Path), e.Value.JSONString(), actual.JSONString()), false

	default:
		return fmt.Sprintf("unknown expectation kind %q", e.Kind), false
	}
	return "", true
}

func lookupBody(resp client.Response, path string) (ldvalue.Value, bool) {
	if !resp.HasBody {
		return ldvalue.Null(), false
	}
	return Lookup(resp.Body, path)
}

func describePath(path string) string {
	if len(splitPath(path)) == 0 {
		return "body"
	}
	return fmt.Sprintf("body field %q", path)
}
