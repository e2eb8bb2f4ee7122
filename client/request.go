package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Method is an HTTP request method supported by the client.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete:
		return true
	}
	return false
}

// QueryParam is a single query string parameter. A RequestSpec keeps these in order and may
// contain the same key more than once.
type QueryParam struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// RepeatedParam expands an array parameter into one QueryParam per value, all with the same key.
func RepeatedParam(key string, values ...interface{}) []QueryParam {
	ret := make([]QueryParam, 0, len(values))
	for _, v := range values {
		ret = append(ret, QueryParam{Key: key, Value: fmt.Sprint(v)})
	}
	return ret
}

// RequestSpec describes a single request to the API under test.
//
// Path is resolved against the client's base URL unless it is already absolute. It may carry
// its own query string; the parameters in Query are appended after it.
//
// Body can be any value that encoding/json can marshal, including an ldvalue.Value. It is sent
// as JSON unless Form is true, in which case it must be a JSON object and is sent as
// application/x-www-form-urlencoded.
//
// The client never treats an HTTP status as an error unless FailOnStatusCode is set, in which
// case a non-2xx status is reported as a *StatusError alongside the captured response.
type RequestSpec struct {
	Method           Method            `json:"method" yaml:"method"`
	Path             string            `json:"path" yaml:"path"`
	Headers          map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Query            []QueryParam      `json:"query,omitempty" yaml:"query,omitempty"`
	Body             interface{}       `json:"body,omitempty" yaml:"body,omitempty"`
	Form             bool              `json:"form,omitempty" yaml:"form,omitempty"`
	FailOnStatusCode bool              `json:"failOnStatusCode,omitempty" yaml:"failOnStatusCode,omitempty"`
}

func (s RequestSpec) String() string {
	return fmt.Sprintf("%s %s", s.Method, s.Path)
}

// BodyValue converts the request body to an ldvalue.Value. A nil body is returned as a null
// value with ok set to false.
func BodyValue(body interface{}) (value ldvalue.Value, ok bool, err error) {
	if body == nil {
		return ldvalue.Null(), false, nil
	}
	if v, isValue := body.(ldvalue.Value); isValue {
		return v, !v.IsNull(), nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return ldvalue.Null(), false, fmt.Errorf("request body cannot be serialized as JSON: %w", err)
	}
	v := ldvalue.Parse(data)
	return v, !v.IsNull(), nil
}

func encodeQuery(rawQuery string, params []QueryParam) string {
	parts := make([]string, 0, len(params)+1)
	if rawQuery != "" {
		parts = append(parts, rawQuery)
	}
	for _, p := range params {
		parts = append(parts, url.QueryEscape(p.Key)+"="+url.QueryEscape(p.Value))
	}
	return strings.Join(parts, "&")
}

func encodeForm(body ldvalue.Value) (string, error) {
	if body.Type() != ldvalue.ObjectType {
		return "", fmt.Errorf("form-encoded body must be an object, got %s", body.Type())
	}
	values := make(url.Values)
	for _, key := range body.Keys() {
		v := body.GetByKey(key)
		switch v.Type() {
		case ldvalue.StringType:
			values.Add(key, v.StringValue())
		case ldvalue.ArrayType:
			for i := 0; i < v.Count(); i++ {
				values.Add(key, formScalar(v.GetByIndex(i)))
			}
		default:
			values.Add(key, formScalar(v))
		}
	}
	return values.Encode(), nil
}

func formScalar(v ldvalue.Value) string {
	if v.Type() == ldvalue.StringType {
		return v.StringValue()
	}
	return v.JSONString()
}
