package scenario

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/launchdarkly/posts-contract-tests/client"
	"github.com/launchdarkly/posts-contract-tests/expect"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Placeholders have the forms {{name}}, {{name|default}}, and {{env.NAME}}.
var placeholderPattern = regexp.MustCompile(`\{\{([^{}]*)\}\}`)

const envPrefix = "env."

type reference struct {
	name       string
	defaultVal string
	hasDefault bool
}

func (r reference) isEnv() bool {
	return strings.HasPrefix(r.name, envPrefix)
}

// needsValue reports whether the reference can only be resolved from the scenario's values.
func (r reference) needsValue() bool {
	return !r.hasDefault && !r.isEnv()
}

func parseReference(expr string) (reference, error) {
	name, def, hasDefault := expr, "", false
	if i := strings.Index(expr, "|"); i >= 0 {
		name, def, hasDefault = expr[:i], strings.TrimSpace(expr[i+1:]), true
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return reference{}, fmt.Errorf("empty placeholder {{%s}}", expr)
	}
	return reference{name: name, defaultVal: def, hasDefault: hasDefault}, nil
}

func referencesIn(s string) ([]reference, error) {
	var ret []reference
	for _, m := range placeholderPattern.FindAllStringSubmatch(s, -1) {
		ref, err := parseReference(m[1])
		if err != nil {
			return nil, err
		}
		ret = append(ret, ref)
	}
	if strings.Contains(placeholderPattern.ReplaceAllString(s, ""), "{{") {
		return nil, fmt.Errorf("unterminated placeholder in %q", s)
	}
	return ret, nil
}

func referencesInValue(v ldvalue.Value) ([]reference, error) {
	switch v.Type() {
	case ldvalue.StringType:
		return referencesIn(v.StringValue())
	case ldvalue.ArrayType, ldvalue.ObjectType:
		var ret []reference
		var err error
		forEachChild(v, func(_ string, child ldvalue.Value) bool {
			var refs []reference
			refs, err = referencesInValue(child)
			ret = append(ret, refs...)
			return err == nil
		})
		return ret, err
	}
	return nil, nil
}

func forEachChild(v ldvalue.Value, fn func(key string, child ldvalue.Value) bool) {
	switch v.Type() {
	case ldvalue.ArrayType:
		for i := 0; i < v.Count(); i++ {
			if !fn("", v.GetByIndex(i)) {
				return
			}
		}
	case ldvalue.ObjectType:
		for _, k := range v.Keys() {
			if !fn(k, v.GetByKey(k)) {
				return
			}
		}
	}
}

// Dependencies returns the names of the values that the step's request and expectations refer
// to, not counting placeholders that have a default or that read the environment.
func (s Step) Dependencies() ([]string, error) {
	refs, err := s.references()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var ret []string
	for _, r := range refs {
		if r.needsValue() && !seen[r.name] {
			seen[r.name] = true
			ret = append(ret, r.name)
		}
	}
	sort.Strings(ret)
	return ret, nil
}

func (s Step) references() ([]reference, error) {
	var all []reference
	add := func(refs []reference, err error) error {
		all = append(all, refs...)
		return err
	}
	if err := add(referencesIn(s.Request.Path)); err != nil {
		return nil, err
	}
	for k, v := range s.Request.Headers {
		for _, text := range []string{k, v} {
			if err := add(referencesIn(text)); err != nil {
				return nil, err
			}
		}
	}
	for _, q := range s.Request.Query {
		for _, text := range []string{q.Key, q.Value} {
			if err := add(referencesIn(text)); err != nil {
				return nil, err
			}
		}
	}
	body, _, err := client.BodyValue(s.Request.Body)
	if err != nil {
		return nil, err
	}
	if err := add(referencesInValue(body)); err != nil {
		return nil, err
	}
	for _, e := range s.Expect {
		for _, text := range []string{e.Header, e.Substring, e.Path} {
			if err := add(referencesIn(text)); err != nil {
				return nil, err
			}
		}
		if err := add(referencesInValue(e.Value)); err != nil {
			return nil, err
		}
	}
	for _, ex := range s.Extract {
		if err := add(referencesIn(ex.Path)); err != nil {
			return nil, err
		}
	}
	return all, nil
}

type values map[string]ldvalue.Value

func (vs values) resolve(ref reference) (ldvalue.Value, error) {
	if ref.isEnv() {
		if v, ok := os.LookupEnv(strings.TrimPrefix(ref.name, envPrefix)); ok {
			return ldvalue.String(v), nil
		}
	} else if v, ok := vs[ref.name]; ok {
		return v, nil
	}
	if ref.hasDefault {
		return ldvalue.String(ref.defaultVal), nil
	}
	if ref.isEnv() {
		return ldvalue.String(""), nil
	}
	return ldvalue.Null(), fmt.Errorf("no value for placeholder {{%s}}", ref.name)
}

func (vs values) expandString(s string) (string, error) {
	return vs.expandEscaped(s, nil)
}

// expandPath substitutes placeholders in a request path. Substituted text is escaped, so that a
// value containing "/", "?" or "#" stays within its own path segment or query value.
func (vs values) expandPath(path string) (string, error) {
	route, query, hasQuery := strings.Cut(path, "?")
	route, err := vs.expandEscaped(route, url.PathEscape)
	if err != nil || !hasQuery {
		return route, err
	}
	query, err = vs.expandEscaped(query, url.QueryEscape)
	return route + "?" + query, err
}

func (vs values) expandEscaped(s string, escape func(string) string) (string, error) {
	var firstErr error
	out := placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		ref, err := parseReference(match[2 : len(match)-2])
		if err == nil {
			var v ldvalue.Value
			if v, err = vs.resolve(ref); err == nil {
				if escape != nil {
					return escape(textOf(v))
				}
				return textOf(v)
			}
		}
		if firstErr == nil {
			firstErr = err
		}
		return match
	})
	return out, firstErr
}

// expandValue substitutes placeholders in every string within v. A string that consists of
// nothing but one placeholder is replaced by the referenced value itself, keeping its JSON type.
func (vs values) expandValue(v ldvalue.Value) (ldvalue.Value, error) {
	switch v.Type() {
	case ldvalue.StringType:
		s := v.StringValue()
		if expr, ok := wholePlaceholder(s); ok {
			ref, err := parseReference(expr)
			if err != nil {
				return v, err
			}
			return vs.resolve(ref)
		}
		expanded, err := vs.expandString(s)
		return ldvalue.String(expanded), err
	case ldvalue.ArrayType:
		b := ldvalue.ArrayBuild()
		var err error
		forEachChild(v, func(_ string, child ldvalue.Value) bool {
			var c ldvalue.Value
			c, err = vs.expandValue(child)
			b.Add(c)
			return err == nil
		})
		return b.Build(), err
	case ldvalue.ObjectType:
		b := ldvalue.ObjectBuild()
		var err error
		forEachChild(v, func(key string, child ldvalue.Value) bool {
			var c ldvalue.Value
			c, err = vs.expandValue(child)
			b.Set(key, c)
			return err == nil
		})
		return b.Build(), err
	}
	return v, nil
}

// wholePlaceholder returns the expression inside s if s consists of exactly one placeholder.
func wholePlaceholder(s string) (string, bool) {
	loc := placeholderPattern.FindStringSubmatchIndex(s)
	if loc == nil || loc[0] != 0 || loc[1] != len(s) {
		return "", false
	}
	return s[loc[2]:loc[3]], true
}

func (vs values) expandRequest(spec client.RequestSpec) (client.RequestSpec, error) {
	ret := spec
	var err error
	if ret.Path, err = vs.expandPath(spec.Path); err != nil {
		return ret, err
	}
	if spec.Headers != nil {
		ret.Headers = make(map[string]string, len(spec.Headers))
		for k, v := range spec.Headers {
			name, err := vs.expandString(k)
			if err != nil {
				return ret, err
			}
			if ret.Headers[name], err = vs.expandString(v); err != nil {
				return ret, err
			}
		}
	}
	if spec.Query != nil {
		ret.Query = make([]client.QueryParam, len(spec.Query))
		for i, q := range spec.Query {
			if ret.Query[i].Key, err = vs.expandString(q.Key); err != nil {
				return ret, err
			}
			if ret.Query[i].Value, err = vs.expandString(q.Value); err != nil {
				return ret, err
			}
		}
	}
	body, hasBody, err := client.BodyValue(spec.Body)
	if err != nil {
		return ret, err
	}
	if hasBody {
		if ret.Body, err = vs.expandValue(body); err != nil {
			return ret, err
		}
	}
	return ret, nil
}

func (vs values) expandExpectations(exps []expect.Expectation) ([]expect.Expectation, error) {
	ret := make([]expect.Expectation, len(exps))
	for i, e := range exps {
		ret[i] = e
		var err error
		if ret[i].Header, err = vs.expandString(e.Header); err != nil {
			return nil, err
		}
		if ret[i].Substring, err = vs.expandString(e.Substring); err != nil {
			return nil, err
		}
		if ret[i].Path, err = vs.expandString(e.Path); err != nil {
			return nil, err
		}
		if ret[i].Value, err = vs.expandValue(e.Value); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

func (vs values) expandExtracts(extracts []Extract) ([]Extract, error) {
	ret := make([]Extract, len(extracts))
	for i, ex := range extracts {
		ret[i] = ex
		var err error
		if ret[i].Path, err = vs.expandString(ex.Path); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

func textOf(v ldvalue.Value) string {
	if v.Type() == ldvalue.StringType {
		return v.StringValue()
	}
	return v.JSONString()
}

var errNoSteps = errors.New("scenario has no steps")
