// Package fixture builds the input records that scenarios start from.
//
// A Provider is a static description of a record: some fields have fixed values, and some are
// generated each time the record is built. Every call to Build produces a new Fixture, so
// scenarios that run concurrently never share generated values such as email addresses.
package fixture

import (
	"sort"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Fixture is an immutable named record of field values.
type Fixture struct {
	name   string
	fields map[string]ldvalue.Value
}

// New creates a Fixture with the specified fields. The map is copied.
func New(name string, fields map[string]ldvalue.Value) Fixture {
	f := Fixture{name: name, fields: make(map[string]ldvalue.Value, len(fields))}
	for k, v := range fields {
		f.fields[k] = v
	}
	return f
}

func (f Fixture) Name() string {
	return f.name
}

// Get returns the value of a field, and false if there is no such field.
func (f Fixture) Get(field string) (ldvalue.Value, bool) {
	v, ok := f.fields[field]
	return v, ok
}

// String returns the value of a field as a string, or "" if it is missing or not a string.
func (f Fixture) String(field string) string {
	return f.fields[field].StringValue()
}

// Fields returns the field names in sorted order.
func (f Fixture) Fields() []string {
	ret := make([]string, 0, len(f.fields))
	for k := range f.fields {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Values returns a copy of all fields.
func (f Fixture) Values() map[string]ldvalue.Value {
	ret := make(map[string]ldvalue.Value, len(f.fields))
	for k, v := range f.fields {
		ret[k] = v
	}
	return ret
}

// With returns a copy of the Fixture with one field added or replaced.
func (f Fixture) With(field string, value ldvalue.Value) Fixture {
	ret := New(f.name, f.fields)
	ret.fields[field] = value
	return ret
}

// AsValue returns the whole record as a JSON object, suitable for use as a request body.
func (f Fixture) AsValue() ldvalue.Value {
	b := ldvalue.ObjectBuild()
	for _, k := range f.Fields() {
		b.Set(k, f.fields[k])
	}
	return b.Build()
}
