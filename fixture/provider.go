package fixture

import (
	"sync"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// PasswordMinLength is the length of generated passwords. It is above the minimum that the
// API under test accepts.
const PasswordMinLength = 15

// Generator produces random field values. Emails must be syntactically valid and unique
// within a test run; passwords must have exactly the requested length.
type Generator interface {
	Email() string
	Password(length int) string
}

// GenerateFunc computes a field value from a Generator.
type GenerateFunc func(Generator) ldvalue.Value

// Provider describes a fixture record and builds fresh instances of it.
type Provider struct {
	name      string
	generator Generator
	static    map[string]ldvalue.Value
	generated map[string]GenerateFunc
	lock      sync.Mutex
}

// NewProvider creates a Provider with no fields. If generator is nil, a FakeGenerator is used.
func NewProvider(name string, generator Generator) *Provider {
	if generator == nil {
		generator = NewFakeGenerator()
	}
	return &Provider{
		name:      name,
		generator: generator,
		static:    make(map[string]ldvalue.Value),
		generated: make(map[string]GenerateFunc),
	}
}

// NewUserProvider creates a Provider for registration payloads. The static fields usually come
// from a fixture file; email and password are always generated, overriding any static values.
func NewUserProvider(static map[string]ldvalue.Value, generator Generator) *Provider {
	p := NewProvider("user", generator)
	for k, v := range static {
		p.Static(k, v)
	}
	p.Generated("email", GeneratedEmail)
	p.Generated("password", GeneratedPassword(PasswordMinLength))
	return p
}

// Static defines a field with a fixed value. A generated field of the same name takes precedence.
func (p *Provider) Static(field string, value ldvalue.Value) *Provider {
	p.lock.Lock()
	p.static[field] = value
	p.lock.Unlock()
	return p
}

// Generated defines a field whose value is computed again on every Build.
func (p *Provider) Generated(field string, fn GenerateFunc) *Provider {
	p.lock.Lock()
	p.generated[field] = fn
	p.lock.Unlock()
	return p
}

// Build produces a new Fixture, generating fresh values for every generated field.
func (p *Provider) Build() Fixture {
	p.lock.Lock()
	defer p.lock.Unlock()
	fields := make(map[string]ldvalue.Value, len(p.static)+len(p.generated))
	for k, v := range p.static {
		fields[k] = v
	}
	for k, fn := range p.generated {
		fields[k] = fn(p.generator)
	}
	return Fixture{name: p.name, fields: fields}
}

func GeneratedEmail(g Generator) ldvalue.Value {
	return ldvalue.String(g.Email())
}

func GeneratedPassword(length int) GenerateFunc {
	return func(g Generator) ldvalue.Value {
		return ldvalue.String(g.Password(length))
	}
}
