package fixture

import (
	"fmt"
	"strings"
	"sync"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// FakeGenerator produces realistic-looking random values. Its emails have a UUID-derived
// suffix in the local part, so two of them collide only if two random UUIDs do.
type FakeGenerator struct {
	faker *gofakeit.Faker
	lock  sync.Mutex
}

func NewFakeGenerator() *FakeGenerator {
	return &FakeGenerator{faker: gofakeit.NewCrypto()}
}

func (g *FakeGenerator) Email() string {
	g.lock.Lock()
	user := strings.ToLower(g.faker.Username())
	domain := strings.ToLower(g.faker.DomainName())
	g.lock.Unlock()
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s.%s@%s", sanitizeLocalPart(user), suffix, domain)
}

func (g *FakeGenerator) Password(length int) string {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.faker.Password(true, true, true, false, false, length)
}

func sanitizeLocalPart(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}
