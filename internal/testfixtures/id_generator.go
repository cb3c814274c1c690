package testfixtures

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// fixtureNamespace seeds the deterministic UUIDs produced by IDGenerator.
var fixtureNamespace = uuid.MustParse("6f1c6f0e-8a55-4c3b-9d8e-1a2b3c4d5e6f")

// IDGenerator yields predictable identifiers. Next gives readable ids such
// as "venue-001"; NextUUID gives stable UUIDs for code that parses them.
type IDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter int
}

// NewIDGenerator uses "id" when prefix is empty.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

func (g *IDGenerator) next() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return g.counter
}

func (g *IDGenerator) Next() string {
	n := g.next()
	return fmt.Sprintf("%s-%03d", g.prefix, n)
}

// NextUUID derives a version 5 UUID from the prefix and counter.
func (g *IDGenerator) NextUUID() string {
	n := g.next()
	return uuid.NewSHA1(fixtureNamespace, []byte(fmt.Sprintf("%s/%d", g.prefix, n))).String()
}

// NextFunc returns Next for injection.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return uuid.NewString
	}
	return g.Next
}

// Reset restarts the sequence.
func (g *IDGenerator) Reset() {
	g.mu.Lock()
	g.counter = 0
	g.mu.Unlock()
}
