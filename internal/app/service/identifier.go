package service

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	idTimeLayout       = "20060102150405"
	artifactTimeLayout = "20060102_150405"
	suffixLen          = 3
)

// Generator derives barcode identifiers and artifact names from the request
// time. Names repeated within the same second get a "_<n>" sequence suffix.
type Generator struct {
	mu     sync.Mutex
	latest int64
	issued map[string]issuedName
}

type issuedName struct {
	second int64
	count  int
}

func NewGenerator() *Generator {
	return &Generator{
		issued: make(map[string]issuedName),
	}
}

// Identifier returns UPPER(kind)_YYYYMMDDHHMMSS_ddd where ddd is derived
// from the first three characters of productID.
func (g *Generator) Identifier(now time.Time, kind, productID string) string {
	base := strings.ToUpper(kind) + "_" + now.Format(idTimeLayout) + "_" + productSuffix(productID)
	return g.unique(now, base)
}

// ArtifactName returns <kind>_YYYYMMDD_HHMMSS, without extension.
func (g *Generator) ArtifactName(now time.Time, kind string) string {
	return g.unique(now, kind+"_"+now.Format(artifactTimeLayout))
}

// productSuffix maps each of the first three characters to its code point
// mod 10. Shorter ids are right-padded with zeros.
func productSuffix(productID string) string {
	var b strings.Builder
	for _, r := range productID {
		if b.Len() == suffixLen {
			break
		}
		b.WriteByte(byte('0' + r%10))
	}
	for b.Len() < suffixLen {
		b.WriteByte('0')
	}
	return b.String()
}

func (g *Generator) unique(now time.Time, base string) string {
	sec := now.Unix()

	g.mu.Lock()
	defer g.mu.Unlock()

	if sec > g.latest {
		g.latest = sec
		g.prune()
	}

	prev, seen := g.issued[base]
	if !seen {
		g.issued[base] = issuedName{second: sec}
		return base
	}

	prev.count++
	g.issued[base] = prev
	return base + "_" + strconv.Itoa(prev.count)
}

// prune forgets names from seconds that can no longer be issued. One second
// of slack covers requests whose clock reading raced with a newer one.
func (g *Generator) prune() {
	for name, v := range g.issued {
		if v.second < g.latest-1 {
			delete(g.issued, name)
		}
	}
}
