// Package oui maps the vendor prefix of a hardware address to the name of
// the organisation it was assigned to.
package oui

import (
	"strings"

	"github.com/projectdiscovery/lanscan/pkg/types"
)

// Table is an immutable prefix to vendor mapping. Prefixes are 6 lowercase
// hex digits. A Table is safe for concurrent use.
type Table struct {
	vendors map[string]string
}

// NewTable copies entries into a Table. Keys are normalized the same way
// hardware addresses are; keys that do not reduce to 6 hex digits and empty
// vendor names are dropped.
func NewTable(entries map[string]string) *Table {
	t := &Table{vendors: make(map[string]string, len(entries))}
	for prefix, vendor := range entries {
		t.add(prefix, vendor)
	}
	return t
}

func (t *Table) add(prefix, vendor string) {
	key, ok := normalizePrefix(prefix)
	vendor = strings.TrimSpace(vendor)
	if !ok || vendor == "" {
		return
	}
	t.vendors[key] = vendor
}

// Len returns the number of prefixes in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.vendors)
}

// Lookup returns the vendor registered for prefix.
func (t *Table) Lookup(prefix string) (string, bool) {
	if t == nil {
		return "", false
	}
	key, ok := normalizePrefix(prefix)
	if !ok {
		return "", false
	}
	vendor, ok := t.vendors[key]
	return vendor, ok
}

// Resolve returns the vendor of a canonical hardware address. Absent and
// invalid addresses never resolve.
func (t *Table) Resolve(hw types.HardwareAddress) (string, bool) {
	if !hw.Valid() {
		return "", false
	}
	return t.Lookup(hw.Prefix())
}

// Vendor normalizes raw and resolves it.
func (t *Table) Vendor(raw string) (string, bool) {
	return t.Resolve(types.NormalizeHardwareAddress(raw))
}

func normalizePrefix(prefix string) (string, bool) {
	var b strings.Builder
	b.Grow(6)
	for _, r := range strings.TrimSpace(prefix) {
		switch {
		case r == ':' || r == '-':
			continue
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f':
			b.WriteRune(r)
		case r >= 'A' && r <= 'F':
			b.WriteRune(r + ('a' - 'A'))
		default:
			return "", false
		}
	}
	if b.Len() != 6 {
		return "", false
	}
	return b.String(), true
}
