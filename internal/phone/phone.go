// Package phone validates and normalizes North American phone numbers into
// matching keys.
package phone

import (
	"strconv"
	"strings"
	"sync"
)

// StripNonNumeric removes every character that is not an ASCII digit.
func StripNonNumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Normalizer validates and normalizes phone numbers. Validation results are
// memoized by raw input; the cache never changes results and can be cleared
// with ClearCache. A Normalizer is safe for concurrent use.
type Normalizer struct {
	mu    sync.RWMutex
	cache map[string]bool
	limit int
}

// DefaultCacheSize bounds the validation cache when no size is given.
const DefaultCacheSize = 10000

// NewNormalizer creates a Normalizer whose cache holds at most size entries.
// A size of 0 uses DefaultCacheSize; a negative size disables caching.
func NewNormalizer(size int) *Normalizer {
	if size == 0 {
		size = DefaultCacheSize
	}
	return &Normalizer{cache: make(map[string]bool), limit: size}
}

// IsValid reports whether raw contains exactly 10 digits and starts with an
// assigned area code.
func (n *Normalizer) IsValid(raw string) bool {
	if raw == "" {
		return false
	}
	if n.limit > 0 {
		n.mu.RLock()
		valid, ok := n.cache[raw]
		n.mu.RUnlock()
		if ok {
			return valid
		}
	}

	valid := validate(raw)

	if n.limit > 0 {
		n.mu.Lock()
		// Reset instead of evicting piecemeal; entries are cheap to recompute.
		if len(n.cache) >= n.limit {
			n.cache = make(map[string]bool)
		}
		n.cache[raw] = valid
		n.mu.Unlock()
	}
	return valid
}

func validate(raw string) bool {
	digits := StripNonNumeric(raw)
	if len(digits) != 10 {
		return false
	}
	code, err := strconv.Atoi(digits[:3])
	if err != nil {
		return false
	}
	return IsValidAreaCode(code)
}

// Normalize returns the matching key for raw, or "" and false if raw is not a
// valid number. With addCountryCode the 10-digit key is prefixed with "1".
func (n *Normalizer) Normalize(raw string, addCountryCode bool) (string, bool) {
	if !n.IsValid(raw) {
		return "", false
	}
	digits := StripNonNumeric(raw)
	if addCountryCode && !strings.HasPrefix(digits, "1") {
		digits = "1" + digits
	}
	return digits, true
}

// Key is Normalize with the country code, the form used for registry lookups.
func (n *Normalizer) Key(raw string) (string, bool) {
	return n.Normalize(raw, true)
}

// Match reports whether a and b normalize to the same number.
func (n *Normalizer) Match(a, b string) bool {
	ka, ok := n.Normalize(a, false)
	if !ok {
		return false
	}
	kb, ok := n.Normalize(b, false)
	if !ok {
		return false
	}
	return ka == kb
}

// CacheLen returns the number of memoized validations.
func (n *Normalizer) CacheLen() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.cache)
}

// ClearCache drops all memoized validations.
func (n *Normalizer) ClearCache() {
	n.mu.Lock()
	n.cache = make(map[string]bool)
	n.mu.Unlock()
}

// FormatDisplay renders a normalized key as (AAA) BBB-CCCC, or
// +1 (AAA) BBB-CCCC for 11-digit keys with a leading 1. Anything else is
// returned unchanged.
func FormatDisplay(key string) string {
	d := StripNonNumeric(key)
	switch {
	case len(d) == 10:
		return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
	case len(d) == 11 && d[0] == '1':
		return "+1 (" + d[1:4] + ") " + d[4:7] + "-" + d[7:]
	}
	return key
}
