// Package cache persists fetched payloads keyed by a request fingerprint.
package cache

import (
	"sort"
	"strings"
)

const keySeparator = "_"

// Key builds the fingerprint for an API request. Each parameter becomes
// "name_value", the list is sorted and joined, and the base endpoint is
// prepended, so any ordering of the same parameters yields the same key.
// Values are used verbatim: "Titanic" and "titanic" are different keys.
func Key(base string, params map[string]string) string {
	parts := make([]string, 0, len(params))
	for name, value := range params {
		parts = append(parts, name+keySeparator+value)
	}
	sort.Strings(parts)
	return base + keySeparator + strings.Join(parts, keySeparator)
}

// PageKey is the fingerprint of a page scrape, which is the URL itself.
func PageKey(url string) string {
	return url
}
