package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"moviecache/cache"
)

// fakeAcquirer serves payloads by fingerprint and records every request
type fakeAcquirer struct {
	payloads map[string]string
	requests []string
}

func newFakeAcquirer() *fakeAcquirer {
	return &fakeAcquirer{payloads: map[string]string{}}
}

func (f *fakeAcquirer) Acquire(_ context.Context, base string, params map[string]string) (string, error) {
	return f.get(cache.Key(base, params))
}

func (f *fakeAcquirer) Scrape(_ context.Context, pageURL string) (string, error) {
	return f.get(cache.PageKey(pageURL))
}

func (f *fakeAcquirer) get(key string) (string, error) {
	f.requests = append(f.requests, key)
	payload, ok := f.payloads[key]
	if !ok {
		return "", errors.New("no payload for " + key)
	}
	return payload, nil
}

func readFixture(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(b)
}
