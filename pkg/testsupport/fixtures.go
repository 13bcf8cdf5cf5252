// Package testsupport bundles schema and payload fixtures plus golden-file
// helpers shared by the package tests.
package testsupport

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/options"
	"github.com/goliatone/go-dynform/pkg/schema"
)

//go:embed testdata/*.json
var fixtures embed.FS

const (
	// WorkPackageSchema is a form schema with scalar, formattable, inline and
	// remote relation attributes plus attribute groups.
	WorkPackageSchema = "work_package_schema.json"
	// WorkPackagePayload is a resource payload matching WorkPackageSchema.
	WorkPackagePayload = "work_package_payload.json"
)

// Fixture returns the raw bytes of an embedded fixture.
func Fixture(t testing.TB, name string) []byte {
	t.Helper()

	data, err := fixtures.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("testsupport: read fixture %s: %v", name, err)
	}
	return data
}

// LoadSchema parses an embedded schema fixture.
func LoadSchema(t testing.TB, name string) schema.Document {
	t.Helper()

	doc, err := schema.Parse(Fixture(t, name))
	if err != nil {
		t.Fatalf("testsupport: parse schema %s: %v", name, err)
	}
	return doc
}

// LoadPayload decodes an embedded payload fixture.
func LoadPayload(t testing.TB, name string) map[string]any {
	t.Helper()

	var out map[string]any
	if err := gojson.Unmarshal(Fixture(t, name), &out); err != nil {
		t.Fatalf("testsupport: decode payload %s: %v", name, err)
	}
	return out
}

// StaticFetcher serves fixed collections per href and counts the calls it
// receives. It is safe for concurrent use.
type StaticFetcher struct {
	mu          sync.Mutex
	collections map[string]options.Collection
	calls       map[string]int
}

// NewStaticFetcher returns a fetcher serving collections keyed by href.
func NewStaticFetcher(collections map[string]options.Collection) *StaticFetcher {
	return &StaticFetcher{collections: collections, calls: map[string]int{}}
}

// Fetch implements options.Fetcher.
func (f *StaticFetcher) Fetch(ctx context.Context, href string, _ options.Filter) (options.Collection, error) {
	if err := ctx.Err(); err != nil {
		return options.Collection{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[href]++
	collection, ok := f.collections[href]
	if !ok {
		return options.Collection{}, fmt.Errorf("testsupport: no collection for %s", href)
	}
	return collection, nil
}

// Calls reports how many times href was fetched.
func (f *StaticFetcher) Calls(href string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[href]
}

// Complete builds a collection whose count equals its total.
func Complete(values ...schema.Value) options.Collection {
	n := len(values)
	return options.Collection{Elements: values, Count: &n, Total: &n}
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
func WriteGolden(t testing.TB, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := gojson.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any, opts ...cmp.Option) string {
	return cmp.Diff(want, got, opts...)
}
