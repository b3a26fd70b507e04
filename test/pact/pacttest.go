//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "ventrest-api"
	ConsumerName = "ventrest-web"

	StateCatalogBaseline = "catalog baseline"
	StateProductExists   = "product 7b1f0c1e exists"
	StateProductMissing  = "no product 00000000"
)

const (
	ExistingProductID = "7b1f0c1e-8a4e-4d55-9a67-3c2f1d9e5b10"
	MissingProductID  = "00000000-0000-0000-0000-0000000000aa"
	SupplierID        = "5d3c1a9b-2f4e-4b8a-8c6d-1e0f2a3b4c5d"
)

// ExampleProduct is the product seeded by the provider and expected by the consumer.
func ExampleProduct() map[string]any {
	return map[string]any{
		"id":         ExistingProductID,
		"supplierId": SupplierID,
		"name":       "Masala Peanuts",
		"price":      "120.00",
		"category":   "snacks",
		"stock":      40,
		"unit":       "kg",
		"status":     "active",
	}
}

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the web consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
