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
	ProviderName = "fiscal-api"
	ConsumerName = "fiscal-backoffice"

	StateManifestExists   = "delivery manifest with id 101 exists"
	StateManifestMissing  = "no manifest with id 404"
	StateReturnsBaseline  = "no return links exist"
	StateProcessingErrors = "processing errors are recorded"
)

const (
	ExistingManifestID int64 = 101
	MissingManifestID  int64 = 404
	ExampleCompanyID   int64 = 7

	ReturnShipmentNumber       = "RET-1001"
	ReturnOrderID        int64 = 5001

	PendingErrorOrderID int64 = 6001
)

const (
	exampleManifestName = "MF-PACT-101"
	exampleDocumentDate = "2024-06-12"
	exampleActor        = "pact-operator"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the back-office consumer.
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

// ExampleManifestPayload is the manifest the provider seeds for the existing-manifest state.
func ExampleManifestPayload() map[string]any {
	return map[string]any{
		"id":           ExistingManifestID,
		"name":         exampleManifestName,
		"kind":         "delivery",
		"status":       "draft",
		"companyId":    ExampleCompanyID,
		"documentDate": exampleDocumentDate,
	}
}

// ExampleLinkRequest is the return link request sent by the consumer.
func ExampleLinkRequest() map[string]any {
	return map[string]any{
		"returnShipmentNumber": ReturnShipmentNumber,
		"orderId":              ReturnOrderID,
		"actor":                exampleActor,
	}
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
