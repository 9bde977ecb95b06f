package e2e

import (
	"os"
	"testing"
)

// brokerAddr returns the host[:port] of a live broker's management API, or
// skips the test. E2E tests run only when TOPOMQ_E2E_BROKER is set, e.g.
//
//	TOPOMQ_E2E_BROKER=localhost:15672 go test ./tests/e2e/...
func brokerAddr(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("TOPOMQ_E2E_BROKER")
	if addr == "" {
		t.Skip("TOPOMQ_E2E_BROKER not set, skipping e2e test")
	}
	return addr
}

func brokerCreds() (string, string) {
	user := os.Getenv("TOPOMQ_E2E_USER")
	if user == "" {
		user = "guest"
	}
	password := os.Getenv("TOPOMQ_E2E_PASSWORD")
	if password == "" {
		password = "guest"
	}
	return user, password
}
