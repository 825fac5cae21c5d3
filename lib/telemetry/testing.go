package telemetry

import (
	"context"
	"sync"
	"testing"
)

var setupTestEnvironments = map[string]struct{}{}
var setupTestLock sync.Mutex

// SetupForTesting turns on verbose logging and any exporters configured by a
// telemetry.json5 for a test package, it is a no-op after the first call for
// a given serviceName.
func SetupForTesting(t testing.TB, serviceName string) func() {
	setupTestLock.Lock()
	_, setupAlready := setupTestEnvironments[serviceName]
	setupTestEnvironments[serviceName] = struct{}{}
	setupTestLock.Unlock()
	if setupAlready {
		return func() {}
	}

	InitSlog(true)
	tel, err := SetupFromEnv(context.Background(), serviceName)
	if err != nil {
		t.Fatal(err)
	}
	return func() {
		err := tel.Shutdown(context.Background())
		if err != nil {
			t.Fatal(err)
		}
	}
}
