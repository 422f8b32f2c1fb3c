package app

import (
	"os"
	"strconv"
	"sync"
)

const testModeEnv = "ORDELIX_TEST_MODE"

var (
	testModeMu     sync.RWMutex
	testModeLoaded bool
	testMode       bool
)

// InTestMode reports whether binaries should skip runtime side effects such as
// opening listeners or connecting to Redis.
func InTestMode() bool {
	testModeMu.RLock()
	loaded, value := testModeLoaded, testMode
	testModeMu.RUnlock()
	if loaded {
		return value
	}
	return RefreshTestMode()
}

// RefreshTestMode re-reads ORDELIX_TEST_MODE and returns the new value.
func RefreshTestMode() bool {
	enabled, err := strconv.ParseBool(os.Getenv(testModeEnv))
	if err != nil {
		enabled = false
	}
	testModeMu.Lock()
	testModeLoaded, testMode = true, enabled
	testModeMu.Unlock()
	return enabled
}
