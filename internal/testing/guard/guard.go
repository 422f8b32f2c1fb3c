// Package guard forces test mode for any test binary that imports it.
package guard

import "os"

func init() {
	if os.Getenv("ORDELIX_TEST_MODE") == "" {
		_ = os.Setenv("ORDELIX_TEST_MODE", "1")
	}
	if os.Getenv("STORE_DRIVER") == "" {
		_ = os.Setenv("STORE_DRIVER", "memory")
	}
}
