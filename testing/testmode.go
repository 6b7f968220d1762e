// Package testing switches the dashboard into test mode for any test binary
// that imports it.
package testing

import "os"

func init() {
	_ = os.Setenv("ADMIN_TEST_MODE", "1")
}
