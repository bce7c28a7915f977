package config

import (
	"os"

	"github.com/banshee-data/fieldmap/internal/monitoring"
)

// AbortSession terminates the run. Tests replace it.
var AbortSession = os.Exit

// Abort reports a fatal field table error for parameter key and ends the
// session with code 1.
func Abort(key, path string, err error) {
	monitoring.Logf("exiting due to a serious error in magnetic field setup")
	monitoring.Logf("Parameter %s", key)
	monitoring.Logf("references file %s: %v", path, err)
	AbortSession(1)
}
