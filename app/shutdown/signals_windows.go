//go:build windows

package shutdown

import (
	"os"
	"syscall"
)

// Console close and Ctrl+Break are delivered as SIGTERM by the runtime.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
