// Package workers holds the long running goroutines of the server: the HTTP
// service and the pending operation reporter
package workers

import "sync/atomic"

var workerShutdown atomic.Bool

// Shutdown tells every worker loop to exit
func Shutdown() {
	workerShutdown.Store(true)
}

func stopping() bool {
	return workerShutdown.Load()
}
