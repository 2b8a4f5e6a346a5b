// Package timeouts defines shared timeout constants used by the admin process.
// Centralizing these values keeps server and client settings discoverable.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// Introspect caps a single token introspection call to the auth service.
const Introspect = 5 * time.Second
