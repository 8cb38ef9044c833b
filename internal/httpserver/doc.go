// Package httpserver provides a validated HTTP server wrapper with
// graceful shutdown, shared by the monitor and dispatcher binaries.
package httpserver
