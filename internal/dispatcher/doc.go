// Package dispatcher routes classification requests over the current
// backend pool, times every attempt, and reports the measurements to the
// monitor without ever blocking the request path.
package dispatcher
