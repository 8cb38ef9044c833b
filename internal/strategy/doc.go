// Package strategy implements the routing policies the dispatcher can use
// to pick a backend for each request. The selection policy is kept behind
// one interface so deterministic selectors can be substituted in tests.
package strategy
