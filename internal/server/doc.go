// Package server implements the HTTP and WebSocket surface of scoreline.
//
// A Server wires the match store and mutation service to a chi router and a
// Hub. The router exposes the mutation API under /api, the push channel at
// /ws, and the control and overlay pages. The Hub keeps the set of connected
// subscribers and fans every state change out to them, one goroutine pair
// per connection.
//
// The implementation is organized into specialized files for configuration,
// hub management, clients, routing and HTTP handlers.
package server
