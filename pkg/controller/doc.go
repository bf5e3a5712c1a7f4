// Package controller contains the request pipeline and the HTTP helpers used by
// the API server.
//
// Pipeline stages:
//   - CORS: Advertises the cross-origin policy and answers preflights.
//   - DecodeBody: Parses JSON and url-encoded bodies into the request context.
//   - AccessLog: Logs timestamp, method and path before dispatch.
//   - Dispatch: Hands requests to the route group owning their prefix.
//
// ErrorResponder is the terminal stage turning any escaped error into a 500.
//
// Provided middlewares:
//   - WithLogger: Attaches a request-scoped logger and request ID to the context and logs access info.
//   - WithMetrics: Opens a server span and records request metrics.
//
// Provided helpers:
//   - PprofMux: Returns a ServeMux exposing net/http/pprof handlers.
package controller
