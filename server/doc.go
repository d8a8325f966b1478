// Package server exposes a resolved operation set over HTTP using Gin, with
// h2c so HTTP/2 cleartext clients share the same port.
//
//	s := server.New(cfg, log)
//	s.ApplyMiddleware()
//	s.RegisterHealth("orders")
//	s.MountOperations(app, ops)
//	_ = s.Start(ctx)
//
// POST /operations/:name decodes the JSON body as the operation input and
// answers {"data": ...} on success. Failures are written as the AppError
// body with the error's HTTP status.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: X-Request-Id generation and propagation
//   - Tracing: an http.request span parenting the operation spans
//   - RequestLogger: request logging with status and duration
package server
