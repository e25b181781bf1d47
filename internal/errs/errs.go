// Package errs defines the error shapes returned to API clients.
//
// Every failure that reaches the global error handler is turned into an
// HTTPError so clients always receive the same JSON structure.
package errs
