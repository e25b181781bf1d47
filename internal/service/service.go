// Package service contains the business logic.
//
// It sits between the handler and repository layers. It receives
// validated input from handlers, borrows a database session for the
// unit of work and calls repository methods inside it.
package service
