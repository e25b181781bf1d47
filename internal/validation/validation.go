// Package validation contains the logic for validating
// request data.
//
// It uses the `validator` library to enforce rules defined in struct
// tags and converts failures into 422 errors the client can act on.
package validation
