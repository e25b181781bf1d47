// Package handler is the first layer after the router.
//
// It parses requests, validates input through the validation
// package and calls the service layer.
package handler
