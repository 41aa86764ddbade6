// Package openapi carries the HTTP API contract and validates requests
// against it.
package openapi

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
)

//go:embed openapi.yaml
var Spec []byte

// Validator checks incoming requests against the embedded document.
type Validator struct {
	router routers.Router
}

func Load() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(Spec)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return doc, nil
}

func NewValidator() (*Validator, error) {
	doc, err := Load()
	if err != nil {
		return nil, err
	}
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}
	return &Validator{router: router}, nil
}

// ErrNoRoute is returned for requests outside the documented API.
var ErrNoRoute = errors.New("route not documented")

// ErrMethodNotAllowed is returned when the path exists with other methods.
var ErrMethodNotAllowed = errors.New("method not allowed")

// Validate returns ErrNoRoute, ErrMethodNotAllowed, or a request
// validation error.
func (v *Validator) Validate(r *http.Request) error {
	route, pathParams, err := v.router.FindRoute(r)
	if err != nil {
		if isMethodNotAllowed(err) {
			return ErrMethodNotAllowed
		}
		return ErrNoRoute
	}

	input := &openapi3filter.RequestValidationInput{
		Request:    r,
		PathParams: pathParams,
		Route:      route,
		Options: &openapi3filter.Options{
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	}
	return openapi3filter.ValidateRequest(r.Context(), input)
}

func isMethodNotAllowed(err error) bool {
	if errors.Is(err, routers.ErrMethodNotAllowed) {
		return true
	}
	var routeErr *routers.RouteError
	return errors.As(err, &routeErr) && routeErr.Reason == routers.ErrMethodNotAllowed.Error()
}
