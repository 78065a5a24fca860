package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrCartEmpty     = errors.New("there's nothing in your cart at the moment")
	ErrOrderNotFound = errors.New("order not found")
)

// ValidationError carries per-field messages for checkout/profile form
// input. Validation failures are the one class of error surfaced to the
// shopper with specifics.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid fields: %s", strings.Join(names, ", "))
}
