// Package validator collects field-level problems with configuration and
// request bodies.
package validator

import (
	"errors"
	"sort"
	"strings"
)

// Validator maps a field name to the first problem recorded for it.
type Validator struct {
	Errors map[string]string
}

func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid reports whether no problem has been recorded.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError records message for key unless key already has one.
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}

// Check records message for key when ok is false.
func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// Problems renders every recorded problem with format, ordered by key.
// format receives the key and the message.
func (v *Validator) Problems(format func(key, message string) string) []string {
	keys := make([]string, 0, len(v.Errors))
	for key := range v.Errors {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	problems := make([]string, 0, len(keys))
	for _, key := range keys {
		problems = append(problems, format(key, v.Errors[key]))
	}
	return problems
}

// Err returns nil when valid, otherwise an error listing every problem
// after prefix, separated by semicolons.
func (v *Validator) Err(prefix string, format func(key, message string) string) error {
	if v.Valid() {
		return nil
	}
	return errors.New(prefix + strings.Join(v.Problems(format), "; "))
}

// In reports whether value is one of list.
func In(value string, list ...string) bool {
	for i := range list {
		if value == list[i] {
			return true
		}
	}
	return false
}
