// Package errors provides structured error types for the kernel host.
// Errors include context, causes, and actionable suggestions.
//
// The simulation core itself never fails: capacity exhaustion, eviction and
// genome misses are logged and absorbed. Errors here describe bad input from
// the host side (configuration, shell commands, API requests, task
// assignments) and I/O failures around it.
package errors

import (
	"fmt"
	"sort"
	"strings"
)

// Category classifies errors for consistent handling and display.
type Category string

const (
	CategoryConfig     Category = "config"     // Configuration loading/parsing errors
	CategoryEntity     Category = "entity"     // Entity lookup and population errors
	CategoryTask       Category = "task"       // Task assignment errors
	CategoryVocabulary Category = "vocabulary" // Symbol registry errors
	CategoryCommand    Category = "command"    // Shell command errors
	CategoryValidation Category = "validation" // Input validation errors
	CategoryNetwork    Category = "network"    // Network/connectivity errors
	CategoryIO         Category = "io"         // File/IO errors
	CategoryInternal   Category = "internal"   // Internal/unexpected errors
)

// HoloError is a structured error with context and suggestions.
type HoloError struct {
	// Code is a unique identifier for this error type (e.g., "ENTITY_NOT_FOUND")
	Code string

	// Category classifies this error for consistent handling
	Category Category

	// Message is the primary error message describing what went wrong
	Message string

	// Context provides additional key-value details about the error
	Context map[string]string

	// Cause is the underlying error that triggered this error
	Cause error

	// Suggestions are remediation steps for the user
	Suggestions []string
}

// Error implements the error interface.
func (e *HoloError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain inspection.
func (e *HoloError) Unwrap() error {
	return e.Cause
}

// Is reports whether e matches target for errors.Is() checks.
// Two HoloErrors match if they have the same Code.
func (e *HoloError) Is(target error) bool {
	if t, ok := target.(*HoloError); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new HoloError with the given code, category, and message.
func New(code string, category Category, message string) *HoloError {
	return &HoloError{
		Code:     code,
		Category: category,
		Message:  message,
		Context:  make(map[string]string),
	}
}

// Wrap wraps an existing error with a HoloError.
func Wrap(err error, code string, category Category, message string) *HoloError {
	return New(code, category, message).WithCause(err)
}

// WithContext adds a context key-value pair and returns the error for chaining.
func (e *HoloError) WithContext(key, value string) *HoloError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithCause wraps an underlying error and returns the error for chaining.
func (e *HoloError) WithCause(cause error) *HoloError {
	e.Cause = cause
	return e
}

// WithSuggestion adds a remediation suggestion and returns the error for chaining.
func (e *HoloError) WithSuggestion(suggestion string) *HoloError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// HasContext returns true if the error has context information.
func (e *HoloError) HasContext() bool {
	return len(e.Context) > 0
}

// HasSuggestions returns true if the error has suggestions.
func (e *HoloError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

// ContextString returns the context entries as sorted key="value" pairs.
func (e *HoloError) ContextString() string {
	if len(e.Context) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, e.Context[k]))
	}
	return strings.Join(parts, ", ")
}

// AsHoloError attempts to convert an error to a HoloError.
func AsHoloError(err error) (*HoloError, bool) {
	if err == nil {
		return nil, false
	}
	if he, ok := err.(*HoloError); ok {
		return he, true
	}
	return nil, false
}

// IsCategory checks if an error is a HoloError with the given category.
func IsCategory(err error, category Category) bool {
	if he, ok := AsHoloError(err); ok {
		return he.Category == category
	}
	return false
}

// IsCode checks if an error is a HoloError with the given code.
func IsCode(err error, code string) bool {
	if he, ok := AsHoloError(err); ok {
		return he.Code == code
	}
	return false
}
