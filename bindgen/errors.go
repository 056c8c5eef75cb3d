package bindgen

import (
	"fmt"
)

// DanglingAliasError indicates a method alias was provided for a signature which no function in the contract ABI has.
type DanglingAliasError struct {
	// Signature is the alias key that did not match any function.
	Signature string
}

// Error returns the error message string, implementing the `error` interface.
func (e *DanglingAliasError) Error() string {
	return fmt.Sprintf("a method alias for '%s' was specified but no function with that signature exists", e.Signature)
}

// InvalidAliasError indicates a method alias is not usable as a Go method name on the generated types.
type InvalidAliasError struct {
	// Signature is the function signature the alias was provided for.
	Signature string

	// Alias is the rejected identifier.
	Alias string
}

// Error returns the error message string, implementing the `error` interface.
func (e *InvalidAliasError) Error() string {
	return fmt.Sprintf("the method alias '%s' for '%s' is not a valid identifier for a generated method", e.Alias, e.Signature)
}

// ParamDirection describes whether a function parameter is an input or an output.
type ParamDirection string

const (
	// ParamDirectionInput indicates a function input parameter.
	ParamDirectionInput ParamDirection = "input"
	// ParamDirectionOutput indicates a function output parameter.
	ParamDirectionOutput ParamDirection = "output"
)

// TypeMappingError indicates a function parameter's ABI type could not be translated into a Go type.
type TypeMappingError struct {
	// Signature is the signature of the function declaring the parameter.
	Signature string

	// Direction is whether the parameter is an input or an output.
	Direction ParamDirection

	// Position is the zero-based index of the parameter within its direction.
	Position int

	// Type is the ABI type string of the parameter.
	Type string

	// Err is the underlying mapping failure.
	Err error
}

// Error returns the error message string, implementing the `error` interface.
func (e *TypeMappingError) Error() string {
	return fmt.Sprintf("error expanding function '%s': %s %d of type '%s': %v", e.Signature, e.Direction, e.Position, e.Type, e.Err)
}

// Unwrap returns the underlying mapping failure.
func (e *TypeMappingError) Unwrap() error {
	return e.Err
}

// DuplicateIdentifierError indicates two functions resolved to the same generated method name.
type DuplicateIdentifierError struct {
	// Identifier is the colliding method name.
	Identifier string

	// First is the signature of the function which claimed the identifier first.
	First string

	// Second is the signature of the function which collided with it.
	Second string
}

// Error returns the error message string, implementing the `error` interface.
func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("functions '%s' and '%s' both resolve to the method name '%s', use a method alias to rename one of them",
		e.First, e.Second, e.Identifier)
}

// InternalError indicates the generator produced output it could not render or format. Valid ABI input never
// produces it; it means the type mapper, identifier resolver and templates disagree.
type InternalError struct {
	// Err is the underlying rendering or formatting failure.
	Err error
}

// Error returns the error message string, implementing the `error` interface.
func (e *InternalError) Error() string {
	return fmt.Sprintf("internal binding generation error: %v", e.Err)
}

// Unwrap returns the underlying rendering or formatting failure.
func (e *InternalError) Unwrap() error {
	return e.Err
}

// InvalidContractNameError indicates no Go type name could be derived from a contract name.
type InvalidContractNameError struct {
	// Name is the rejected contract name.
	Name string
}

// Error returns the error message string, implementing the `error` interface.
func (e *InvalidContractNameError) Error() string {
	return fmt.Sprintf("cannot derive a type name from the contract name '%s'", e.Name)
}

// InvalidPackageError indicates the package name of a generated file is not a valid Go package name.
type InvalidPackageError struct {
	// Package is the rejected package name.
	Package string
}

// Error returns the error message string, implementing the `error` interface.
func (e *InvalidPackageError) Error() string {
	return fmt.Sprintf("'%s' is not a valid package name", e.Package)
}
