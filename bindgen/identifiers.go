package bindgen

import (
	"fmt"
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/crytic/medusa-geth/accounts/abi"
	"golang.org/x/exp/slices"
)

// reservedMethodNames are the method names the generated contract type declares itself. A function bound under one
// of these names would be silently shadowed by the contract type's own method.
var reservedMethodNames = map[string]bool{
	"Address":    true,
	"Fallback":   true,
	"Instance":   true,
	"Methods":    true,
	"Signatures": true,
}

// reservedParamNames are identifiers a generated accessor parameter must not take: Go keywords and predeclared
// identifiers, the receiver and locals of the accessor body, and the packages the generated file imports.
var reservedParamNames = map[string]bool{
	// keywords
	"break": true, "case": true, "chan": true, "const": true, "continue": true, "default": true, "defer": true,
	"else": true, "fallthrough": true, "for": true, "func": true, "go": true, "goto": true, "if": true,
	"import": true, "interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
	// predeclared
	"any": true, "append": true, "bool": true, "byte": true, "cap": true, "clear": true, "close": true,
	"comparable": true, "complex": true, "copy": true, "delete": true, "error": true, "false": true, "imag": true,
	"int": true, "iota": true, "len": true, "make": true, "max": true, "min": true, "new": true, "nil": true,
	"panic": true, "print": true, "println": true, "real": true, "recover": true, "rune": true, "string": true,
	"true": true, "uint": true, "uintptr": true,
	// generated accessor scope
	"m": true, "call": true, "err": true, "big": true, "common": true, "contract": true,
}

// ResolveIdentifiers returns the generated method name of every provided function, in the same order. A function
// whose signature has an entry in aliases takes the alias verbatim; otherwise the name is derived from its declared
// name. Every alias must be consumed: an alias for a signature that none of the functions has is an error.
//
// Distinct functions resolving to the same name (e.g. overloads) are not renamed here.
func ResolveIdentifiers(methods []abi.Method, aliases map[string]string) ([]string, error) {
	identifiers := make([]string, len(methods))
	seen := make(map[string]bool, len(methods))
	for i, method := range methods {
		signature := Signature(method)
		seen[signature] = true

		if alias, ok := aliases[signature]; ok {
			if !isValidMethodAlias(alias) {
				return nil, &InvalidAliasError{Signature: signature, Alias: alias}
			}
			identifiers[i] = alias
			continue
		}
		identifiers[i] = MethodIdentifier(method.RawName)
	}

	// Any alias whose signature was never seen is dangling. Report the lowest one so the error is deterministic.
	unused := make([]string, 0)
	for signature := range aliases {
		if !seen[signature] {
			unused = append(unused, signature)
		}
	}
	if len(unused) > 0 {
		slices.Sort(unused)
		return nil, &DanglingAliasError{Signature: unused[0]}
	}
	return identifiers, nil
}

// MethodIdentifier derives a generated method name from a declared function name: camel-cased and exported,
// stripped of characters Go identifiers cannot contain, prefixed when it would start with a digit, and suffixed with
// an underscore when it collides with a name the generated contract type reserves.
func MethodIdentifier(rawName string) string {
	name := capitalise(sanitizeIdentifier(abi.ToCamelCase(rawName)))
	if name == "" {
		return "Method"
	}
	// A leading digit, or a letter without an upper case, would leave the method unexported.
	if !token.IsExported(name) {
		name = "M" + name
	}
	if reservedMethodNames[name] {
		name += "_"
	}
	return name
}

// inputName derives a generated parameter name from a declared input name. Unnamed inputs are named after their
// position.
func inputName(position int, rawName string) string {
	name := decapitalise(sanitizeIdentifier(abi.ToCamelCase(rawName)))
	if name == "" {
		return fmt.Sprintf("arg%d", position)
	}
	if !isLetter(name) {
		name = "arg" + name
	}
	if reservedParamNames[name] {
		name += "_"
	}
	return name
}

// isValidMethodAlias returns whether an alias can be used verbatim as a generated method name. Aliases must be
// exported, which also keeps them clear of the unexported fields of the generated types.
func isValidMethodAlias(alias string) bool {
	return token.IsIdentifier(alias) && token.IsExported(alias) && !reservedMethodNames[alias]
}

// sanitizeIdentifier removes every rune which cannot appear in a Go identifier (e.g. `$`, valid in Solidity).
func sanitizeIdentifier(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, name)
}

// isLetter returns whether the first rune of a non-empty string is a letter.
func isLetter(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r)
}

// capitalise upper-cases the first rune of a string.
func capitalise(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// decapitalise lower-cases the first rune of a string.
func decapitalise(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
