package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxNodeIDLength bounds identifiers read from spreadsheets.
const maxNodeIDLength = 256

// ValidateNodeID validates the text form of a node identifier.
//
// Identifiers are written unquoted in s-expressions and list encodings, so
// the rules are:
//   - No empty identifiers
//   - No whitespace, control characters or parentheses
//   - Not the reserved forest head "blank"
//   - Maximum length of 256 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNode, "node id cannot be empty")
	}

	if len(id) > maxNodeIDLength {
		return New(ErrCodeInvalidNode, "node id too long (max %d characters)", maxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidNode, "node id %q contains whitespace or control characters", id)
		}
		if r == '(' || r == ')' {
			return New(ErrCodeInvalidNode, "node id %q contains parentheses", id)
		}
	}

	if id == "blank" {
		return New(ErrCodeInvalidNode, "node id %q is reserved", id)
	}

	return nil
}

// pathNameRegex matches names of paths in a path set.
var pathNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:/-]*$`)

// ValidatePathName validates the name of a path within a path set file.
// Names become cache scopes and URL segments.
func ValidatePathName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "path name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "path name too long (max 128 characters)")
	}

	if strings.Contains(name, "..") || strings.Contains(name, "//") {
		return New(ErrCodeInvalidInput, "path name contains invalid sequence: %q", name)
	}

	if !pathNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid path name: %q", name)
	}

	return nil
}

// curieRegex matches compact URIs such as "ilxtr:hasLayer".
var curieRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.-]*:[A-Za-z0-9_][A-Za-z0-9_.-]*$`)

// ValidateTerm validates a predicate term given as a compact URI.
func ValidateTerm(term string) error {
	if term == "" {
		return New(ErrCodeInvalidConfig, "term cannot be empty")
	}

	if !curieRegex.MatchString(term) {
		return New(ErrCodeInvalidConfig, "term must be a compact URI (prefix:name): %q", term)
	}

	return nil
}
