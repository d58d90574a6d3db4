package errors

import (
	"errors"
	"fmt"
	"testing"
)

var errEmptyList = errors.New("empty list")

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		err      *Error
		str, msg string
	}{
		{
			err: New(ErrCodeInvalidNode, "node id %q contains parentheses", "a(b"),
			str: `INVALID_NODE: node id "a(b" contains parentheses`,
			msg: `node id "a(b" contains parentheses`,
		},
		{
			err: Wrap(ErrCodeMalformedInput, errEmptyList, "decode %s", "sst"),
			str: "MALFORMED_INPUT: decode sst: empty list",
			msg: "decode sst: empty list",
		},
	}
	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			if got := tt.err.Error(); got != tt.str {
				t.Errorf("Error() = %q, want %q", got, tt.str)
			}
			if got := UserMessage(tt.err); got != tt.msg {
				t.Errorf("UserMessage() = %q, want %q", got, tt.msg)
			}
		})
	}

	if got := UserMessage(errEmptyList); got != "empty list" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	err := fmt.Errorf("batch: %w", Wrap(ErrCodeMalformedInput, errEmptyList, "decode"))
	if !errors.Is(err, errEmptyList) {
		t.Error("errors.Is lost the sentinel through Wrap")
	}
	var e *Error
	if !errors.As(err, &e) || e.Cause != errEmptyList {
		t.Errorf("errors.As = %+v", e)
	}
}

func TestCodeLookup(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
	}{
		{"direct", New(ErrCodeDuplicateEdge, "a->b"), ErrCodeDuplicateEdge},
		{"outermost wins", Wrap(ErrCodeInvalidInput, New(ErrCodeInvalidConfig, "term"), "options"), ErrCodeInvalidInput},
		{"through fmt", fmt.Errorf("path sst: %w", New(ErrCodeUnresolvedAmbiguity, "b@")), ErrCodeUnresolvedAmbiguity},
		{"plain", errEmptyList, ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(%q) = false", tt.code)
			}
			if Is(tt.err, ErrCodeNotFound) {
				t.Error("Is(NOT_FOUND) = true")
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"malformed", New(ErrCodeMalformedInput, "x"), 400},
		{"invalid node", New(ErrCodeInvalidNode, "x"), 400},
		{"invalid format", New(ErrCodeInvalidFormat, "x"), 400},
		{"duplicate edge", New(ErrCodeDuplicateEdge, "x"), 422},
		{"ambiguity", New(ErrCodeUnresolvedAmbiguity, "x"), 422},
		{"not found", New(ErrCodeFileNotFound, "x"), 404},
		{"unsupported", New(ErrCodeUnsupported, "x"), 501},
		{"config", New(ErrCodeInvalidConfig, "x"), 500},
		{"wrapped", fmt.Errorf("outer: %w", New(ErrCodeDuplicateEdge, "x")), 422},
		{"plain", errors.New("boom"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}
