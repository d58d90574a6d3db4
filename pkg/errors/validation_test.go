package errors

import (
	"strings"
	"testing"
)

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"curie", "UBERON:0001950", false},
		{"region with layer", "UBERON:0001950@UBERON:0005394", false},
		{"plain", "a", false},
		{"unicode", "région", false},

		{"empty", "", true},
		{"too long", strings.Repeat("x", 300), true},
		{"space", "a b", true},
		{"tab", "a\tb", true},
		{"newline", "a\nb", true},
		{"open paren", "a(b", true},
		{"close paren", "a)", true},
		{"null byte", "a\x00", true},
		{"reserved", "blank", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && GetCode(err) != ErrCodeInvalidNode {
				t.Errorf("ValidateNodeID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidNode)
			}
		})
	}
}

func TestValidatePathName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "sst-l5", false},
		{"curie", "ilxtr:neuron-type-1", false},
		{"nested", "aacar/1", false},
		{"dotted", "v1.2", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 200), true},
		{"traversal", "a/../b", true},
		{"double slash", "a//b", true},
		{"leading dash", "-a", true},
		{"space", "a b", true},
		{"query", "a?b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePathName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTerm(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"ilxtr:hasLayer", false},
		{"ex:layer_of", false},
		{"rdf:first", false},

		{"", true},
		{"hasLayer", true},
		{":x", true},
		{"ex:", true},
		{"ex:has layer", true},
		{"1x:y", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateTerm(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTerm(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
