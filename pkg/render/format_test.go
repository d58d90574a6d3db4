package render

import "testing"

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"dot", "svg", "png"}); err != nil {
		t.Errorf("ValidateFormats() error = %v", err)
	}
	if err := ValidateFormats([]string{"svg", "pdf"}); err == nil {
		t.Error("ValidateFormats() accepted pdf")
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		FormatSVG: "image/svg+xml",
		FormatPNG: "image/png",
		FormatDOT: "text/vnd.graphviz; charset=utf-8",
	}
	for format, want := range tests {
		if got := ContentType(format); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", format, got, want)
		}
	}
}
