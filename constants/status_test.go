package constants

import "testing"

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in     string
		want   InvoiceStatus
		wantOK bool
	}{
		{in: "PROCESSING", want: StatusProcessing, wantOK: true},
		{in: "COMPLETED", want: StatusCompleted, wantOK: true},
		{in: "FAILED", want: StatusFailed, wantOK: true},
		{in: "completed", wantOK: false},
		{in: "SHIPPED", wantOK: false},
		{in: "", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseStatus(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, %v", tt.in, got, ok)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	if StatusProcessing.IsTerminal() {
		t.Error("PROCESSING must not be terminal")
	}
	if !StatusCompleted.IsTerminal() || !StatusFailed.IsTerminal() {
		t.Error("COMPLETED and FAILED must be terminal")
	}
}

func TestIsAllowedExt(t *testing.T) {
	tests := []struct {
		ext  string
		want bool
	}{
		{ext: ".pdf", want: true},
		{ext: "pdf", want: true},
		{ext: ".PDF", want: true},
		{ext: ".txt", want: false},
		{ext: "", want: false},
	}
	for _, tt := range tests {
		if got := IsAllowedExt(tt.ext); got != tt.want {
			t.Errorf("IsAllowedExt(%q) = %v, want %v", tt.ext, got, tt.want)
		}
	}
}
