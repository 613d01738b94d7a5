package secret

import (
	"strings"
	"testing"
)

func TestMask(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "typical key", value: "AQ.Ab8RN6xxxxxxxxxxxxxxxxxxxx", want: "AQ.Ab8RN6x...***"},
		{name: "short", value: "short", want: "***"},
		{name: "empty", value: "", want: "***"},
		{name: "exactly visible length", value: "0123456789", want: "***"},
		{name: "one over visible length", value: "0123456789a", want: "0123456789...***"},
		{name: "multibyte counted in runes", value: "ééééééééééé", want: "éééééééééé...***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mask(tt.value); got != tt.want {
				t.Errorf("Mask(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestMaskN(t *testing.T) {
	tests := []struct {
		value   string
		visible int
		want    string
	}{
		{value: "abcdef", visible: 3, want: "abc...***"},
		{value: "abc", visible: 3, want: "***"},
		{value: "abc", visible: 0, want: "...***"},
		{value: "abc", visible: -5, want: "...***"},
		{value: "", visible: 0, want: "***"},
	}

	for _, tt := range tests {
		if got := MaskN(tt.value, tt.visible); got != tt.want {
			t.Errorf("MaskN(%q, %d) = %q, want %q", tt.value, tt.visible, got, tt.want)
		}
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "valid length 31", value: "AQ." + strings.Repeat("x", 28), want: true},
		{name: "valid length 30", value: "AQ." + strings.Repeat("x", 27), want: true},
		{name: "too short 29", value: "AQ." + strings.Repeat("x", 26), want: false},
		{name: "short", value: "AQ.short", want: false},
		{name: "missing prefix", value: "NOPREFIX" + strings.Repeat("x", 30), want: false},
		{name: "lowercase prefix", value: "aq." + strings.Repeat("x", 30), want: false},
		{name: "empty", value: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateFormat(tt.value); got != tt.want {
				t.Errorf("ValidateFormat(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("AQ.first")
	b := Fingerprint("AQ.second")

	if len(a) != fingerprintLen {
		t.Fatalf("len(Fingerprint()) = %d, want %d", len(a), fingerprintLen)
	}
	if a == b {
		t.Errorf("distinct values share fingerprint %q", a)
	}
	if a != Fingerprint("AQ.first") {
		t.Errorf("Fingerprint is not deterministic")
	}
	if strings.Contains(a, "AQ") {
		t.Errorf("Fingerprint leaks value: %q", a)
	}
	if Fingerprint("") != "" {
		t.Errorf("Fingerprint(\"\") = %q, want empty", Fingerprint(""))
	}
}

func TestConstantTimeCompare(t *testing.T) {
	if !ConstantTimeCompare("abc", "abc") {
		t.Error("equal strings compared unequal")
	}
	if ConstantTimeCompare("abc", "abd") {
		t.Error("different strings compared equal")
	}
	if ConstantTimeCompare("abc", "abcd") {
		t.Error("different lengths compared equal")
	}
}
