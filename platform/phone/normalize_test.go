package phone

import "testing"

func TestNormalizeE164FormatsValidUSNumbers(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"(212) 555-0123", "+12125550123"},
		{"212-555-0123", "+12125550123"},
		{"+1 212 555 0123", "+12125550123"},
	}

	for _, tc := range cases {
		if got := NormalizeE164(tc.input); got != tc.want {
			t.Fatalf("NormalizeE164(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestNormalizeE164ReturnsTrimmedInputOnParseFailure(t *testing.T) {
	if got := NormalizeE164("  not a number  "); got != "not a number" {
		t.Fatalf("NormalizeE164 = %q, want trimmed input", got)
	}
}

func TestDedupKeyStripsNonDigits(t *testing.T) {
	if got := DedupKey("(212) 555-0123"); got != "2125550123" {
		t.Fatalf("DedupKey = %q, want 2125550123", got)
	}
}

func TestDedupKeyKeepsTrailingTenDigits(t *testing.T) {
	if got := DedupKey("+1 212 555 0123"); got != "2125550123" {
		t.Fatalf("DedupKey = %q, want 2125550123", got)
	}
	if got := DedupKey("0012125550123"); got != "2125550123" {
		t.Fatalf("DedupKey = %q, want 2125550123", got)
	}
}

func TestDedupKeyEmptyOrDigitFreeInput(t *testing.T) {
	if got := DedupKey("  "); got != "" {
		t.Fatalf("DedupKey = %q, want empty", got)
	}
	if got := DedupKey("n/a"); got != "" {
		t.Fatalf("DedupKey = %q, want empty", got)
	}
}
