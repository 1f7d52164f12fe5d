package pipeline

import "testing"

func TestNormalizeAppliesDefaults(t *testing.T) {
	req := Request{Query: "  taylor   swift ", Recipient: " a@b.co "}.Normalize()
	if req.Query != "taylor swift" || req.Recipient != "a@b.co" {
		t.Fatalf("unexpected normalized request %+v", req)
	}
	if req.Count != DefaultCount || req.ClipSeconds != DefaultClipSeconds {
		t.Fatalf("expected defaults, got %+v", req)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected normalized request to validate: %v", err)
	}
}

func TestValidEmail(t *testing.T) {
	cases := map[string]bool{
		"user@example.com":       true,
		"first.last@mail.co.uk":  true,
		"under_score@x-y.org":    true,
		"no-at-sign.example.com": false,
		"user@nodot":             false,
		"user name@example.com":  false,
		"":                       false,
	}
	for address, want := range cases {
		if got := ValidEmail(address); got != want {
			t.Errorf("ValidEmail(%q) = %v, want %v", address, got, want)
		}
	}
}

func TestValidateBoundaries(t *testing.T) {
	for _, count := range []int{MinCount, MaxCount} {
		for _, clip := range []int{MinClipSeconds, MaxClipSeconds} {
			req := Request{Query: "x", Count: count, ClipSeconds: clip}
			if err := req.Validate(); err != nil {
				t.Fatalf("count=%d clip=%d should be valid: %v", count, clip, err)
			}
		}
	}
}
