package util

import "testing"

func TestSanitizeFileNameRejectsTraversal(t *testing.T) {
	if _, err := SanitizeFileName("../etc/passwd"); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
	got, err := SanitizeFileName(" plans/plan.pdf ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "plans_plan.pdf" {
		t.Fatalf("expected plans_plan.pdf, got %q", got)
	}
}

func TestHeaderSafeName(t *testing.T) {
	cases := map[string]string{
		"Bäckerei Müller GmbH": "B_ckerei_M_ller_GmbH",
		"  Café \"Sonne\"  ":    "Caf_Sonne",
		"abc-123":               "abc-123",
		"///":                   "",
	}
	for in, want := range cases {
		if got := HeaderSafeName(in); got != want {
			t.Fatalf("HeaderSafeName(%q) = %q, want %q", in, got, want)
		}
	}
}
