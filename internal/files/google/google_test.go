package google

import (
	"testing"

	gdrive "google.golang.org/api/drive/v3"
)

func TestSanitizeID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1aBcDeF", "1aBcDeF"},
		{`1abc' or '1'='1`, "1abc or 1=1"},
		{`x"y\z`, "xyz"},
	}
	for _, tc := range cases {
		if got := sanitizeID(tc.in); got != tc.want {
			t.Errorf("sanitizeID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRefsFromList(t *testing.T) {
	refs := refsFromList([]*gdrive.File{
		{Id: "f1", Name: "Rechnung_001_Test.pdf", MimeType: "application/pdf", WebViewLink: "https://drive.google.com/file/d/f1", Size: 1234},
	})
	if len(refs) != 1 {
		t.Fatalf("expected 1 ref, got %d", len(refs))
	}
	if refs[0].ID != "f1" || refs[0].Size != 1234 {
		t.Fatalf("unexpected ref: %+v", refs[0])
	}
}
