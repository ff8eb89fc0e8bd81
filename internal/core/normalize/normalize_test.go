package normalize

import (
	"testing"

	perr "vassist/internal/platform/errors"
)

// Test table covers each stage and combined pipelines.
func TestNormalize_Table(t *testing.T) {
	n := New("en")

	tests := []struct {
		name   string
		in     string
		locale string
		out    string
	}{
		{
			name: "identity ascii",
			in:   "hello world",
			out:  "hello world",
		},
		{
			name: "utf8 repair drops invalid bytes",
			in:   string([]byte{'r', 'e', 0xff, 'm', 'i', 'n', 'd', 0x80, ' ', 'm', 'e'}),
			out:  "remind me",
		},
		{
			name: "lower casing",
			in:   "Remind Me To CALL Mom",
			out:  "remind me to call mom",
		},
		{
			name: "remove zero-widths",
			in:   "wea​ther to‍day", // ZERO WIDTH SPACE + ZERO WIDTH JOINER
			out:  "weather today",
		},
		{
			name: "accents survive",
			in:   "Café at noon",
			out:  "café at noon",
		},
		{
			name: "width fold fullwidth",
			in:   "ＷＥＡＴＨＥＲ in paris",
			out:  "weather in paris",
		},
		{
			name: "nfkc ligature",
			in:   "oﬃce meeting",
			out:  "office meeting",
		},
		{
			name: "collapse whitespace",
			in:   "set\t\ta\nreminder   please",
			out:  "set a reminder please",
		},
		{
			name:   "turkish dotted i",
			in:     "IKINCI",
			locale: "tr",
			out:    "ıkıncı",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := n.Normalize(tc.in, tc.locale)
			if err != nil {
				t.Fatalf("Normalize(%q) error: %v", tc.in, err)
			}
			if got != tc.out {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.out)
			}
			// Idempotence check: normalize again should be identical
			got2, err := n.Normalize(got, tc.locale)
			if err != nil {
				t.Fatalf("second Normalize(%q) error: %v", got, err)
			}
			if got2 != got {
				t.Fatalf("Normalize not idempotent: %q -> %q", got, got2)
			}
		})
	}
}

func TestNormalize_RejectsEmptyAndBinary(t *testing.T) {
	n := New("en")

	cases := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"whitespace only", " \t\n "},
		{"control garbage", "\x01\x02\x03\x04\x05\x06\x07\x08"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := n.Normalize(tc.in, "")
			if err == nil {
				t.Fatalf("Normalize(%q) expected error", tc.in)
			}
			if !perr.IsCode(err, perr.ErrorCodeInvalidInput) {
				t.Fatalf("Normalize(%q) code = %v, want invalid input", tc.in, perr.CodeOf(err))
			}
		})
	}
}

func TestCollapseSpaces(t *testing.T) {
	in := " \t a \n b   c \r\n "
	want := "a b c"
	got := collapseSpaces(in)
	if got != want {
		t.Fatalf("collapseSpaces(%q) = %q, want %q", in, got, want)
	}
}
