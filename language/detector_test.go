package language

import "testing"

func TestDetect(t *testing.T) {
	t.Parallel()

	d := NewDetector(3, "")
	tests := []struct {
		name string
		text string
		code string
	}{
		{"plain english", "see you at the station tomorrow morning", English},
		{"devanagari", "यह बहुत अच्छा है", Hindi},
		{"romanized code-switch", "yaar yeh movie bahut acha hai", Hinglish},
		{"mixed script", "kya यह सच hai really", Hinglish},
		{"english with one loanword", "the par was three on that hole today friends", English},
		{"english heavy on articles", "the sooner the better we finish the report", English},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			code, conf := d.Detect(tt.text)
			if code != tt.code {
				t.Fatalf("code=%q (conf=%.2f), want %q", code, conf, tt.code)
			}
			if conf <= 0 || conf > 1 {
				t.Fatalf("conf=%v, want in (0,1]", conf)
			}
		})
	}
}

func TestDetect_ShortTextIsUnknown(t *testing.T) {
	t.Parallel()

	d := NewDetector(3, "")
	code, conf := d.Detect("ok")
	if code != Unknown || conf != 0 {
		t.Fatalf("got (%q, %v), want (unknown, 0)", code, conf)
	}
}

func TestDetect_HintFallback(t *testing.T) {
	t.Parallel()

	d := NewDetector(3, "en")
	code, conf := d.Detect("12345 6789")
	if code != English {
		t.Fatalf("code=%q, want hint fallback english", code)
	}
	if conf >= 0.5 {
		t.Fatalf("conf=%v, want low-confidence fallback", conf)
	}

	noHint := NewDetector(3, "")
	code, conf = noHint.Detect("12345 6789")
	if code != Unknown || conf != 0 {
		t.Fatalf("got (%q, %v), want (unknown, 0) without hint", code, conf)
	}
}

func TestParseHint(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{"en", English},
		{"English", English},
		{"hi", Hindi},
		{"hi-Latn", Hinglish},
		{"hinglish", Hinglish},
		{"", ""},
		{"??", ""},
	}
	for _, tt := range tests {
		if got := ParseHint(tt.in); got != tt.want {
			t.Fatalf("ParseHint(%q)=%q, want %q", tt.in, got, tt.want)
		}
	}
}
