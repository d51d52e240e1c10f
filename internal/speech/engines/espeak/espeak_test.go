package espeak

import "testing"

func TestParseVoices(t *testing.T) {
	out := []byte(`Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 2  en-gb           --/M      English_(Great_Britain) gmw/en            (en 2)
 2  en-us           --/M      English_(America)  gmw/en-US            (en 3)
 5  fr-fr           --/M      French_(France)    roa/fr               (fr 5)
`)

	tests := []struct {
		name, lang, id string
	}{
		{"Afrikaans", "af", "af"},
		{"English (Great Britain)", "en-gb", "en-gb"},
		{"English (America)", "en-us", "en-us"},
		{"French (France)", "fr-fr", "fr-fr"},
	}

	got := ParseVoices(out)
	if len(got) != len(tests) {
		t.Fatalf("expected %d entries, got %d: %+v", len(tests), len(got), got)
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := got[i]
			if e.Voice.Name != tt.name {
				t.Errorf("expected name %q, got %q", tt.name, e.Voice.Name)
			}
			if e.Voice.Language != tt.lang {
				t.Errorf("expected language %q, got %q", tt.lang, e.Voice.Language)
			}
			if e.Identifier != tt.id {
				t.Errorf("expected identifier %q, got %q", tt.id, e.Identifier)
			}
		})
	}
}

func TestParseVoicesSkipsShortLines(t *testing.T) {
	got := ParseVoices([]byte("Pty Language\n\n 5 af\n"))
	if len(got) != 0 {
		t.Errorf("expected no entries, got %+v", got)
	}
}
