package say

import (
	"testing"

	"github.com/dgnsrekt/readaloud/internal/speech"
)

func TestParseVoices(t *testing.T) {
	out := []byte(`Alex                en_US    # Most people recognize me by my voice.
Amélie              fr_CA    # Bonjour, je m’appelle Amélie.
Eddy (English (US)) en_US    # Hello! My name is Eddy.
Kyoko               ja_JP    # こんにちは、私の名前はKyokoです。
Yuna                ko_KR    # 안녕하세요. 제 이름은 유나입니다.
Zarvox              en_US    # That looks like a peaceful planet.

not a voice line
`)

	want := []speech.Voice{
		{Name: "Alex", Language: "en-US"},
		{Name: "Amélie", Language: "fr-CA"},
		{Name: "Eddy (English (US))", Language: "en-US"},
		{Name: "Kyoko", Language: "ja-JP"},
		{Name: "Yuna", Language: "ko-KR"},
		{Name: "Zarvox", Language: "en-US"},
	}

	got := ParseVoices(out)
	if len(got) != len(want) {
		t.Fatalf("expected %d voices, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("voice %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestParseVoicesEmpty(t *testing.T) {
	if got := ParseVoices(nil); len(got) != 0 {
		t.Errorf("expected no voices, got %+v", got)
	}
}
