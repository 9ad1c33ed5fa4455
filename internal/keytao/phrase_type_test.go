package keytao

import "testing"

func TestDetectPhraseType(t *testing.T) {
	cases := []struct {
		word, code, want string
	}{
		{"……", "uu", "Symbol"},
		{"！", ";a", "Symbol"},
		{"https://keytao.vercel.app", "ktao", "Link"},
		{"WWW.example.com", "ex", "Link"},
		{"hello", "hl", "English"},
		{"测", "ce", "Single"},
		{"の", "no", "Single"},
		{"测试", "ceshi", "Phrase"},
		{"", "ab", "Phrase"},
	}
	for _, c := range cases {
		if got := DetectPhraseType(c.word, c.code); got != c.want {
			t.Errorf("DetectPhraseType(%q, %q) = %q, want %q", c.word, c.code, got, c.want)
		}
	}
}
