package langhint

import "testing"

func TestDetect_Table(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code string
		ok   bool
	}{
		{"english stopwords", "remind me to call mom at the office", "en", true},
		{"spanish stopwords", "hola que hora es para mañana", "es", true},
		{"german stopwords", "ich möchte bitte morgen einen termin", "de", true},
		{"french stopwords", "je ne veux pas une réunion demain", "fr", true},
		{"japanese kana", "あした雨が降りますか", "ja", true},
		{"korean hangul", "내일 날씨 어때", "ko", true},
		{"chinese han", "明天天气怎么样", "zh", true},
		{"arabic", "ما هو الطقس غدا", "ar", true},
		{"greek", "τι καιρό θα κάνει αύριο", "el", true},
		{"cyrillic", "какая завтра погода", "ru", true},
		{"no letters", "12345 !!!", "", false},
		{"latin no stopword hits", "zzz qqq xxx", "", false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			code, ok := Detect(tc.in)
			if ok != tc.ok || code != tc.code {
				t.Fatalf("Detect(%q) = (%q, %v), want (%q, %v)", tc.in, code, ok, tc.code, tc.ok)
			}
		})
	}
}
