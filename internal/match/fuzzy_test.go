package match

import "testing"

func TestSimilarityIdentity(t *testing.T) {
	for _, s := range []string{"", "a", "youtube", "hello world"} {
		if got := Similarity(s, s); got != 1.0 {
			t.Errorf("Similarity(%q, %q) = %v, want 1.0", s, s, got)
		}
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"youtube", "youtub"},
		{"tesseract", "tesseracl"},
		{"abc", "xyz"},
		{"", "abc"},
	}
	for _, p := range pairs {
		ab, ba := Similarity(p[0], p[1]), Similarity(p[1], p[0])
		if ab != ba {
			t.Errorf("Similarity(%q,%q)=%v != Similarity(%q,%q)=%v", p[0], p[1], ab, p[1], p[0], ba)
		}
	}
}

func TestSimilarityDroppedCharacter(t *testing.T) {
	got := Similarity("youtube", "youtub")
	want := 2.0 * 6.0 / 13.0
	if got < want-1e-9 || got > want+1e-9 {
		t.Errorf("Similarity = %v, want %v", got, want)
	}
	if got < FuzzyThreshold {
		t.Errorf("Similarity = %v, should clear the fuzzy threshold %v", got, FuzzyThreshold)
	}
}

func TestSimilarityUnrelated(t *testing.T) {
	if got := Similarity("youtube", "xyz"); got >= FuzzyThreshold {
		t.Errorf("Similarity = %v, want below %v", got, FuzzyThreshold)
	}
}

func TestSimilarityDisjoint(t *testing.T) {
	if got := Similarity("abc", "def"); got != 0 {
		t.Errorf("Similarity = %v, want 0", got)
	}
}

func TestSimilarityRecursesAroundLongestBlock(t *testing.T) {
	// Longest block "bcd" plus the "a" match to its left.
	got := Similarity("abcd", "axbcd")
	want := 2.0 * 4.0 / 9.0
	if got < want-1e-9 || got > want+1e-9 {
		t.Errorf("Similarity = %v, want %v", got, want)
	}
}

func TestLongestCommonSubstring(t *testing.T) {
	ai, bi, size := longestCommonSubstring([]rune("screen"), []rune("green"))
	if size != 4 {
		t.Fatalf("size = %d, want 4 (%q)", size, "reen")
	}
	if string([]rune("screen")[ai:ai+size]) != "reen" || string([]rune("green")[bi:bi+size]) != "reen" {
		t.Errorf("block offsets ai=%d bi=%d do not point at %q", ai, bi, "reen")
	}
}
