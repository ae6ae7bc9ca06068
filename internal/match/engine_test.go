package match

import (
	"image"
	"testing"

	"github.com/screensentry/platform/internal/ocr"
)

func frag(text string, conf int) ocr.Fragment {
	return ocr.Fragment{Text: text, Confidence: conf, Box: image.Rect(10, 10, 160, 30)}
}

func TestFindThresholdIsHardFilter(t *testing.T) {
	fragments := []ocr.Fragment{frag("youtube", 29), frag("youtube", 30)}
	targets := []Target{{Pattern: "youtube", Note: "video"}}

	matches := Find(fragments, targets, ModeExact, 30)

	if len(matches) != 1 {
		t.Fatalf("Find() = %d matches, want 1", len(matches))
	}
	if matches[0].Confidence != 30 {
		t.Errorf("Confidence = %d, want 30", matches[0].Confidence)
	}
}

func TestFindExactMode(t *testing.T) {
	targets := []Target{{Pattern: "youtube", Note: "video"}}

	tests := []struct {
		text string
		want bool
	}{
		{"YouTube", true},
		{"YOUTUBE", true},
		{"YouTube Premium", false},
		{"YouTub", false},
	}
	for _, tt := range tests {
		matches := Find([]ocr.Fragment{frag(tt.text, 80)}, targets, ModeExact, 30)
		if got := len(matches) == 1; got != tt.want {
			t.Errorf("Exact %q matched = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestFindContainsModeIsSymmetric(t *testing.T) {
	// Fragment contains pattern.
	m1 := Find([]ocr.Fragment{frag("YouTube Premium", 80)},
		[]Target{{Pattern: "youtube", Note: "video"}}, ModeContains, 30)
	// Pattern contains fragment.
	m2 := Find([]ocr.Fragment{frag("Tube", 80)},
		[]Target{{Pattern: "youtube premium", Note: "video"}}, ModeContains, 30)

	if len(m1) != 1 {
		t.Error("fragment-contains-pattern should match")
	}
	if len(m2) != 1 {
		t.Error("pattern-contains-fragment should match")
	}
}

func TestFindFuzzyMode(t *testing.T) {
	targets := []Target{{Pattern: "youtube", Note: "video"}}

	if len(Find([]ocr.Fragment{frag("YouTub", 80)}, targets, ModeFuzzy, 30)) != 1 {
		t.Error("one dropped character should still fuzzy-match")
	}
	if len(Find([]ocr.Fragment{frag("xyz", 80)}, targets, ModeFuzzy, 30)) != 0 {
		t.Error("unrelated text should not fuzzy-match")
	}
}

func TestFindEmptyTargetSet(t *testing.T) {
	matches := Find([]ocr.Fragment{frag("anything", 90)}, nil, ModeContains, 0)
	if matches != nil {
		t.Errorf("Find() with empty targets = %v, want nil", matches)
	}
}

func TestFindMultipleTargetsPerFragment(t *testing.T) {
	targets := []Target{
		{Pattern: "you", Note: "first"},
		{Pattern: "tube", Note: "second"},
	}
	matches := Find([]ocr.Fragment{frag("YouTube", 80)}, targets, ModeContains, 30)

	if len(matches) != 2 {
		t.Fatalf("Find() = %d matches, want 2 (no dedup)", len(matches))
	}
	if matches[0].Note != "first" || matches[1].Note != "second" {
		t.Errorf("notes = %q, %q", matches[0].Note, matches[1].Note)
	}
}

func TestFindDuplicateFragmentsIndependent(t *testing.T) {
	a := ocr.Fragment{Text: "youtube", Confidence: 80, Box: image.Rect(0, 0, 100, 20)}
	b := ocr.Fragment{Text: "youtube", Confidence: 80, Box: image.Rect(0, 500, 100, 520)}
	targets := []Target{{Pattern: "youtube", Note: "video"}}

	matches := Find([]ocr.Fragment{a, b}, targets, ModeExact, 30)

	if len(matches) != 2 {
		t.Fatalf("Find() = %d matches, want 2", len(matches))
	}
	if matches[0].Fragment.Box == matches[1].Fragment.Box {
		t.Error("duplicate fragments should keep their own geometry")
	}
}

func TestFindSkipsBlankFragments(t *testing.T) {
	matches := Find([]ocr.Fragment{frag("   ", 99)},
		[]Target{{Pattern: "", Note: "empty"}}, ModeContains, 0)
	if len(matches) != 0 {
		t.Errorf("blank fragment produced %d matches, want 0", len(matches))
	}
}

func TestFindEndToEndContainsScenario(t *testing.T) {
	fragments := []ocr.Fragment{{
		Text:       "YouTube Premium",
		Confidence: 80,
		Box:        image.Rect(10, 10, 160, 30),
	}}
	targets := []Target{{Pattern: "youtube", Note: "video"}}

	matches := Find(fragments, targets, ModeContains, 30)

	if len(matches) != 1 {
		t.Fatalf("Find() = %d matches, want 1", len(matches))
	}
	m := matches[0]
	if m.Note != "video" {
		t.Errorf("Note = %q, want %q", m.Note, "video")
	}
	if m.ModeLabel != "Contains" {
		t.Errorf("ModeLabel = %q, want %q", m.ModeLabel, "Contains")
	}
	if m.Confidence != 80 {
		t.Errorf("Confidence = %d, want 80", m.Confidence)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"exact", ModeExact, true},
		{"Contains", ModeContains, true},
		{"FUZZY", ModeFuzzy, true},
		{"regex", ModeFuzzy, false},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseMode(%q) error = %v, want ok=%v", tt.in, err, tt.ok)
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewTargetNormalizes(t *testing.T) {
	tgt := NewTarget("  YouTube ", " video ")
	if tgt.Pattern != "youtube" {
		t.Errorf("Pattern = %q, want %q", tgt.Pattern, "youtube")
	}
	if tgt.Note != "video" {
		t.Errorf("Note = %q, want %q", tgt.Note, "video")
	}
}
