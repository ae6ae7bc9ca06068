package ocr

import (
	"context"
	"errors"
	"image"
	"testing"

	apperrors "github.com/screensentry/platform/internal/errors"
)

type mockEngine struct {
	fragments []Fragment
	err       error
}

func (m *mockEngine) Words(_ context.Context, _ []byte) ([]Fragment, error) {
	return m.fragments, m.err
}
func (m *mockEngine) Close() error { return nil }

type mockPrep struct {
	out    []byte
	err    error
	scale  float64
	called bool
}

func (m *mockPrep) Apply(img []byte) ([]byte, error) {
	m.called = true
	if m.err != nil {
		return nil, m.err
	}
	return m.out, nil
}

func (m *mockPrep) Scale() float64 {
	if m.scale == 0 {
		return 1.0
	}
	return m.scale
}

func TestExtractFiltersEmptyFragments(t *testing.T) {
	engine := &mockEngine{fragments: []Fragment{
		{Text: "YouTube", Confidence: 80, Box: image.Rect(10, 10, 160, 30)},
		{Text: "   ", Confidence: 90},
		{Text: "", Confidence: 95},
		{Text: "Premium", Confidence: 75},
	}}
	e := NewExtractor(engine, nil)

	got, err := e.Extract(context.Background(), []byte("frame"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Extract() returned %d fragments, want 2", len(got))
	}
	if got[0].Text != "YouTube" || got[1].Text != "Premium" {
		t.Errorf("Extract() = %v, want YouTube and Premium", got)
	}
}

func TestExtractFiltersNegativeConfidence(t *testing.T) {
	engine := &mockEngine{fragments: []Fragment{
		{Text: "noise", Confidence: -1},
		{Text: "signal", Confidence: 0},
	}}
	e := NewExtractor(engine, nil)

	got, err := e.Extract(context.Background(), nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(got) != 1 || got[0].Text != "signal" {
		t.Errorf("Extract() = %v, want only the zero-confidence fragment", got)
	}
}

func TestExtractClampsConfidence(t *testing.T) {
	engine := &mockEngine{fragments: []Fragment{{Text: "hot", Confidence: 103}}}
	e := NewExtractor(engine, nil)

	got, _ := e.Extract(context.Background(), nil)
	if got[0].Confidence != 100 {
		t.Errorf("Confidence = %d, want clamped to 100", got[0].Confidence)
	}
}

func TestExtractEngineErrorCode(t *testing.T) {
	e := NewExtractor(&mockEngine{err: errors.New("engine crashed")}, nil)

	_, err := e.Extract(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperrors.IsCode(err, apperrors.CodeOCRFailed) {
		t.Errorf("error code = %v, want OCR_FAILED", apperrors.CodeOf(err))
	}
}

func TestExtractUsesPreprocessor(t *testing.T) {
	engine := &mockEngine{}
	prep := &mockPrep{out: []byte("processed")}
	e := NewExtractor(engine, prep)

	if _, err := e.Extract(context.Background(), []byte("raw")); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !prep.called {
		t.Error("preprocessor should have been called")
	}
}

func TestExtractMapsBoxesBackFromScaledFrame(t *testing.T) {
	// The engine sees a 2x-upscaled frame, so its boxes come back in
	// scaled coordinates; the extractor must return screen coordinates.
	engine := &mockEngine{fragments: []Fragment{
		{Text: "YouTube", Confidence: 80, Box: image.Rect(200, 100, 520, 160)},
		{Text: "odd", Confidence: 70, Box: image.Rect(21, 9, 101, 49)},
	}}
	prep := &mockPrep{out: []byte("upscaled"), scale: 2.0}
	e := NewExtractor(engine, prep)

	got, err := e.Extract(context.Background(), []byte("raw"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if want := image.Rect(100, 50, 260, 80); got[0].Box != want {
		t.Errorf("Box = %v, want %v", got[0].Box, want)
	}
	if want := image.Rect(11, 5, 51, 25); got[1].Box != want {
		t.Errorf("Box = %v, want rounded %v", got[1].Box, want)
	}
}

func TestExtractKeepsBoxesWhenPreprocessFails(t *testing.T) {
	// On fallback the engine sees the raw frame; boxes must pass through.
	engine := &mockEngine{fragments: []Fragment{
		{Text: "ok", Confidence: 50, Box: image.Rect(10, 10, 60, 30)},
	}}
	prep := &mockPrep{err: errors.New("decode failed"), scale: 2.0}
	e := NewExtractor(engine, prep)

	got, err := e.Extract(context.Background(), []byte("raw"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if want := image.Rect(10, 10, 60, 30); got[0].Box != want {
		t.Errorf("Box = %v, want unmodified %v", got[0].Box, want)
	}
}

func TestExtractFallsBackOnPreprocessError(t *testing.T) {
	engine := &mockEngine{fragments: []Fragment{{Text: "ok", Confidence: 50}}}
	prep := &mockPrep{err: errors.New("decode failed")}
	e := NewExtractor(engine, prep)

	got, err := e.Extract(context.Background(), []byte("raw"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Extract() returned %d fragments, want 1 from raw frame", len(got))
	}
}

func TestFragmentEmpty(t *testing.T) {
	if !(Fragment{Text: " \t"}).Empty() {
		t.Error("whitespace-only fragment should be empty")
	}
	if (Fragment{Text: "x"}).Empty() {
		t.Error("non-blank fragment should not be empty")
	}
}
