package ocr

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/termlens/internal/core/domain"
)

type fakeRunner struct {
	calls [][]string
	text  string
	tsv   string
	err   error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.err != nil {
		return nil, []byte("read_params_file: Can't open eng"), f.err
	}
	if args[len(args)-1] == "tsv" {
		return []byte(f.tsv), nil, nil
	}
	return []byte(f.text), nil, nil
}

type fakeScratch struct {
	saved   int
	cleaned int
}

func (f *fakeScratch) SaveTemp(_ context.Context, ext string, _ []byte) (string, func(), error) {
	f.saved++
	return "/tmp/upload-1" + ext, func() { f.cleaned++ }, nil
}

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t100\t100\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t10\t10\t20\t10\t90.5\tLate\n" +
	"5\t1\t1\t1\t1\t2\t30\t10\t20\t10\t69.5\tfee\n"

func TestRecognizeReturnsTextAndMeanConfidence(t *testing.T) {
	runner := &fakeRunner{text: "Late fee\n", tsv: sampleTSV}
	scratch := &fakeScratch{}
	engine := NewTesseract(TesseractConfig{Language: "eng"}, runner, scratch)

	text, confidence, err := engine.Recognize(context.Background(), []byte("png"), ".png")
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if text != "Late fee" {
		t.Fatalf("unexpected text %q", text)
	}
	if confidence != 80 {
		t.Fatalf("expected confidence 80, got %v", confidence)
	}
	if len(runner.calls) != 2 || runner.calls[0][1] != "/tmp/upload-1.png" {
		t.Fatalf("unexpected calls %v", runner.calls)
	}
	if scratch.saved != 1 || scratch.cleaned != 1 {
		t.Fatalf("expected temp file to be cleaned up, saved=%d cleaned=%d", scratch.saved, scratch.cleaned)
	}
}

func TestExtractorMapsEngineFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 1")}
	scratch := &fakeScratch{}
	extractor := NewExtractor(NewTesseract(TesseractConfig{}, runner, scratch))

	_, err := extractor.Extract(context.Background(), domain.UploadedDocument{Filename: "scan.jpg", Data: []byte("x")})
	extractErr, ok := domain.AsExtractionError(err)
	if !ok || extractErr.Kind != domain.ExtractionOCRUnavailable {
		t.Fatalf("expected ocr_unavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "Can't open eng") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
	if scratch.cleaned != 1 {
		t.Fatalf("expected cleanup on failure")
	}
}

func TestExtractorWithoutEngine(t *testing.T) {
	_, err := NewExtractor(nil).Extract(context.Background(), domain.UploadedDocument{Filename: "scan.png"})
	extractErr, ok := domain.AsExtractionError(err)
	if !ok || extractErr.Kind != domain.ExtractionOCRUnavailable {
		t.Fatalf("expected ocr_unavailable, got %v", err)
	}
}

func TestMeanConfidenceWithoutWords(t *testing.T) {
	if got := MeanConfidence("level\tconf\ttext\n1\t-1\t\n"); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := MeanConfidence(""); got != 0 {
		t.Fatalf("expected 0 for empty output, got %v", got)
	}
}
