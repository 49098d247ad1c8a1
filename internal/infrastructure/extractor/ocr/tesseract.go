package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// TempStore writes uploads to disk for the tesseract CLI.
type TempStore interface {
	SaveTemp(ctx context.Context, ext string, data []byte) (string, func(), error)
}

type TesseractConfig struct {
	Binary      string
	Language    string
	TessdataDir string
}

// Tesseract runs the tesseract CLI twice: once for text, once in TSV mode for
// the mean word confidence.
type Tesseract struct {
	cfg     TesseractConfig
	runner  Runner
	scratch TempStore
}

func NewTesseract(cfg TesseractConfig, runner Runner, scratch TempStore) *Tesseract {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Tesseract{cfg: cfg, runner: runner, scratch: scratch}
}

func (t *Tesseract) Recognize(ctx context.Context, image []byte, ext string) (string, float64, error) {
	path, cleanup, err := t.scratch.SaveTemp(ctx, ext, image)
	if err != nil {
		return "", 0, fmt.Errorf("stage image: %w", err)
	}
	defer cleanup()

	out, stderr, err := t.runner.Run(ctx, t.cfg.Binary, t.args(path)...)
	if err != nil {
		return "", 0, fmt.Errorf("tesseract: %w: %s", err, truncate(strings.TrimSpace(string(stderr)), 512))
	}
	text := strings.TrimSpace(string(out))

	confidence, err := t.confidence(ctx, path)
	if err != nil {
		slog.Warn("ocr_confidence_unavailable", "error", err)
	}
	return text, confidence, nil
}

func (t *Tesseract) confidence(ctx context.Context, path string) (float64, error) {
	out, _, err := t.runner.Run(ctx, t.cfg.Binary, append(t.args(path), "tsv")...)
	if err != nil {
		return 0, fmt.Errorf("tesseract tsv: %w", err)
	}
	return MeanConfidence(string(out)), nil
}

func (t *Tesseract) args(path string) []string {
	args := []string{path, "stdout", "-l", t.cfg.Language}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	return args
}

// MeanConfidence averages the conf column of tesseract TSV output, skipping
// non-word rows (conf -1). Result is in [0, 100].
func MeanConfidence(tsv string) float64 {
	var sum, n float64
	confCol := -1
	for i, line := range strings.Split(tsv, "\n") {
		cols := strings.Split(strings.TrimRight(line, "\r"), "\t")
		if i == 0 {
			for j, c := range cols {
				if c == "conf" {
					confCol = j
				}
			}
			continue
		}
		if confCol < 0 || len(cols) <= confCol {
			continue
		}
		v, err := strconv.ParseFloat(cols[confCol], 64)
		if err != nil || v < 0 {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return min(sum/n, 100)
}
