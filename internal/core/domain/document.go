package domain

import (
	"path/filepath"
	"strings"
)

// UploadedDocument is the immutable input of one analysis pass. It is never persisted.
type UploadedDocument struct {
	Filename     string
	MimeType     string
	AnalysisType string
	Data         []byte
}

// Extension returns the lower-cased file extension including the dot.
func (d UploadedDocument) Extension() string {
	return strings.ToLower(filepath.Ext(d.Filename))
}

type ExtractionMethod string

const (
	ExtractionMethodDirect   ExtractionMethod = "direct"
	ExtractionMethodPDF      ExtractionMethod = "pdf-scrape"
	ExtractionMethodPDFParse ExtractionMethod = "pdf-parse"
	ExtractionMethodOCR      ExtractionMethod = "image-ocr"
	ExtractionMethodNone     ExtractionMethod = "none"
	ExtractionMethodProvided ExtractionMethod = "provided"
)

type ExtractionResult struct {
	Text          string           `json:"-"`
	Confidence    float64          `json:"confidence"`
	ElapsedMillis int64            `json:"elapsed_ms"`
	Method        ExtractionMethod `json:"method"`
	TextLength    int              `json:"text_length"`
}

type DocumentSection struct {
	Label      string  `json:"label"`
	Excerpt    string  `json:"excerpt"`
	Confidence float64 `json:"confidence"`
}

type HiddenClauseCandidate struct {
	Pattern string `json:"pattern"`
	Match   string `json:"match"`
	Excerpt string `json:"excerpt"`
}

// Annotation is the output of the heuristic pass over extracted text.
type Annotation struct {
	Sections      []DocumentSection       `json:"sections"`
	HiddenClauses []HiddenClauseCandidate `json:"hidden_clauses"`
}

var supportedExtensions = map[string]struct{}{
	".pdf": {}, ".txt": {}, ".doc": {}, ".docx": {},
	".jpg": {}, ".jpeg": {}, ".png": {},
}

// IsSupportedUpload accepts PDF, plain text and JPEG/PNG images by MIME type,
// or any of the known extensions when the MIME type is generic.
func IsSupportedUpload(filename, mimeType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch mt {
	case "application/pdf", "text/plain", "image/jpeg", "image/jpg", "image/png":
		return true
	}
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}
