package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	apperrors "capychat/errors"

	"github.com/jdkato/prose/v2"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// TruncationMarker is appended when a transcript was shortened.
const TruncationMarker = "\n\n[... transcript truncated ...]"

// Upload formats accepted for transcripts.
var transcriptExtensions = map[string]bool{
	".txt": true,
	".md":  true,
	".csv": true,
	".pdf": true,
}

// TranscriptService turns uploads into extraction input and keeps it under
// the configured size.
type TranscriptService struct {
	logger   *zap.Logger
	maxChars int
}

func NewTranscriptService(logger *zap.Logger, maxChars int) *TranscriptService {
	return &TranscriptService{logger: logger, maxChars: maxChars}
}

// ReadUpload extracts text from an uploaded transcript file.
func (ts *TranscriptService) ReadUpload(ctx context.Context, filename string, file io.ReaderAt, size int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !transcriptExtensions[ext] {
		return "", apperrors.Validation(fmt.Sprintf("unsupported file type %q", ext))
	}

	var text string
	if ext == ".pdf" {
		extracted, err := ts.ExtractPDF(file, size)
		if err != nil {
			return "", apperrors.WrapErrorf(apperrors.ErrInvalidInput, "read pdf %s: %v", filename, err)
		}
		text = extracted
	} else {
		raw, err := io.ReadAll(io.NewSectionReader(file, 0, size))
		if err != nil {
			return "", apperrors.WrapErrorf(apperrors.ErrInvalidInput, "read %s: %v", filename, err)
		}
		raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
		text = strings.ToValidUTF8(string(raw), "")
	}

	if strings.TrimSpace(text) == "" {
		return "", apperrors.Validation("uploaded file contains no text")
	}
	return ts.Prepare(ctx, text), nil
}

// ExtractPDF extracts all text content from a PDF, page by page.
func (ts *TranscriptService) ExtractPDF(file io.ReaderAt, size int64) (string, error) {
	r, err := pdf.NewReader(file, size)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var fullText strings.Builder
	totalPages := r.NumPage()

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			ts.logger.Warn("Skipping null page", zap.Int("page", pageNum))
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			ts.logger.Warn("Failed to extract text from page",
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}
		fullText.WriteString(text)
		fullText.WriteString("\n\n")
	}

	extracted := fullText.String()
	ts.logger.Info("PDF text extraction completed",
		zap.Int("pages", totalPages),
		zap.Int("characters", len(extracted)))
	return extracted, nil
}

// Prepare trims the transcript and truncates it to maxChars runes at the
// last sentence boundary that fits. Line breaks are preserved.
func (ts *TranscriptService) Prepare(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	if ts.maxChars <= 0 || utf8.RuneCountInString(text) <= ts.maxChars {
		return text
	}

	limit := byteOffsetOfRune(text, ts.maxChars)
	cut := ts.sentenceCut(ctx, text, limit)
	if cut <= 0 {
		ts.logger.Warn("No sentence boundary fits, truncating at character limit",
			zap.Int("max_chars", ts.maxChars))
		cut = limit
	}

	ts.logger.Info("Truncated transcript",
		zap.Int("original_chars", utf8.RuneCountInString(text)),
		zap.Int("kept_bytes", cut))
	return strings.TrimSpace(text[:cut]) + TruncationMarker
}

// sentenceCut returns the byte offset just past the last sentence ending at
// or before limit, or 0 if none does.
func (ts *TranscriptService) sentenceCut(ctx context.Context, text string, limit int) int {
	if ctx.Err() != nil {
		return 0
	}
	// Only segment a window a little past the limit.
	window := text[:byteOffsetOfRune(text, ts.maxChars+ts.maxChars/10+1)]

	doc, err := prose.NewDocument(window,
		prose.WithTagging(false),
		prose.WithExtraction(false))
	if err != nil {
		ts.logger.Warn("Failed to create prose document for sentence detection", zap.Error(err))
		return 0
	}

	cursor, cut := 0, 0
	for _, sent := range doc.Sentences() {
		s := strings.TrimSpace(sent.Text)
		if s == "" {
			continue
		}
		idx := strings.Index(window[cursor:], s)
		if idx < 0 {
			continue
		}
		end := cursor + idx + len(s)
		if end > limit {
			break
		}
		cut, cursor = end, end
	}
	return cut
}

// byteOffsetOfRune returns the byte index of the n-th rune, or len(s).
func byteOffsetOfRune(s string, n int) int {
	count := 0
	for i := range s {
		if count == n {
			return i
		}
		count++
	}
	return len(s)
}
