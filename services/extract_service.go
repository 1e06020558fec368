package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Amo12312/accordai/models"
)

// ExtractedDocument is the output of a text extraction.
type ExtractedDocument struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata"`
}

// TextExtractor turns an uploaded file into text. PDF/Word/OCR
// extraction is an external collaborator; the built-in implementation
// handles plain-text formats only.
type TextExtractor interface {
	Extract(filename string, r io.Reader) (*ExtractedDocument, error)
}

// PlainTextExtractor reads UTF-8 text files up to a size cap.
type PlainTextExtractor struct {
	MaxBytes int64
}

// NewPlainTextExtractor creates a PlainTextExtractor with a 1 MiB cap.
func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{MaxBytes: 1 << 20}
}

func (e *PlainTextExtractor) Extract(filename string, r io.Reader) (*ExtractedDocument, error) {
	data, err := io.ReadAll(io.LimitReader(r, e.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > e.MaxBytes {
		return nil, fmt.Errorf("file exceeds the %d byte limit", e.MaxBytes)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("unsupported file format: %s", filepath.Ext(filename))
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, fmt.Errorf("no text could be extracted from %s", filename)
	}
	return &ExtractedDocument{
		Text: text,
		Metadata: map[string]string{
			"filename": filename,
			"ext":      filepath.Ext(filename),
			"bytes":    strconv.Itoa(len(data)),
		},
	}, nil
}

const defaultUploadPrompt = "Summarize the key points of the following document."

// ExtractService routes an uploaded document through the same gateway
// path as a typed message: extraction, prompt assembly, trial gate,
// provider, fallback.
type ExtractService interface {
	HandleUpload(ctx context.Context, user *models.User, filename string, r io.Reader, customPrompt string) (*GatewayResult, *ExtractedDocument, error)
}

type extractService struct {
	extractor TextExtractor
	gateway   GatewayService
}

// NewExtractService creates an ExtractService.
func NewExtractService(extractor TextExtractor, gateway GatewayService) ExtractService {
	return &extractService{extractor: extractor, gateway: gateway}
}

func (s *extractService) HandleUpload(ctx context.Context, user *models.User, filename string, r io.Reader, customPrompt string) (*GatewayResult, *ExtractedDocument, error) {
	doc, err := s.extractor.Extract(filename, r)
	if err != nil {
		return nil, nil, err
	}

	prompt := strings.TrimSpace(customPrompt)
	if prompt == "" {
		prompt = defaultUploadPrompt
	}
	fullPrompt := prompt + "\n\n" + doc.Text

	result, err := s.gateway.HandleMessage(ctx, user, fullPrompt)
	if err != nil {
		return nil, doc, err
	}
	return result, doc, nil
}
