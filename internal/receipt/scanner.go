package receipt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gastoscl/rendiciones/internal"
	"github.com/gastoscl/rendiciones/internal/expense"
)

// Scanner sends a stored receipt to an external OCR endpoint and parses the
// returned text into hints. Every failure path returns an error the caller is
// expected to swallow; hints are never load-bearing.
type Scanner struct {
	endpointURL string
	httpClient  *http.Client
	store       *FileStore
	logger      *slog.Logger
}

type ocrResponse struct {
	Text string `json:"text"`
}

// NewScanner returns nil when OCR is disabled; callers treat a nil scanner as
// no hints.
func NewScanner(cfg internal.OCRConfig, store *FileStore, logger *slog.Logger) *Scanner {
	if !cfg.Enabled {
		return nil
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Scanner{
		endpointURL: cfg.EndpointURL,
		httpClient:  &http.Client{Timeout: timeout},
		store:       store,
		logger:      logger,
	}
}

func (s *Scanner) Scan(ctx context.Context, receiptRef string) (*expense.OCRData, error) {
	f, err := s.store.Open(receiptRef)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", receiptRef)
	if err != nil {
		return nil, fmt.Errorf("build ocr request: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("build ocr request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build ocr request: %w", err)
	}

	reqCtx, cancel := internal.WithTimeout(ctx, s.httpClient.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, s.endpointURL, &body)
	if err != nil {
		return nil, fmt.Errorf("build ocr request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ocr request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ocr endpoint returned status %d", resp.StatusCode)
	}

	var out ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode ocr response: %w", err)
	}

	hints := ParseText(out.Text)
	s.logger.Debug("receipt scanned",
		"receipt", receiptRef,
		"confidence", hints.Confidence,
		"ruts_found", len(hints.SuggestedRUTs))
	return hints, nil
}
