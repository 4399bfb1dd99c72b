// Package pdf provides an extractor for PDF documents using pdftotext
// (from poppler-utils) for text and pdfcpu for page structure.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/reqlens/internal/core/domain"
	"github.com/custodia-labs/reqlens/internal/core/ports/driven"
	"github.com/custodia-labs/reqlens/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Extractor = (*Normaliser)(nil)

const toolName = "pdftotext"

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = fmt.Errorf("%w: pdftotext not found in PATH", domain.ErrExtraction)

func init() {
	api.DisableConfigDir()
}

// CommandRunner executes external commands. Tests substitute a fake.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && stderr.Len() > 0 {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, err
}

// Normaliser handles PDF documents.
type Normaliser struct {
	runner   CommandRunner
	lookPath func(string) (string, error)
}

// New creates a PDF normaliser that shells out to pdftotext.
func New() *Normaliser {
	return NewWithRunner(execRunner{})
}

// NewWithRunner creates a PDF normaliser with a custom command runner.
func NewWithRunner(runner CommandRunner) *Normaliser {
	return &Normaliser{runner: runner, lookPath: exec.LookPath}
}

// CheckAvailable returns ErrPDFToolNotFound if pdftotext is not in PATH.
func CheckAvailable() error {
	if _, err := exec.LookPath(toolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions describes how to install pdftotext.
func InstallInstructions() string {
	return "PDF extraction requires pdftotext (poppler).\n" +
		"  macOS:  brew install poppler\n" +
		"  Debian: apt install poppler-utils\n" +
		"  Fedora: dnf install poppler-utils"
}

// Formats returns the formats this normaliser handles.
func (n *Normaliser) Formats() []domain.Format {
	return []domain.Format{domain.FormatPDF}
}

// Extract runs pdftotext once per page so a failing page is skipped on its own.
// Skipped pages contribute no text; later pages keep their real page numbers.
// When pdfcpu cannot read the page tree the whole file is converted in one pass
// and split on form feeds.
func (n *Normaliser) Extract(ctx context.Context, data []byte) (*domain.Extraction, error) {
	if data == nil {
		return nil, domain.ErrInvalidInput
	}
	if _, err := n.lookPath(toolName); err != nil {
		return nil, ErrPDFToolNotFound
	}

	tmp, err := writeTemp(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtraction, err)
	}
	defer os.Remove(tmp)

	pages, err := PageCount(data)
	if err != nil {
		logger.Debug("pdfcpu could not read page tree, converting in one pass: %v", err)
		return n.extractWhole(ctx, tmp)
	}

	ext := &domain.Extraction{}
	for page := 1; page <= pages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := strconv.Itoa(page)
		out, err := n.runner.Run(ctx, toolName, "-layout", "-enc", "UTF-8", "-f", p, "-l", p, tmp, "-")
		if err != nil {
			logger.Warn("pdf page %d skipped: %v", page, err)
			ext.Skipped = append(ext.Skipped, domain.SkippedRun{
				PageNumber: page,
				Reason:     fmt.Sprintf("pdftotext failed: %v", err),
			})
			continue
		}
		ext.Runs = append(ext.Runs, pageRuns(string(out), page)...)
	}
	return ext, nil
}

func (n *Normaliser) extractWhole(ctx context.Context, path string) (*domain.Extraction, error) {
	out, err := n.runner.Run(ctx, toolName, "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return nil, fmt.Errorf("%w: pdftotext failed: %v", domain.ErrExtraction, err)
	}
	ext := &domain.Extraction{}
	for i, page := range strings.Split(string(out), "\f") {
		ext.Runs = append(ext.Runs, pageRuns(page, i+1)...)
	}
	return ext, nil
}

// pageRuns normalises one page of pdftotext output into line runs.
// The page always ends with a newline so pages never run together.
func pageRuns(text string, page int) []domain.TextRun {
	text = strings.TrimRight(text, "\f \t\r\n")
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return domain.LineRuns(text+"\n", page)
}

// PageCount returns the number of pages using pdfcpu.
func PageCount(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errors.New("pdf has no pages")
	}
	return n, nil
}

func writeTemp(data []byte) (string, error) {
	f, err := os.CreateTemp("", "reqlens-*.pdf")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
