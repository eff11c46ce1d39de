// Package orchestrator implements the line-wise multilingual translation
// workflow: split a document into lines, detect each line's language,
// translate only the lines that need it, and reassemble the document with
// its original structure intact.
//
// Failures are isolated at line granularity. A line whose language cannot be
// detected, or whose translation fails, keeps its original text and is
// counted in the summary; the document as a whole only fails on context
// cancellation or when the translator reports systemic unavailability.
package orchestrator

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/doctran/doctran/internal/translator"
)

// Detector identifies the language of a text fragment. ok=false means the
// fragment is too short or ambiguous to classify.
type Detector interface {
	DetectISO(text string) (code string, ok bool)
}

// Translator translates a single piece of text. Implementations own any
// retry or failover policy; the orchestrator calls each line exactly once.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// LineStatus classifies the outcome of one line.
type LineStatus string

const (
	StatusTranslated        LineStatus = "translated"
	StatusSkipped           LineStatus = "skipped"
	StatusAlreadyTarget     LineStatus = "already_target"
	StatusDetectionFailed   LineStatus = "detection_failed"
	StatusTranslationFailed LineStatus = "translation_failed"
)

// LineResult is the per-line outcome. Text holds the line content that went
// into the reassembled document (translated or original).
type LineResult struct {
	Index      int
	SourceLang string
	Status     LineStatus
	Text       string
	Err        error
}

// Summary aggregates per-line outcomes for one document.
type Summary struct {
	Lines             int
	Translated        int
	Skipped           int
	AlreadyTarget     int
	DetectionFailed   int
	TranslationFailed int
	Results           []LineResult
}

// ErrDetectionFailed is returned by TranslateSingle when the language of the
// whole document cannot be determined.
var ErrDetectionFailed = errors.New("language detection failed")

type Orchestrator struct {
	det Detector
	tr  Translator
	log *zap.Logger
}

type Option func(*Orchestrator)

// WithLogger attaches a logger for per-line debug output.
func WithLogger(log *zap.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

func New(det Detector, tr Translator, opts ...Option) *Orchestrator {
	o := &Orchestrator{det: det, tr: tr, log: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// TranslateMultilingual translates text line by line into targetLang.
//
// The document is split on "\n" without normalizing line endings, so the
// reassembled output preserves the input's line-break convention
// byte-for-byte for every line that is left untouched. Blank lines are
// skipped, lines already in targetLang are left alone, and per-line detector
// or translator failures keep the original text. The returned error is
// non-nil only for context cancellation or translator unavailability.
func (o *Orchestrator) TranslateMultilingual(ctx context.Context, text, targetLang string) (string, *Summary, error) {
	summary := &Summary{}
	if text == "" {
		return "", summary, nil
	}

	lines := strings.Split(text, "\n")
	summary.Lines = len(lines)
	summary.Results = make([]LineResult, 0, len(lines))
	out := make([]string, len(lines))

	for i, line := range lines {
		res, err := o.translateLine(ctx, i, line, targetLang)
		if err != nil {
			return "", nil, err
		}

		out[i] = res.Text
		summary.Results = append(summary.Results, res)
		switch res.Status {
		case StatusTranslated:
			summary.Translated++
		case StatusSkipped:
			summary.Skipped++
		case StatusAlreadyTarget:
			summary.AlreadyTarget++
		case StatusDetectionFailed:
			summary.DetectionFailed++
		case StatusTranslationFailed:
			summary.TranslationFailed++
		}
	}

	return strings.Join(out, "\n"), summary, nil
}

// translateLine handles one line. The returned error is non-nil only for
// failures that must abort the whole document.
func (o *Orchestrator) translateLine(ctx context.Context, idx int, line, targetLang string) (LineResult, error) {
	res := LineResult{Index: idx, Text: line}

	core, prefix, suffix := splitPadding(line)
	if core == "" {
		res.Status = StatusSkipped
		return res, nil
	}

	source, ok := o.det.DetectISO(core)
	if !ok {
		o.log.Debug("line language not determined", zap.Int("line", idx))
		res.Status = StatusDetectionFailed
		return res, nil
	}
	res.SourceLang = source

	if strings.EqualFold(source, targetLang) {
		res.Status = StatusAlreadyTarget
		return res, nil
	}

	translated, err := o.tr.Translate(ctx, core, source, targetLang)
	if err != nil {
		if isFatal(ctx, err) {
			return res, err
		}
		o.log.Debug("line translation failed",
			zap.Int("line", idx), zap.String("source", source), zap.Error(err))
		res.Status = StatusTranslationFailed
		res.Err = err
		return res, nil
	}

	res.Status = StatusTranslated
	res.Text = prefix + translated + suffix
	return res, nil
}

// TranslateSingle detects one language for the whole document and translates
// it in a single call. On detection failure the original text is returned
// together with an error wrapping ErrDetectionFailed; when the document is
// already in targetLang it is returned unchanged.
func (o *Orchestrator) TranslateSingle(ctx context.Context, text, targetLang string) (string, string, error) {
	core := strings.TrimSpace(text)
	if core == "" {
		return text, "", nil
	}

	source, ok := o.det.DetectISO(core)
	if !ok {
		return text, "", ErrDetectionFailed
	}

	if strings.EqualFold(source, targetLang) {
		return text, source, nil
	}

	translated, err := o.tr.Translate(ctx, text, source, targetLang)
	if err != nil {
		return text, source, err
	}
	return translated, source, nil
}

// isFatal reports whether err indicates a failure with no meaningful per-line
// fallback: the caller cancelled, or the translator backend is down entirely.
func isFatal(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, translator.ErrUnavailable) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// splitPadding separates a line into its surrounding whitespace and content
// so translation replaces only the content. A trailing "\r" from CRLF input
// ends up in the suffix and survives reassembly.
func splitPadding(line string) (core, prefix, suffix string) {
	trimmed := strings.TrimLeft(line, " \t\r\n\f\v")
	prefix = line[:len(line)-len(trimmed)]
	core = strings.TrimRight(trimmed, " \t\r\n\f\v")
	suffix = trimmed[len(core):]
	return core, prefix, suffix
}
