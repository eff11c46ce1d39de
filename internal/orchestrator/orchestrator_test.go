package orchestrator_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/doctran/doctran/internal/orchestrator"
	"github.com/doctran/doctran/internal/translator"
)

// mockDetector classifies by lookup table; unknown texts fail detection.
type mockDetector struct {
	langs map[string]string
}

func (m *mockDetector) DetectISO(text string) (string, bool) {
	code, ok := m.langs[text]
	return code, ok
}

type mockTranslator struct {
	translateFunc func(ctx context.Context, text, sourceLang, targetLang string) (string, error)
	calls         int
}

func (m *mockTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	m.calls++
	if m.translateFunc != nil {
		return m.translateFunc(ctx, text, sourceLang, targetLang)
	}
	return "[" + targetLang + "]" + text, nil
}

func newOrchestrator(det orchestrator.Detector, tr orchestrator.Translator) *orchestrator.Orchestrator {
	return orchestrator.New(det, tr)
}

func TestTranslateMultilingual_EmptyInput(t *testing.T) {
	o := newOrchestrator(&mockDetector{}, &mockTranslator{})

	out, summary, err := o.TranslateMultilingual(context.Background(), "", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
	if summary.Lines != 0 {
		t.Errorf("expected 0 lines, got %d", summary.Lines)
	}
}

func TestTranslateMultilingual_BlankLinesOnly(t *testing.T) {
	input := "\n\n  \n\t\n"
	o := newOrchestrator(&mockDetector{}, &mockTranslator{})

	out, summary, err := o.TranslateMultilingual(context.Background(), input, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != input {
		t.Errorf("blank document changed:\n  in:  %q\n  out: %q", input, out)
	}
	if summary.Skipped != summary.Lines {
		t.Errorf("expected all %d lines skipped, got %d", summary.Lines, summary.Skipped)
	}
}

func TestTranslateMultilingual_AlreadyTargetIdentity(t *testing.T) {
	input := "Hello world\nHow are you\nGoodbye"
	det := &mockDetector{langs: map[string]string{
		"Hello world": "en",
		"How are you": "en",
		"Goodbye":     "en",
	}}
	tr := &mockTranslator{}
	o := newOrchestrator(det, tr)

	out, summary, err := o.TranslateMultilingual(context.Background(), input, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != input {
		t.Errorf("document already in target changed:\n  in:  %q\n  out: %q", input, out)
	}
	if summary.AlreadyTarget != 3 {
		t.Errorf("expected 3 already-target lines, got %d", summary.AlreadyTarget)
	}
	if tr.calls != 0 {
		t.Errorf("translator called %d times for already-target document", tr.calls)
	}
}

func TestTranslateMultilingual_MixedDocument(t *testing.T) {
	// English line, blank line, Spanish line. Only the Spanish line should
	// reach the translator.
	input := "Hello\n\nHola"
	det := &mockDetector{langs: map[string]string{
		"Hello": "en",
		"Hola":  "es",
	}}
	tr := &mockTranslator{
		translateFunc: func(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
			if text != "Hola" {
				t.Errorf("unexpected text sent to translator: %q", text)
			}
			if sourceLang != "es" || targetLang != "en" {
				t.Errorf("unexpected language pair %s->%s", sourceLang, targetLang)
			}
			return "Hello", nil
		},
	}
	o := newOrchestrator(det, tr)

	out, summary, err := o.TranslateMultilingual(context.Background(), input, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Hello\n\nHello" {
		t.Errorf("expected %q, got %q", "Hello\n\nHello", out)
	}
	if summary.Translated != 1 || summary.AlreadyTarget != 1 || summary.Skipped != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestTranslateMultilingual_DetectionFailureIsolated(t *testing.T) {
	// Middle line cannot be classified; it keeps its text and the rest of
	// the document still translates.
	input := "Hola\nxq7#\nMundo"
	det := &mockDetector{langs: map[string]string{
		"Hola":  "es",
		"Mundo": "es",
	}}
	o := newOrchestrator(det, &mockTranslator{})

	out, summary, err := o.TranslateMultilingual(context.Background(), input, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "[en]Hola\nxq7#\n[en]Mundo" {
		t.Errorf("unexpected output: %q", out)
	}
	if summary.DetectionFailed != 1 || summary.Translated != 2 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestTranslateMultilingual_TranslationFailureIsolated(t *testing.T) {
	input := "Hola\nMundo"
	det := &mockDetector{langs: map[string]string{
		"Hola":  "es",
		"Mundo": "es",
	}}
	tr := &mockTranslator{
		translateFunc: func(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
			if text == "Mundo" {
				return "", fmt.Errorf("service rejected request")
			}
			return "Hello", nil
		},
	}
	o := newOrchestrator(det, tr)

	out, summary, err := o.TranslateMultilingual(context.Background(), input, "en")
	if err != nil {
		t.Fatalf("expected per-line isolation, got error: %v", err)
	}
	if out != "Hello\nMundo" {
		t.Errorf("expected failed line to keep original text, got %q", out)
	}
	if summary.Translated != 1 || summary.TranslationFailed != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if res := summary.Results[1]; res.Status != orchestrator.StatusTranslationFailed || res.Err == nil {
		t.Errorf("expected recorded failure on line 1, got %+v", res)
	}
}

func TestTranslateMultilingual_LineCountPreserved(t *testing.T) {
	input := "Hola\n\n  indented\nxq7#\n\nMundo\n"
	det := &mockDetector{langs: map[string]string{
		"Hola":     "es",
		"indented": "es",
		"Mundo":    "es",
	}}
	o := newOrchestrator(det, &mockTranslator{})

	out, _, err := o.TranslateMultilingual(context.Background(), input, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inLines := strings.Split(input, "\n")
	outLines := strings.Split(out, "\n")
	if len(outLines) != len(inLines) {
		t.Fatalf("line count changed: %d -> %d", len(inLines), len(outLines))
	}
}

func TestTranslateMultilingual_IndentationPreserved(t *testing.T) {
	input := "  Hola  "
	det := &mockDetector{langs: map[string]string{"Hola": "es"}}
	tr := &mockTranslator{
		translateFunc: func(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
			if text != "Hola" {
				t.Errorf("padding leaked into translator input: %q", text)
			}
			return "Hello", nil
		},
	}
	o := newOrchestrator(det, tr)

	out, _, err := o.TranslateMultilingual(context.Background(), input, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "  Hello  " {
		t.Errorf("expected surrounding whitespace kept, got %q", out)
	}
}

func TestTranslateMultilingual_CRLFPreserved(t *testing.T) {
	// Windows line endings: the \r must survive on translated lines too.
	input := "Hola\r\nMundo\r\n"
	det := &mockDetector{langs: map[string]string{
		"Hola":  "es",
		"Mundo": "es",
	}}
	tr := &mockTranslator{
		translateFunc: func(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
			if strings.ContainsAny(text, "\r\n") {
				t.Errorf("line ending leaked into translator input: %q", text)
			}
			return "X", nil
		},
	}
	o := newOrchestrator(det, tr)

	out, _, err := o.TranslateMultilingual(context.Background(), input, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "X\r\nX\r\n" {
		t.Errorf("CRLF endings not preserved: %q", out)
	}
}

func TestTranslateMultilingual_UnavailableAborts(t *testing.T) {
	input := "Hola\nMundo"
	det := &mockDetector{langs: map[string]string{
		"Hola":  "es",
		"Mundo": "es",
	}}
	tr := &mockTranslator{
		translateFunc: func(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
			return "", fmt.Errorf("all services failed: %w", translator.ErrUnavailable)
		},
	}
	o := newOrchestrator(det, tr)

	_, _, err := o.TranslateMultilingual(context.Background(), input, "en")
	if !errors.Is(err, translator.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if tr.calls != 1 {
		t.Errorf("expected abort after first systemic failure, translator called %d times", tr.calls)
	}
}

func TestTranslateMultilingual_ContextCancelled(t *testing.T) {
	input := "Hola"
	det := &mockDetector{langs: map[string]string{"Hola": "es"}}
	ctx, cancel := context.WithCancel(context.Background())
	tr := &mockTranslator{
		translateFunc: func(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
			cancel()
			return "", ctx.Err()
		},
	}
	o := newOrchestrator(det, tr)

	_, _, err := o.TranslateMultilingual(ctx, input, "en")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTranslateMultilingual_TargetCaseInsensitive(t *testing.T) {
	input := "Hello"
	det := &mockDetector{langs: map[string]string{"Hello": "en"}}
	tr := &mockTranslator{}
	o := newOrchestrator(det, tr)

	out, summary, err := o.TranslateMultilingual(context.Background(), input, "EN")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != input || summary.AlreadyTarget != 1 {
		t.Errorf("case-insensitive target match failed: out=%q summary=%+v", out, summary)
	}
	if tr.calls != 0 {
		t.Errorf("translator called %d times", tr.calls)
	}
}

func TestTranslateSingle_EmptyInput(t *testing.T) {
	o := newOrchestrator(&mockDetector{}, &mockTranslator{})

	out, source, err := o.TranslateSingle(context.Background(), "  \n ", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "  \n " || source != "" {
		t.Errorf("expected whitespace document unchanged, got %q (%q)", out, source)
	}
}

func TestTranslateSingle_DetectionFailure(t *testing.T) {
	o := newOrchestrator(&mockDetector{}, &mockTranslator{})

	out, _, err := o.TranslateSingle(context.Background(), "mystery text", "en")
	if !errors.Is(err, orchestrator.ErrDetectionFailed) {
		t.Fatalf("expected ErrDetectionFailed, got %v", err)
	}
	if out != "mystery text" {
		t.Errorf("expected original text returned, got %q", out)
	}
}

func TestTranslateSingle_AlreadyTarget(t *testing.T) {
	det := &mockDetector{langs: map[string]string{"Hello world": "en"}}
	tr := &mockTranslator{}
	o := newOrchestrator(det, tr)

	out, source, err := o.TranslateSingle(context.Background(), "Hello world", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Hello world" || source != "en" {
		t.Errorf("expected unchanged text with source 'en', got %q (%q)", out, source)
	}
	if tr.calls != 0 {
		t.Errorf("translator called %d times", tr.calls)
	}
}

func TestTranslateSingle_Translates(t *testing.T) {
	det := &mockDetector{langs: map[string]string{"Hola mundo": "es"}}
	o := newOrchestrator(det, &mockTranslator{})

	out, source, err := o.TranslateSingle(context.Background(), "Hola mundo", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "[en]Hola mundo" || source != "es" {
		t.Errorf("got %q (%q)", out, source)
	}
}

func TestTranslateSingle_TranslatorError(t *testing.T) {
	det := &mockDetector{langs: map[string]string{"Hola": "es"}}
	wantErr := fmt.Errorf("boom")
	tr := &mockTranslator{
		translateFunc: func(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
			return "", wantErr
		},
	}
	o := newOrchestrator(det, tr)

	out, source, err := o.TranslateSingle(context.Background(), "Hola", "en")
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected translator error, got %v", err)
	}
	if out != "Hola" || source != "es" {
		t.Errorf("expected original text with detected source, got %q (%q)", out, source)
	}
}
