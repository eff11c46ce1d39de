// Package validator checks that a translation result is written in the
// expected target language.
package validator

import (
	"fmt"
	"strings"

	"github.com/doctran/doctran/internal/detector"
)

// minValidationLength is the minimum rune count for a detection attempt.
// Shorter texts give unreliable results and are accepted as-is.
const minValidationLength = 20

// Validator verifies result language with the lingua detector. The detector
// is expensive to build; reuse the instance.
type Validator struct {
	det *detector.Detector
}

func New() *Validator {
	return &Validator{det: detector.New()}
}

// IsValid reports whether translatedText appears to be in targetLang. Empty
// text fails; short or undetectable text passes. On a mismatch the error
// names both codes.
func (v *Validator) IsValid(translatedText, targetLang string) (bool, error) {
	if targetLang == "" {
		return true, nil
	}

	text := strings.TrimSpace(translatedText)
	if text == "" {
		return false, fmt.Errorf("translation is empty")
	}

	if len([]rune(text)) < minValidationLength {
		return true, nil
	}

	detected, ok := v.det.DetectISO(text)
	if !ok {
		return true, nil
	}

	if !strings.EqualFold(detected, targetLang) {
		return false, fmt.Errorf("expected %s but detected %s", targetLang, detected)
	}

	return true, nil
}
