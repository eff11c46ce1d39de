package internal

import "time"

// TranslationRequest records one document translation run for the history
// tables in the store.
type TranslationRequest struct {
	ID         string    `json:"id"`
	SourceFile string    `json:"source_file"`
	SourceText string    `json:"source_text"`
	SourceLang string    `json:"source_lang"`
	TargetLang string    `json:"target_lang"`
	Timestamp  time.Time `json:"timestamp"`
}
