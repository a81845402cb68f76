package pipeline

import (
	"fmt"
)

// Kind classifies pipeline failures by stage
type Kind string

// Failure kinds
const (
	DownloadFailure    Kind = "DOWNLOAD_FAILED"
	ExtractionFailure  Kind = "EXTRACTION_FAILED"
	TranslationFailure Kind = "TRANSLATION_FAILED"
	CompositionFailure Kind = "COMPOSITION_FAILED"
)

// Error is returned by every stage. Any Error is terminal for its page.
type Error struct {
	Kind Kind
	Page string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: page %s: %s: %v", e.Kind, e.Page, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: page %s: %s", e.Kind, e.Page, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Factory functions per stage

func NewDownloadError(page, msg string, cause error) *Error {
	return &Error{Kind: DownloadFailure, Page: page, Msg: msg, Err: cause}
}

func NewExtractionError(page, msg string, cause error) *Error {
	return &Error{Kind: ExtractionFailure, Page: page, Msg: msg, Err: cause}
}

func NewTranslationError(page, msg string, cause error) *Error {
	return &Error{Kind: TranslationFailure, Page: page, Msg: msg, Err: cause}
}

func NewCompositionError(page, msg string, cause error) *Error {
	return &Error{Kind: CompositionFailure, Page: page, Msg: msg, Err: cause}
}
