// Package translate turns the text of comic blocks into another language.
//
// The Translator interface is a plain text-in, text-out collaborator. LLM
// implements it on top of any langchaingo chat model (OpenAI, Ollama,
// Anthropic or Mistral, see NewModel) and retries transient failures with
// exponential backoff.
//
// Blocks translates a whole page, one block at a time and in order. The
// first block that cannot be translated aborts the page: a partially
// translated page is never returned.
package translate

import (
	"context"
	"fmt"

	"github.com/gardar/comictrans/pkg/textblock"
)

// Translator translates text into the target language (ISO 639-1 code)
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Detector reports the ISO 639-1 code of the language text is written in
type Detector interface {
	DetectLanguage(ctx context.Context, text string) (string, error)
}

// BlockError reports the block that failed to translate
type BlockError struct {
	Index int
	Text  string
	Err   error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("failed to translate block %d (%q): %v", e.Index, e.Text, e.Err)
}

func (e *BlockError) Unwrap() error { return e.Err }

// Blocks translates every block in order and returns one TranslatedBlock
// per input block. It stops at the first failure and returns a *BlockError.
func Blocks(ctx context.Context, tr Translator, blocks []textblock.TextBlock, targetLang string) ([]textblock.TranslatedBlock, error) {
	if _, err := ParseLanguage(targetLang); err != nil {
		return nil, err
	}

	out := make([]textblock.TranslatedBlock, 0, len(blocks))
	for i, b := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, &BlockError{Index: i, Text: b.Text, Err: err}
		}
		translated, err := tr.Translate(ctx, b.Text, targetLang)
		if err != nil {
			return nil, &BlockError{Index: i, Text: b.Text, Err: err}
		}
		out = append(out, b.Translate(translated))
	}
	return out, nil
}
