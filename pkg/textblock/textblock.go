// Package textblock defines the data passed between the stages of the comic
// translation pipeline and its JSON persistence format.
//
// The pipeline works on three record types:
//
// - WordDetection: a single word recognized by an OCR engine
// - TextBlock: a group of spatially adjacent words translated as one unit
// - TranslatedBlock: a TextBlock together with its translated text
//
// All coordinates are normalized to the [0,1] range relative to the page
// image, so a record stays valid when the raster is rescaled.
//
// Intermediate files are JSON arrays of records tagged with a "kind" field.
// Loading validates every record and fails on the first schema mismatch with
// a *SchemaError naming the record index and the offending field.
//
// Main Functions:
//
// - NewBlock: Builds a TextBlock from an ordered list of words
// - SaveTextBlocks / LoadTextBlocks: Persist extracted blocks
// - SaveTranslatedBlocks / LoadTranslatedBlocks: Persist translated blocks
package textblock

import (
	"strings"
)

// WordDetection is a single word returned by an OCR engine
type WordDetection struct {
	Text       string  // Recognized text
	BBox       BBox    // Normalized word coordinates
	Confidence float64 // Recognition confidence (0-1)
}

// TextBlock is a group of words that is translated as one unit
type TextBlock struct {
	Text       string          // Member texts joined by single spaces
	BBox       BBox            // Minimal rectangle enclosing all words
	Words      []WordDetection // Member words in reading order
	Confidence float64         // Mean confidence of the member words
}

// TranslatedBlock is a TextBlock with its translation attached
type TranslatedBlock struct {
	TextBlock
	TranslatedText string
}

// NewBlock builds a TextBlock from words, keeping their order.
// The block text is the word texts joined by a single space.
func NewBlock(words []WordDetection) TextBlock {
	if len(words) == 0 {
		return TextBlock{}
	}

	texts := make([]string, 0, len(words))
	bbox := words[0].BBox
	var sum float64
	for _, w := range words {
		texts = append(texts, w.Text)
		bbox = bbox.Union(w.BBox)
		sum += w.Confidence
	}

	members := make([]WordDetection, len(words))
	copy(members, words)

	return TextBlock{
		Text:       strings.Join(texts, " "),
		BBox:       bbox,
		Words:      members,
		Confidence: sum / float64(len(words)),
	}
}

// Translate attaches a translation to the block
func (b TextBlock) Translate(text string) TranslatedBlock {
	return TranslatedBlock{TextBlock: b, TranslatedText: text}
}

// WordCount returns the total number of words across blocks
func WordCount(blocks []TextBlock) int {
	n := 0
	for _, b := range blocks {
		n += len(b.Words)
	}
	return n
}
