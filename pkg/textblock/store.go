package textblock

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
)

// Record kinds
const (
	KindTextBlock       = "text_block"
	KindTranslatedBlock = "translated_block"
)

// SchemaError reports the first record of an intermediate file that does not
// match the expected schema. Index is the record position (-1 for the file
// itself) and Field the JSON path of the offending value inside the record.
type SchemaError struct {
	Index  int
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid block file: %s", e.Reason)
	}
	if e.Field == "" {
		return fmt.Sprintf("record %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("record %d: field %s: %s", e.Index, e.Field, e.Reason)
}

// wordOut and blockOut fix the key order of written records
type wordOut struct {
	Text       string  `json:"text"`
	BBox       BBox    `json:"bbox"`
	Confidence float64 `json:"confidence"`
}

type blockOut struct {
	Kind           string    `json:"kind"`
	Text           string    `json:"text"`
	BBox           BBox      `json:"bbox"`
	Words          []wordOut `json:"words"`
	Confidence     float64   `json:"confidence"`
	TranslatedText *string   `json:"translated_text,omitempty"`
}

// wordIn and blockIn use pointers so missing fields can be told apart from zero values
type wordIn struct {
	Text       *string         `json:"text"`
	BBox       json.RawMessage `json:"bbox"`
	Confidence *float64        `json:"confidence"`
}

type blockIn struct {
	Kind           *string           `json:"kind"`
	Text           *string           `json:"text"`
	BBox           json.RawMessage   `json:"bbox"`
	Words          []json.RawMessage `json:"words"`
	Confidence     *float64          `json:"confidence"`
	TranslatedText *string           `json:"translated_text"`
}

// SaveTextBlocks writes extracted blocks to path
func SaveTextBlocks(path string, blocks []TextBlock) error {
	records := make([]blockOut, 0, len(blocks))
	for _, b := range blocks {
		records = append(records, toRecord(KindTextBlock, b, nil))
	}
	return writeRecords(path, records)
}

// SaveTranslatedBlocks writes translated blocks to path
func SaveTranslatedBlocks(path string, blocks []TranslatedBlock) error {
	records := make([]blockOut, 0, len(blocks))
	for _, b := range blocks {
		tr := b.TranslatedText
		records = append(records, toRecord(KindTranslatedBlock, b.TextBlock, &tr))
	}
	return writeRecords(path, records)
}

// LoadTextBlocks reads and validates a file written by SaveTextBlocks
func LoadTextBlocks(path string) ([]TextBlock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read block file: %w", err)
	}
	return DecodeTextBlocks(data)
}

// LoadTranslatedBlocks reads and validates a file written by SaveTranslatedBlocks
func LoadTranslatedBlocks(path string) ([]TranslatedBlock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read block file: %w", err)
	}
	return DecodeTranslatedBlocks(data)
}

// DecodeTextBlocks decodes and validates text_block records
func DecodeTextBlocks(data []byte) ([]TextBlock, error) {
	records, err := decodeRecords(data, KindTextBlock)
	if err != nil {
		return nil, err
	}
	blocks := make([]TextBlock, 0, len(records))
	for _, r := range records {
		blocks = append(blocks, r.TextBlock)
	}
	return blocks, nil
}

// DecodeTranslatedBlocks decodes and validates translated_block records
func DecodeTranslatedBlocks(data []byte) ([]TranslatedBlock, error) {
	return decodeRecords(data, KindTranslatedBlock)
}

func toRecord(kind string, b TextBlock, translated *string) blockOut {
	words := make([]wordOut, 0, len(b.Words))
	for _, w := range b.Words {
		words = append(words, wordOut{Text: w.Text, BBox: w.BBox, Confidence: w.Confidence})
	}
	return blockOut{
		Kind:           kind,
		Text:           b.Text,
		BBox:           b.BBox,
		Words:          words,
		Confidence:     b.Confidence,
		TranslatedText: translated,
	}
}

func writeRecords(path string, records []blockOut) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode blocks: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write block file: %w", err)
	}
	return nil
}

func decodeRecords(data []byte, kind string) ([]TranslatedBlock, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &SchemaError{Index: -1, Reason: fmt.Sprintf("expected a JSON array of records: %v", err)}
	}

	blocks := make([]TranslatedBlock, 0, len(raw))
	for i, msg := range raw {
		b, err := decodeBlock(msg, kind)
		if err != nil {
			var se *SchemaError
			if errors.As(err, &se) {
				se.Index = i
				return nil, se
			}
			return nil, &SchemaError{Index: i, Reason: err.Error()}
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func decodeBlock(msg json.RawMessage, kind string) (TranslatedBlock, error) {
	var in blockIn
	if err := strictUnmarshal(msg, &in); err != nil {
		return TranslatedBlock{}, fieldError("", err)
	}

	if in.Kind == nil {
		return TranslatedBlock{}, &SchemaError{Field: "kind", Reason: "missing"}
	}
	if *in.Kind != kind {
		return TranslatedBlock{}, &SchemaError{Field: "kind", Reason: fmt.Sprintf("expected %q, got %q", kind, *in.Kind)}
	}
	if in.Text == nil {
		return TranslatedBlock{}, &SchemaError{Field: "text", Reason: "missing"}
	}
	bbox, err := decodeBBox(in.BBox, "bbox")
	if err != nil {
		return TranslatedBlock{}, err
	}
	if len(in.Words) == 0 {
		return TranslatedBlock{}, &SchemaError{Field: "words", Reason: "must contain at least one word"}
	}
	conf, err := checkConfidence(in.Confidence, "confidence")
	if err != nil {
		return TranslatedBlock{}, err
	}

	words := make([]WordDetection, 0, len(in.Words))
	for j, wmsg := range in.Words {
		prefix := fmt.Sprintf("words[%d]", j)
		w, err := decodeWord(wmsg, prefix)
		if err != nil {
			return TranslatedBlock{}, err
		}
		words = append(words, w)
	}

	switch kind {
	case KindTranslatedBlock:
		if in.TranslatedText == nil {
			return TranslatedBlock{}, &SchemaError{Field: "translated_text", Reason: "missing"}
		}
	default:
		if in.TranslatedText != nil {
			return TranslatedBlock{}, &SchemaError{Field: "translated_text", Reason: fmt.Sprintf("not allowed in %q records", kind)}
		}
	}

	out := TranslatedBlock{
		TextBlock: TextBlock{
			Text:       *in.Text,
			BBox:       bbox,
			Words:      words,
			Confidence: conf,
		},
	}
	if in.TranslatedText != nil {
		out.TranslatedText = *in.TranslatedText
	}
	return out, nil
}

func decodeWord(msg json.RawMessage, prefix string) (WordDetection, error) {
	var in wordIn
	if err := strictUnmarshal(msg, &in); err != nil {
		return WordDetection{}, fieldError(prefix, err)
	}
	if in.Text == nil {
		return WordDetection{}, &SchemaError{Field: prefix + ".text", Reason: "missing"}
	}
	bbox, err := decodeBBox(in.BBox, prefix+".bbox")
	if err != nil {
		return WordDetection{}, err
	}
	conf, err := checkConfidence(in.Confidence, prefix+".confidence")
	if err != nil {
		return WordDetection{}, err
	}
	return WordDetection{Text: *in.Text, BBox: bbox, Confidence: conf}, nil
}

func decodeBBox(msg json.RawMessage, field string) (BBox, error) {
	if len(msg) == 0 || string(msg) == "null" {
		return BBox{}, &SchemaError{Field: field, Reason: "missing"}
	}
	var b BBox
	if err := json.Unmarshal(msg, &b); err != nil {
		return BBox{}, &SchemaError{Field: field, Reason: err.Error()}
	}
	if err := b.Validate(); err != nil {
		return BBox{}, &SchemaError{Field: field, Reason: err.Error()}
	}
	return b, nil
}

func checkConfidence(v *float64, field string) (float64, error) {
	if v == nil {
		return 0, &SchemaError{Field: field, Reason: "missing"}
	}
	if math.IsNaN(*v) || *v < 0 || *v > 1 {
		return 0, &SchemaError{Field: field, Reason: fmt.Sprintf("%v is outside [0,1]", *v)}
	}
	return *v, nil
}

func strictUnmarshal(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// fieldError converts a json decoding error into a SchemaError naming the field
func fieldError(prefix string, err error) *SchemaError {
	join := func(name string) string {
		if prefix == "" {
			return name
		}
		if name == "" {
			return prefix
		}
		return prefix + "." + name
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &SchemaError{
			Field:  join(typeErr.Field),
			Reason: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
		}
	}

	msg := err.Error()
	if strings.HasPrefix(msg, "json: unknown field ") {
		name := strings.Trim(strings.TrimPrefix(msg, "json: unknown field "), `"`)
		return &SchemaError{Field: join(name), Reason: "unknown field"}
	}
	return &SchemaError{Field: join(""), Reason: msg}
}
