package textblock

import (
	"image"
	"math/rand"
	"path/filepath"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBlock(t *testing.T) {
	words := []WordDetection{
		{Text: "A", BBox: NewBBox(0.1, 0.1, 0.2, 0.15), Confidence: 0.9},
		{Text: "B", BBox: NewBBox(0.22, 0.1, 0.3, 0.15), Confidence: 0.7},
	}

	b := NewBlock(words)

	assert.Equal(t, "A B", b.Text)
	assert.Equal(t, NewBBox(0.1, 0.1, 0.3, 0.15), b.BBox)
	assert.InDelta(t, 0.8, b.Confidence, 1e-9)
	assert.Len(t, b.Words, 2)

	// the block keeps its own copy of the words
	words[0].Text = "changed"
	assert.Equal(t, "A", b.Words[0].Text)
}

func TestNewBlockEmpty(t *testing.T) {
	assert.Equal(t, TextBlock{}, NewBlock(nil))
}

func TestBBoxPixels(t *testing.T) {
	b := NewBBox(0.1, 0.25, 0.5, 0.999)
	assert.Equal(t, image.Rect(80, 150, 400, 599), b.Pixels(800, 600))
}

func TestBBoxValidate(t *testing.T) {
	assert.NoError(t, NewBBox(0, 0, 1, 1).Validate())
	assert.Error(t, NewBBox(0.5, 0, 0.4, 1).Validate())
	assert.Error(t, NewBBox(0, 0, 1.5, 1).Validate())
	assert.Error(t, NewBBox(-0.1, 0, 1, 1).Validate())
}

func TestBBoxJSON(t *testing.T) {
	data, err := NewBBox(0.1, 0.2, 0.3, 0.4).MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[[0.1,0.2],[0.3,0.4]]`, string(data))

	var b BBox
	assert.Error(t, b.UnmarshalJSON([]byte(`[[0.1,0.2,0.3],[0.3,0.4]]`)))
	assert.Error(t, b.UnmarshalJSON([]byte(`[[0.1,0.2]]`)))
	assert.Error(t, b.UnmarshalJSON([]byte(`{"x1":0.1}`)))
}

func TestTextBlocksRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page_text.json")
	blocks := []TextBlock{
		NewBlock([]WordDetection{
			{Text: "Olá,", BBox: NewBBox(0.1, 0.1, 0.2, 0.15), Confidence: 0.93},
			{Text: "<mundo>", BBox: NewBBox(0.22, 0.1, 0.3, 0.15), Confidence: 0.61},
		}),
		NewBlock([]WordDetection{
			{Text: "Fim", BBox: NewBBox(0.5, 0.8, 0.6, 0.85), Confidence: 1},
		}),
	}

	require.NoError(t, SaveTextBlocks(path, blocks))
	loaded, err := LoadTextBlocks(path)
	require.NoError(t, err)
	assert.Equal(t, blocks, loaded)
}

func TestTranslatedBlocksRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page_text_translated.json")
	b := NewBlock([]WordDetection{{Text: "Hello", BBox: NewBBox(0.1, 0.1, 0.2, 0.15), Confidence: 0.5}})
	blocks := []TranslatedBlock{b.Translate("Olá"), b.Translate("")}

	require.NoError(t, SaveTranslatedBlocks(path, blocks))
	loaded, err := LoadTranslatedBlocks(path)
	require.NoError(t, err)
	assert.Equal(t, blocks, loaded)
}

func TestRoundTripProperty(t *testing.T) {
	dir := t.TempDir()
	config := &quick.Config{
		MaxCount: 50,
		Rand:     rand.New(rand.NewSource(42)),
	}

	property := func(seed int64) bool {
		blocks := randomBlocks(rand.New(rand.NewSource(seed)))
		path := filepath.Join(dir, "prop.json")
		if err := SaveTextBlocks(path, blocks); err != nil {
			return false
		}
		loaded, err := LoadTextBlocks(path)
		if err != nil {
			return false
		}
		return assert.ObjectsAreEqual(blocks, loaded)
	}

	assert.NoError(t, quick.Check(property, config))
}

func randomBlocks(r *rand.Rand) []TextBlock {
	blocks := make([]TextBlock, r.Intn(5))
	for i := range blocks {
		words := make([]WordDetection, 1+r.Intn(4))
		for j := range words {
			x, y := r.Float64()*0.9, r.Float64()*0.9
			words[j] = WordDetection{
				Text:       string(rune('a' + r.Intn(26))),
				BBox:       NewBBox(x, y, x+r.Float64()*0.1, y+r.Float64()*0.1),
				Confidence: r.Float64(),
			}
		}
		blocks[i] = NewBlock(words)
	}
	return blocks
}

func TestDecodeSchemaErrors(t *testing.T) {
	word := `{"text":"A","bbox":[[0.1,0.1],[0.2,0.2]],"confidence":0.9}`

	tests := []struct {
		name  string
		data  string
		index int
		field string
	}{
		{
			name:  "not an array",
			data:  `{"kind":"text_block"}`,
			index: -1,
		},
		{
			name:  "missing kind",
			data:  `[{"text":"A","bbox":[[0.1,0.1],[0.2,0.2]],"words":[` + word + `],"confidence":0.9}]`,
			field: "kind",
		},
		{
			name:  "wrong kind",
			data:  `[{"kind":"translated_block","text":"A","bbox":[[0.1,0.1],[0.2,0.2]],"words":[` + word + `],"confidence":0.9,"translated_text":"B"}]`,
			field: "kind",
		},
		{
			name:  "unknown field",
			data:  `[{"kind":"text_block","text":"A","bbox":[[0.1,0.1],[0.2,0.2]],"words":[` + word + `],"confidence":0.9,"lang":"en"}]`,
			field: "lang",
		},
		{
			name:  "bad word bbox in second record",
			data:  `[{"kind":"text_block","text":"A","bbox":[[0.1,0.1],[0.2,0.2]],"words":[` + word + `],"confidence":0.9},{"kind":"text_block","text":"A","bbox":[[0.1,0.1],[0.2,0.2]],"words":[{"text":"A","bbox":[0.1,0.1,0.2,0.2],"confidence":0.9}],"confidence":0.9}]`,
			index: 1,
			field: "words[0].bbox",
		},
		{
			name:  "wrong type",
			data:  `[{"kind":"text_block","text":7,"bbox":[[0.1,0.1],[0.2,0.2]],"words":[` + word + `],"confidence":0.9}]`,
			field: "text",
		},
		{
			name:  "empty words",
			data:  `[{"kind":"text_block","text":"A","bbox":[[0.1,0.1],[0.2,0.2]],"words":[],"confidence":0.9}]`,
			field: "words",
		},
		{
			name:  "confidence out of range",
			data:  `[{"kind":"text_block","text":"A","bbox":[[0.1,0.1],[0.2,0.2]],"words":[` + word + `],"confidence":90}]`,
			field: "confidence",
		},
		{
			name:  "translated text in extracted file",
			data:  `[{"kind":"text_block","text":"A","bbox":[[0.1,0.1],[0.2,0.2]],"words":[` + word + `],"confidence":0.9,"translated_text":"B"}]`,
			field: "translated_text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTextBlocks([]byte(tt.data))
			require.Error(t, err)

			var se *SchemaError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.index, se.Index)
			assert.Equal(t, tt.field, se.Field)
		})
	}
}

func TestDecodeTranslatedRequiresTranslation(t *testing.T) {
	data := `[{"kind":"translated_block","text":"A","bbox":[[0.1,0.1],[0.2,0.2]],"words":[{"text":"A","bbox":[[0.1,0.1],[0.2,0.2]],"confidence":0.9}],"confidence":0.9}]`

	_, err := DecodeTranslatedBlocks([]byte(data))

	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 0, se.Index)
	assert.Equal(t, "translated_text", se.Field)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadTextBlocks(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
