package gdocai

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcessor struct {
	doc    *documentaipb.Document
	err    error
	req    *documentaipb.ProcessRequest
	closed bool
}

func (f *fakeProcessor) ProcessDocument(_ context.Context, req *documentaipb.ProcessRequest, _ ...gax.CallOption) (*documentaipb.ProcessResponse, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &documentaipb.ProcessResponse{Document: f.doc}, nil
}

func (f *fakeProcessor) Close() error {
	f.closed = true
	return nil
}

func anchor(start, end int64) *documentaipb.Document_TextAnchor {
	return &documentaipb.Document_TextAnchor{
		TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{{StartIndex: start, EndIndex: end}},
	}
}

func normalizedToken(start, end int64, x1, y1, x2, y2 float32, conf float32) *documentaipb.Document_Page_Token {
	return &documentaipb.Document_Page_Token{
		Layout: &documentaipb.Document_Page_Layout{
			TextAnchor: anchor(start, end),
			Confidence: conf,
			BoundingPoly: &documentaipb.BoundingPoly{
				NormalizedVertices: []*documentaipb.NormalizedVertex{
					{X: x1, Y: y1}, {X: x2, Y: y1}, {X: x2, Y: y2}, {X: x1, Y: y2},
				},
			},
		},
	}
}

func samplePage() *documentaipb.Document {
	return &documentaipb.Document{
		Text: "WHERE ARE\nYOU?\n",
		Pages: []*documentaipb.Document_Page{{
			Dimension: &documentaipb.Document_Page_Dimension{Width: 800, Height: 1200, Unit: "pixels"},
			DetectedLanguages: []*documentaipb.Document_Page_DetectedLanguage{
				{LanguageCode: "en", Confidence: 0.98},
			},
			Tokens: []*documentaipb.Document_Page_Token{
				normalizedToken(0, 6, 0.1, 0.1, 0.2, 0.15, 0.9),
				normalizedToken(6, 10, 0.22, 0.1, 0.3, 0.15, 0.8),
				{
					Layout: &documentaipb.Document_Page_Layout{
						TextAnchor: anchor(10, 15),
						Confidence: 0.5,
						BoundingPoly: &documentaipb.BoundingPoly{
							Vertices: []*documentaipb.Vertex{
								{X: 80, Y: 240}, {X: 240, Y: 240}, {X: 240, Y: 300}, {X: 80, Y: 300},
							},
						},
					},
				},
			},
		}},
	}
}

func TestWordsFromProto(t *testing.T) {
	doc := samplePage()

	words, err := WordsFromProto(doc, doc.Pages[0])

	require.NoError(t, err)
	require.Len(t, words, 3)

	assert.Equal(t, "WHERE", words[0].Text)
	assert.InDelta(t, 0.1, words[0].BBox.X1, 1e-6)
	assert.InDelta(t, 0.15, words[0].BBox.Y2, 1e-6)
	assert.InDelta(t, 0.9, words[0].Confidence, 1e-6)

	assert.Equal(t, "ARE", words[1].Text)

	assert.Equal(t, "YOU?", words[2].Text)
	assert.InDelta(t, 0.1, words[2].BBox.X1, 1e-9)
	assert.InDelta(t, 0.2, words[2].BBox.Y1, 1e-9)
	assert.InDelta(t, 0.3, words[2].BBox.X2, 1e-9)
	assert.InDelta(t, 0.25, words[2].BBox.Y2, 1e-9)
}

func TestWordsFromProtoSkipsUnusableTokens(t *testing.T) {
	doc := &documentaipb.Document{
		Text: "   HEY",
		Pages: []*documentaipb.Document_Page{{
			Tokens: []*documentaipb.Document_Page_Token{
				normalizedToken(0, 3, 0.1, 0.1, 0.2, 0.2, 0.9),
				{Layout: &documentaipb.Document_Page_Layout{TextAnchor: anchor(3, 6)}},
			},
		}},
	}

	words, err := WordsFromProto(doc, doc.Pages[0])

	require.NoError(t, err)
	assert.Empty(t, words)

	_, err = WordsFromProto(doc, nil)
	assert.Error(t, err)
}

func TestTextFromLayoutClampsSegments(t *testing.T) {
	layout := &documentaipb.Document_Page_Layout{TextAnchor: anchor(4, 99)}

	assert.Equal(t, "mundo", textFromLayout(layout, "olá mundo"))
	assert.Empty(t, textFromLayout(nil, "text"))
}

func TestDominantLanguage(t *testing.T) {
	doc := samplePage()
	doc.Pages[0].Tokens[0].DetectedLanguages = []*documentaipb.Document_Page_DetectedLanguage{{LanguageCode: "pt"}}
	doc.Pages[0].Tokens[1].DetectedLanguages = []*documentaipb.Document_Page_DetectedLanguage{{LanguageCode: "pt"}}

	assert.Equal(t, "pt", DominantLanguage(doc))
	assert.Empty(t, DominantLanguage(&documentaipb.Document{}))
}

func TestConfig(t *testing.T) {
	cfg := Config{ProjectID: "comics", Location: "eu", ProcessorID: "abc123"}

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "projects/comics/locations/eu/processors/abc123", cfg.ProcessorName())
	assert.Equal(t, "eu-documentai.googleapis.com:443", cfg.Endpoint())

	assert.Error(t, Config{Location: "eu", ProcessorID: "x"}.Validate())
	assert.Error(t, Config{ProjectID: "p", ProcessorID: "x"}.Validate())
	assert.Error(t, Config{ProjectID: "p", Location: "eu"}.Validate())
}

func writePNG(t *testing.T, path string, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return buf.Bytes()
}

func TestRecognize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page-01.png")
	data := writePNG(t, path, 40, 60)

	proc := &fakeProcessor{doc: samplePage()}
	client := newClient(Config{
		ProjectID: "comics", Location: "us", ProcessorID: "ocr",
		DumpDir: filepath.Join(dir, "debug"),
	}, proc)

	words, err := client.Recognize(context.Background(), path)

	require.NoError(t, err)
	assert.Len(t, words, 3)
	assert.Equal(t, "projects/comics/locations/us/processors/ocr", proc.req.Name)
	raw := proc.req.GetRawDocument()
	require.NotNil(t, raw)
	assert.Equal(t, "image/png", raw.MimeType)
	assert.Equal(t, data, raw.Content)
	assert.True(t, proc.req.SkipHumanReview)
	assert.FileExists(t, filepath.Join(dir, "debug", "page-01.documentai.json"))

	require.NoError(t, client.Close())
	assert.True(t, proc.closed)
}

func TestRecognizeErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.png")
	writePNG(t, path, 10, 10)
	cfg := Config{ProjectID: "p", Location: "us", ProcessorID: "x"}

	_, err := newClient(cfg, &fakeProcessor{err: errors.New("quota exceeded")}).Recognize(context.Background(), path)
	assert.ErrorContains(t, err, "quota exceeded")

	_, err = newClient(cfg, &fakeProcessor{doc: &documentaipb.Document{}}).Recognize(context.Background(), path)
	assert.ErrorContains(t, err, "no pages")

	_, err = newClient(cfg, &fakeProcessor{}).Recognize(context.Background(), filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not an image"), 0644))
	_, err = newClient(cfg, &fakeProcessor{}).Recognize(context.Background(), filepath.Join(dir, "notes.txt"))
	assert.ErrorContains(t, err, "decode")
}

func TestPrepareImageDownscales(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.png")
	data := writePNG(t, path, 200, 100)

	out, mimeType, err := prepareImage(data, 5000)

	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	cfg, err := png.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)

	same, _, err := prepareImage(data, DefaultMaxPixels)
	require.NoError(t, err)
	assert.Equal(t, data, same)
}

func TestToJSON(t *testing.T) {
	out, err := ToJSON(&documentaipb.Document{Text: "HEY"})
	require.NoError(t, err)
	assert.Contains(t, out, `"HEY"`)

	out, err = ToJSON(map[string]int{"words": 3})
	require.NoError(t, err)
	assert.Contains(t, out, `"words": 3`)
}
