package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/comictrans/pkg/grouping"
	"github.com/gardar/comictrans/pkg/render"
	"github.com/gardar/comictrans/pkg/textblock"
	"github.com/gardar/comictrans/pkg/translate"
)

type fakeRecognizer struct {
	words []textblock.WordDetection
	err   error
	calls int
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ string) ([]textblock.WordDetection, error) {
	f.calls++
	return f.words, f.err
}

// fakeTranslator translates from a table and can report a source language
type fakeTranslator struct {
	table    map[string]string
	detected string
}

func (f *fakeTranslator) Translate(_ context.Context, text, _ string) (string, error) {
	out, ok := f.table[text]
	if !ok {
		return "", errors.New("model unavailable")
	}
	return out, nil
}

func (f *fakeTranslator) DetectLanguage(_ context.Context, _ string) (string, error) {
	return f.detected, nil
}

type fakeDownloader struct {
	src string
	dir string
	err error
}

func (f *fakeDownloader) Download(_ context.Context, _, pageName string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, err := os.ReadFile(f.src)
	if err != nil {
		return "", err
	}
	path := filepath.Join(f.dir, pageName+".png")
	return path, os.WriteFile(path, data, 0644)
}

func pageWords() []textblock.WordDetection {
	return []textblock.WordDetection{
		{Text: "A", BBox: textblock.NewBBox(0.1, 0.1, 0.2, 0.15), Confidence: 0.9},
		{Text: "B", BBox: textblock.NewBBox(0.22, 0.1, 0.3, 0.15), Confidence: 0.8},
	}
}

func writePage(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 400, 300))
	for y := 0; y < 300; y++ {
		for x := 0; x < 400; x++ {
			img.Set(x, y, color.White)
		}
	}
	// dark "ink" inside the first word box
	for y := 32; y < 44; y++ {
		for x := 42; x < 78; x++ {
			img.Set(x, y, color.Black)
		}
	}
	path := filepath.Join(dir, "page-01.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

type fixture struct {
	env        *Env
	hook       *test.Hook
	recognizer *fakeRecognizer
	translator *fakeTranslator
	image      string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	env := &Env{Dirs: NewDirs(filepath.Join(root, "data")), Log: logger}
	require.NoError(t, env.Ensure())

	return &fixture{
		env:        env,
		hook:       hook,
		recognizer: &fakeRecognizer{words: pageWords()},
		translator: &fakeTranslator{table: map[string]string{"A B": "OLÁ"}, detected: "en"},
		image:      writePage(t, root),
	}
}

func (f *fixture) pipeline(t *testing.T, opts Options) *Pipeline {
	t.Helper()
	composer, err := render.NewComposer(render.Options{})
	require.NoError(t, err)
	if opts.TargetLang == "" {
		opts.TargetLang = "pt"
	}
	return New(f.env, Stages{
		Downloader: &fakeDownloader{src: f.image, dir: f.env.Dirs.Downloads},
		Recognizer: f.recognizer,
		Grouper:    grouping.LineProximity{},
		Translator: f.translator,
		Composer:   composer,
	}, opts)
}

func TestProcessPageLocalImage(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, Options{WriteHOCR: true, WritePDF: true})

	res, err := p.ProcessPage(context.Background(), Request{ImagePath: f.image})

	require.NoError(t, err)
	assert.Equal(t, Composed, res.State)
	assert.Equal(t, "page-01", res.Page)
	assert.Equal(t, filepath.Join(f.env.Dirs.Extracted, "page-01_text.json"), res.ExtractedPath)
	assert.Equal(t, filepath.Join(f.env.Dirs.Translated, "page-01_text_translated.json"), res.TranslatedPath)
	assert.Equal(t, filepath.Join(f.env.Dirs.Output, "page-01_translated.png"), res.Output.Image)
	assert.FileExists(t, res.Output.HOCR)
	assert.FileExists(t, res.Output.PDF)

	extracted, err := textblock.LoadTextBlocks(res.ExtractedPath)
	require.NoError(t, err)
	require.Len(t, extracted, 1)
	assert.Equal(t, "A B", extracted[0].Text)
	assert.Equal(t, textblock.NewBBox(0.1, 0.1, 0.3, 0.15), extracted[0].BBox)

	translated, err := textblock.LoadTranslatedBlocks(res.TranslatedPath)
	require.NoError(t, err)
	require.Len(t, translated, 1)
	assert.Equal(t, "OLÁ", translated[0].TranslatedText)

	out, format, err := render.ReadImage(res.Output.Image)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, image.Rect(0, 0, 400, 300), out.Bounds())
	// the ink at the word box edge is erased
	r, g, b, _ := out.At(43, 33).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, b})
}

func TestProcessPageDownloads(t *testing.T) {
	f := newFixture(t)

	res, err := f.pipeline(t, Options{}).ProcessPage(context.Background(),
		Request{URL: "https://comics.example/read/42", PageName: "chapter 1/page 2"})

	require.NoError(t, err)
	assert.Equal(t, "chapter_1_page_2", res.Page)
	assert.Equal(t, filepath.Join(f.env.Dirs.Downloads, "chapter_1_page_2.png"), res.ImagePath)
	assert.Equal(t, Composed, res.State)
	assert.Empty(t, res.Output.PDF)
}

func TestProcessPageDownloadFailure(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, Options{})
	p.stages.Downloader = &fakeDownloader{err: errors.New("404 Not Found")}

	res, err := p.ProcessPage(context.Background(), Request{URL: "https://comics.example/p/1"})

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, DownloadFailure, pe.Kind)
	assert.Equal(t, Pending, res.State)
	assert.Equal(t, 0, f.recognizer.calls)

	entry := f.hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "download", entry.Data["stage"])
	assert.Equal(t, "1", entry.Data["page"])
}

func TestProcessPageNoText(t *testing.T) {
	f := newFixture(t)
	f.recognizer.words = nil

	res, err := f.pipeline(t, Options{}).ProcessPage(context.Background(), Request{ImagePath: f.image})

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ExtractionFailure, pe.Kind)
	assert.Equal(t, Downloaded, res.State)
	assert.NoFileExists(t, filepath.Join(f.env.Dirs.Extracted, "page-01_text.json"))
}

func TestProcessPageOCRError(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("tesseract crashed")
	f.recognizer.err = boom

	_, err := f.pipeline(t, Options{}).ProcessPage(context.Background(), Request{ImagePath: f.image})

	assert.ErrorIs(t, err, boom)
}

func TestProcessPageConfidenceFloor(t *testing.T) {
	f := newFixture(t)

	_, err := f.pipeline(t, Options{MinConfidence: 0.95}).ProcessPage(context.Background(), Request{ImagePath: f.image})

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ExtractionFailure, pe.Kind)
}

func TestProcessPageTranslationFailureWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.recognizer.words = append(pageWords(), textblock.WordDetection{
		Text: "UNKNOWN", BBox: textblock.NewBBox(0.5, 0.8, 0.7, 0.85), Confidence: 0.9,
	})

	res, err := f.pipeline(t, Options{}).ProcessPage(context.Background(), Request{ImagePath: f.image})

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, TranslationFailure, pe.Kind)
	var be *translate.BlockError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 1, be.Index)
	assert.Equal(t, Extracted, res.State)
	assert.FileExists(t, res.ExtractedPath)
	assert.Empty(t, res.TranslatedPath)
	assert.NoFileExists(t, filepath.Join(f.env.Dirs.Translated, "page-01_text_translated.json"))
	assert.NoFileExists(t, filepath.Join(f.env.Dirs.Output, "page-01_translated.png"))
}

func TestProcessPageResumesFromExtracted(t *testing.T) {
	f := newFixture(t)
	extracted := filepath.Join(t.TempDir(), "fixed_text.json")
	require.NoError(t, textblock.SaveTextBlocks(extracted, []textblock.TextBlock{textblock.NewBlock(pageWords())}))

	res, err := f.pipeline(t, Options{}).ProcessPage(context.Background(),
		Request{ImagePath: f.image, ExtractedPath: extracted})

	require.NoError(t, err)
	assert.Equal(t, Composed, res.State)
	assert.Equal(t, extracted, res.ExtractedPath)
	assert.Equal(t, 0, f.recognizer.calls)
}

func TestProcessPageResumeRejectsBadFile(t *testing.T) {
	f := newFixture(t)
	bad := filepath.Join(t.TempDir(), "bad_text.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"kind":"text_block"}]`), 0644))

	res, err := f.pipeline(t, Options{}).ProcessPage(context.Background(), Request{ImagePath: f.image, ExtractedPath: bad})

	var se *textblock.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 0, se.Index)
	assert.Equal(t, Downloaded, res.State)
}

func TestProcessPageDetectsSource(t *testing.T) {
	f := newFixture(t)

	_, err := f.pipeline(t, Options{DetectSource: true}).ProcessPage(context.Background(), Request{ImagePath: f.image})
	require.NoError(t, err)

	var found bool
	for _, e := range f.hook.AllEntries() {
		if e.Message == "Detected source language" {
			found = true
			assert.Equal(t, "en", e.Data["source"])
			assert.Equal(t, "English", e.Data["name"])
		}
	}
	assert.True(t, found)
}

func TestProcessPageInvalidRequest(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, Options{})

	_, err := p.ProcessPage(context.Background(), Request{PageName: "p"})
	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, DownloadFailure, pe.Kind)

	_, err = p.ProcessPage(context.Background(), Request{ImagePath: filepath.Join(t.TempDir(), "gone.png")})
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, DownloadFailure, pe.Kind)

	_, err = p.ProcessPage(context.Background(), Request{ImagePath: f.image, TargetLang: "klingon"})
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, TranslationFailure, pe.Kind)
}

func TestComposeRejectsCorruptTranslation(t *testing.T) {
	f := newFixture(t)
	bad := filepath.Join(t.TempDir(), "x_text_translated.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not":"a list"}`), 0644))

	_, err := f.pipeline(t, Options{}).Compose(context.Background(), f.image, bad, "x", "pt")

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, CompositionFailure, pe.Kind)
}

func TestPageName(t *testing.T) {
	cases := []struct {
		req  Request
		want string
	}{
		{Request{PageName: "page 7"}, "page_7"},
		{Request{ImagePath: "/data/downloads/issue-3.jpg"}, "issue-3"},
		{Request{ExtractedPath: "extracted_text/issue-3_text.json"}, "issue-3"},
		{Request{URL: "https://comics.example/read/ch1/page-04.html?x=1"}, "page-04"},
		{Request{URL: "https://comics.example/"}, "comics.example"},
	}
	for _, c := range cases {
		got, err := PageName(c.req)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}

	_, err := PageName(Request{})
	assert.Error(t, err)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "composed", Composed.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestErrorFormatting(t *testing.T) {
	cause := errors.New("timeout")
	err := NewDownloadError("p1", "failed to download page", cause)

	assert.Equal(t, "DOWNLOAD_FAILED: page p1: failed to download page: timeout", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "EXTRACTION_FAILED: page p1: no text detected", NewExtractionError("p1", "no text detected", nil).Error())
}
