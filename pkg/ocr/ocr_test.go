package ocr

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sidecar = `<html xmlns="http://www.w3.org/1999/xhtml" lang="en">
 <body>
  <div class='ocr_page' id='page_1' title='image "page.png"; bbox 0 0 1000 500'>
   <span class='ocr_line' id='line_1_1' title="bbox 100 50 400 100">
    <span class='ocrx_word' id='word_1_1' title='bbox 100 50 200 100; x_wconf 90'>HEY</span>
    <span class='ocrx_word' id='word_1_2' title='bbox 250 50 400 100; x_wconf 70'>YOU!</span>
   </span>
  </div>
 </body>
</html>`

func TestHOCRFileSidecar(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.hocr"), []byte(sidecar), 0644))

	var engine Engine = HOCRFile{}
	words, err := engine.Recognize(context.Background(), filepath.Join(dir, "page.png"))

	require.NoError(t, err)
	require.Len(t, words, 2)
	assert.Equal(t, "HEY", words[0].Text)
	assert.InDelta(t, 0.1, words[0].BBox.X1, 1e-9)
	assert.InDelta(t, 0.2, words[0].BBox.Y2, 1e-9)
	assert.InDelta(t, 0.9, words[0].Confidence, 1e-9)
	assert.Equal(t, "YOU!", words[1].Text)
	assert.NoError(t, engine.Close())
}

func TestHOCRFileExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrected.html")
	require.NoError(t, os.WriteFile(path, []byte(sidecar), 0644))

	h := HOCRFile{Path: path}
	assert.Equal(t, path, h.SidecarPath("/elsewhere/page.jpg"))

	words, err := h.Recognize(context.Background(), "/elsewhere/page.jpg")
	require.NoError(t, err)
	assert.Len(t, words, 2)
}

func TestHOCRFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := HOCRFile{}.Recognize(context.Background(), filepath.Join(dir, "missing.png"))
	assert.ErrorContains(t, err, "failed to read hOCR file")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "blank.hocr"), []byte("<html><body></body></html>"), 0644))
	_, err = HOCRFile{}.Recognize(context.Background(), filepath.Join(dir, "blank.png"))
	assert.ErrorContains(t, err, "failed to parse hOCR")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = HOCRFile{}.Recognize(ctx, filepath.Join(dir, "blank.png"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSidecarPath(t *testing.T) {
	assert.Equal(t, filepath.Join("downloads", "page-01.hocr"), HOCRFile{}.SidecarPath(filepath.Join("downloads", "page-01.webp")))
}
