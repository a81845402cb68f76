package hocr

// HOCR represents an hOCR document
type HOCR struct {
	Title    string            // Document title
	Language string            // Document language
	Metadata map[string]string // ocr-system, ocr-capabilities and friends
	Pages    []Page            // Pages in the document
}

// Page is one page of recognized text
// Corresponds to hOCR element with class: 'ocr_page'
type Page struct {
	ID         string      // Unique identifier
	PageNumber int         // Page number in document
	ImageName  string      // Source image filename
	Lang       string      // Language code for this page
	BBox       BoundingBox // Page coordinates, in pixels of the source image
	Lines      []Line      // Lines in document order, whatever their parent element
	Words      []Word      // Words that have no line parent
}

// Class assign 'ocr_page' to 'Page' struct
func (Page) Class() string { return "ocr_page" }

// Line represents a line of text
// Corresponds to hOCR element with class: 'ocr_line' or one of lineClasses
type Line struct {
	ID       string      // Unique identifier
	Kind     string      // hOCR class of the element
	Lang     string      // Language code
	BBox     BoundingBox // Line coordinates
	Baseline string      // Baseline information
	Words    []Word      // Words in this line
}

// Class returns the hOCR class of the line, 'ocr_line' unless set otherwise
func (l Line) Class() string {
	if l.Kind == "" {
		return "ocr_line"
	}
	return l.Kind
}

// Word is a recognized word with bounding box
// Corresponds to hOCR element with class: 'ocrx_word'
type Word struct {
	ID         string      // Unique identifier
	Text       string      // The actual text content
	BBox       BoundingBox // Word coordinates
	Confidence float64     // Recognition confidence (0-100)
	Lang       string      // Language code
}

// Class assign 'ocrx_word' to 'Word' struct
func (Word) Class() string { return "ocrx_word" }

// lineClasses are the hOCR classes treated as text lines
var lineClasses = []string{"ocr_line", "ocr_caption", "ocr_textfloat", "ocr_header"}

// BoundingBox represents a rectangle in pixel coordinates
// Used to store hOCR 'bbox' property values
type BoundingBox struct {
	X1 float64 // Left coordinate
	Y1 float64 // Top coordinate
	X2 float64 // Right coordinate
	Y2 float64 // Bottom coordinate
}

// NewBoundingBox creates a bounding box from the x1, y1, x2, y2 values of an
// hOCR 'bbox' property
func NewBoundingBox(x1, y1, x2, y2 float64) BoundingBox {
	return BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Width of the box
func (b BoundingBox) Width() float64 { return b.X2 - b.X1 }

// Height of the box
func (b BoundingBox) Height() float64 { return b.Y2 - b.Y1 }
