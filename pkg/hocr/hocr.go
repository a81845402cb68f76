// Package hocr reads and writes hOCR, the HTML based format many OCR engines
// use to report recognized words with their positions.
//
// The object model is a reduced version of the hOCR hierarchy. Content areas
// and paragraphs are flattened away since page translation only needs
// lines and words:
//
// - HOCR: the document with its metadata and pages
// - Page: an 'ocr_page' element with its pixel bbox
// - Line: an 'ocr_line' element (or one of the line-like classes such as
// 'ocr_caption' and 'ocr_header')
// - Word: an 'ocrx_word' element with text, bbox and 'x_wconf' confidence
//
// Main Functions:
//
// - ParseHOCR: Parses hOCR HTML into the object model
// - Detections: Flattens a page into normalized word detections
// - GenerateHOCRDocument: Renders the object model back into hOCR HTML
package hocr
