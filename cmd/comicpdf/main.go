// comicpdf builds a searchable PDF of a translated comic page.
//
// The page image is placed full-size on a PDF page and the translated text of
// every block is laid over it as an invisible text layer, at the position the
// renderer would draw it. With -compose the translations are first drawn onto
// the image, otherwise the image is used as given (for example an output of
// comictrans).
//
// Usage:
//
//	comicpdf -image page.png -translated page_text_translated.json -output page.pdf [options]
//
// Required flags:
//
//	-image string       Page image
//	-translated string  Translated text JSON file
//	-output string      Output PDF path
//
// Options:
//
//	-compose            Erase the original text and draw the translation before assembling
//	-font string        TTF font used for layout, the embedded font when empty
//	-lang string        Language of the text layer (default "und")
//	-hocr string        Also save the text layer as hOCR
//	-debug              Show the text layer in red
//	-overwrite          Overwrite the output PDF if it already exists
//
// Example:
//
//	comicpdf -image data/output/page-3_translated.png \
//	  -translated data/translated_text/page-3_text_translated.json -output page-3.pdf
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gardar/comictrans/pkg/hocr"
	"github.com/gardar/comictrans/pkg/pdfocr"
	"github.com/gardar/comictrans/pkg/render"
	"github.com/gardar/comictrans/pkg/textblock"
)

func main() {
	imagePath := flag.String("image", "", "Page image")
	translatedPath := flag.String("translated", "", "Translated text JSON file")
	pdfPath := flag.String("output", "", "Output PDF path")
	compose := flag.Bool("compose", false, "Draw the translations onto the image first")
	fontPath := flag.String("font", "", "TTF font used for layout")
	lang := flag.String("lang", "und", "Language of the text layer")
	hocrPath := flag.String("hocr", "", "Path to save the text layer as hOCR")
	debug := flag.Bool("debug", false, "Enable debug mode")
	overwriteOutput := flag.Bool("overwrite", false, "Overwrite the output PDF if it already exists")
	flag.Parse()

	if *imagePath == "" || *translatedPath == "" || *pdfPath == "" {
		fmt.Println("Error: Must provide -image, -translated and -output")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if _, err := os.Stat(*pdfPath); err == nil && !*overwriteOutput {
		fmt.Printf("Output file %s already exists. Use -overwrite to overwrite.\n", *pdfPath)
		os.Exit(1)
	}

	img, format, err := render.ReadImage(*imagePath)
	if err != nil {
		fmt.Printf("Failed to read image: %v\n", err)
		os.Exit(1)
	}
	blocks, err := textblock.LoadTranslatedBlocks(*translatedPath)
	if err != nil {
		fmt.Printf("Failed to read translated text: %v\n", err)
		os.Exit(1)
	}

	opts := render.Options{}
	if *fontPath != "" {
		if opts.Font, err = render.LoadFont(*fontPath); err != nil {
			fmt.Printf("Failed to load font: %v\n", err)
			os.Exit(1)
		}
	}
	composer, err := render.NewComposer(opts)
	if err != nil {
		fmt.Printf("Failed to create composer: %v\n", err)
		os.Exit(1)
	}

	size := img.Bounds().Size()
	var placements []render.Placement
	if *compose {
		img, placements, err = composer.Compose(img, blocks)
		if err != nil {
			fmt.Printf("Failed to compose page: %v\n", err)
			os.Exit(1)
		}
	} else {
		placements = composer.Plan(size, blocks)
	}

	imgBytes, err := render.EncodeImage(img, render.OutputFormat(format))
	if err != nil {
		fmt.Printf("Failed to encode image: %v\n", err)
		os.Exit(1)
	}

	doc := render.PageHOCR(filepath.Base(*imagePath), size, placements, *lang)

	if *hocrPath != "" {
		html, err := hocr.GenerateHOCRDocument(doc)
		if err != nil {
			fmt.Printf("Failed to generate hOCR: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*hocrPath, []byte(html), 0644); err != nil {
			fmt.Printf("Failed to write hOCR: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote hOCR to %s\n", *hocrPath)
	}

	config := pdfocr.DefaultConfig()
	config.Debug = *debug
	config.Logger = os.Stderr

	finalPDF, err := pdfocr.AssembleWithOCR(doc, [][]byte{imgBytes}, config)
	if err != nil {
		fmt.Printf("Failed to assemble PDF: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*pdfPath, finalPDF, 0644); err != nil {
		fmt.Printf("Failed to write PDF: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d text blocks to %s\n", len(placements), *pdfPath)
}
