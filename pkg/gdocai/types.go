package gdocai

import (
	"context"
	"fmt"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/googleapis/gax-go/v2"
	"github.com/sirupsen/logrus"
)

// DefaultMaxPixels is the largest image (width x height) uploaded unscaled
const DefaultMaxPixels = 20_000_000

// Config identifies the Document AI processor used for OCR
type Config struct {
	ProjectID       string
	Location        string // e.g. "us" or "eu"
	ProcessorID     string
	CredentialsFile string // empty uses GOOGLE_APPLICATION_CREDENTIALS
	MaxPixels       int    // 0 uses DefaultMaxPixels
	DumpDir         string // when set, raw responses are written here as JSON
	Logger          *logrus.Entry
}

// Validate checks that the processor is fully identified
func (c Config) Validate() error {
	switch {
	case c.ProjectID == "":
		return fmt.Errorf("document AI project ID is required")
	case c.Location == "":
		return fmt.Errorf("document AI location is required")
	case c.ProcessorID == "":
		return fmt.Errorf("document AI processor ID is required")
	}
	return nil
}

// ProcessorName returns the resource name of the processor
func (c Config) ProcessorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", c.ProjectID, c.Location, c.ProcessorID)
}

// Endpoint returns the regional API endpoint
func (c Config) Endpoint() string {
	return fmt.Sprintf("%s-documentai.googleapis.com:443", c.Location)
}

// processor is the part of the Document Processor client used here
type processor interface {
	ProcessDocument(ctx context.Context, req *documentaipb.ProcessRequest, opts ...gax.CallOption) (*documentaipb.ProcessResponse, error)
	Close() error
}
