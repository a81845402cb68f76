package gdocai

import (
	"context"
	"fmt"
	"io"
	"os"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// Client sends page images to one Document AI processor
type Client struct {
	cfg    Config
	proc   processor
	logger *logrus.Entry
}

// NewClient connects to the regional endpoint of the configured processor.
// The client is meant to be reused for every page and closed at exit.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	creds := cfg.CredentialsFile
	if creds == "" {
		creds = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	opts := []option.ClientOption{option.WithEndpoint(cfg.Endpoint())}
	if creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}

	proc, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}
	return newClient(cfg, proc), nil
}

func newClient(cfg Config, proc processor) *Client {
	if cfg.MaxPixels <= 0 {
		cfg.MaxPixels = DefaultMaxPixels
	}
	logger := cfg.Logger
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = logrus.NewEntry(l)
	}
	return &Client{cfg: cfg, proc: proc, logger: logger}
}

// Close releases the underlying connection
func (c *Client) Close() error {
	return c.proc.Close()
}

// ProcessImage sends image bytes to Document AI and returns the raw Document proto
func (c *Client) ProcessImage(ctx context.Context, data []byte, mimeType string) (*documentaipb.Document, error) {
	req := &documentaipb.ProcessRequest{
		Name: c.cfg.ProcessorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: mimeType,
			},
		},
		SkipHumanReview: true,
	}

	resp, err := c.proc.ProcessDocument(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to process document: %w", err)
	}
	if resp.GetDocument() == nil {
		return nil, fmt.Errorf("document AI returned an empty response")
	}
	return resp.Document, nil
}
