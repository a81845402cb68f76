// Package download fetches comic page images.
//
// A page URL may point at the image itself or at an HTML reader page. In the
// second case the page is parsed and the comic image is located by its CSS
// class and source attribute (img.img-fluid[ng-src] on the usual readers),
// resolved against the page URL and fetched.
package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "golang.org/x/image/webp"
	"golang.org/x/net/html"
)

// Defaults
const (
	DefaultTimeout    = 30 * time.Second
	DefaultImageClass = "img-fluid"
	DefaultUserAgent  = "comictrans/1.0"
	DefaultMaxBytes   = 50 << 20
)

// DefaultSourceAttrs are the attributes searched for the image URL, in order
var DefaultSourceAttrs = []string{"ng-src", "data-src", "src"}

// ErrNoImage is returned when a reader page has no matching <img>
var ErrNoImage = errors.New("no comic image found on page")

// StatusError reports a non-200 response
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Options configures a Downloader
type Options struct {
	Timeout     time.Duration
	ImageClass  string   // CSS class of the comic <img>; empty matches any <img>
	SourceAttrs []string // attributes holding the image URL
	UserAgent   string
	MaxBytes    int64
}

// Downloader saves page images into one directory
type Downloader struct {
	client *http.Client
	dir    string
	opts   Options
}

// New creates a Downloader writing into dir
func New(dir string, opts Options) *Downloader {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if len(opts.SourceAttrs) == 0 {
		opts.SourceAttrs = DefaultSourceAttrs
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	return &Downloader{
		client: &http.Client{Timeout: opts.Timeout},
		dir:    dir,
		opts:   opts,
	}
}

// Download fetches the image for pageURL and saves it as {dir}/{pageName}{ext},
// the extension following the detected image format. It returns the saved path.
func (d *Downloader) Download(ctx context.Context, pageURL, pageName string) (string, error) {
	if pageName == "" {
		return "", fmt.Errorf("page name is required")
	}

	body, contentType, err := d.get(ctx, pageURL)
	if err != nil {
		return "", err
	}

	if !isImage(contentType, body) {
		imageURL, err := FindImage(bytes.NewReader(body), pageURL, d.opts.ImageClass, d.opts.SourceAttrs)
		if err != nil {
			return "", err
		}
		body, _, err = d.get(ctx, imageURL)
		if err != nil {
			return "", err
		}
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("downloaded file is not a supported image: %w", err)
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}
	path := filepath.Join(d.dir, pageName+Extension(format))
	if err := os.WriteFile(path, body, 0644); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return path, nil
}

func (d *Downloader) get(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.opts.UserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, d.opts.MaxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", rawURL, err)
	}
	if int64(len(body)) > d.opts.MaxBytes {
		return nil, "", fmt.Errorf("response from %s is larger than %d bytes", rawURL, d.opts.MaxBytes)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// isImage reports whether a response is an image, by its declared type or,
// when the server sends none, by sniffing the content
func isImage(contentType string, body []byte) bool {
	if contentType == "" || strings.HasPrefix(contentType, "application/octet-stream") {
		contentType = http.DetectContentType(body)
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/")
}

// Extension returns the file extension for an image.DecodeConfig format name
func Extension(format string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	case "":
		return ".img"
	default:
		return "." + format
	}
}

// FindImage returns the absolute URL of the first <img> carrying class
// (any <img> when class is empty) and a usable value in one of attrs.
// Unrendered template values such as "{{page.url}}" are ignored.
func FindImage(r io.Reader, pageURL, class string, attrs []string) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL: %w", err)
	}

	var found string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "img" && (class == "" || hasClass(n, class)) {
			for _, name := range attrs {
				v := strings.TrimSpace(getAttrVal(n, name))
				if v == "" || strings.Contains(v, "{{") {
					continue
				}
				ref, err := url.Parse(v)
				if err != nil {
					continue
				}
				found = base.ResolveReference(ref).String()
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if found == "" {
		return "", ErrNoImage
	}
	return found, nil
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttrVal(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func getAttrVal(n *html.Node, attrName string) string {
	for _, attr := range n.Attr {
		if attr.Key == attrName {
			return attr.Val
		}
	}
	return ""
}
