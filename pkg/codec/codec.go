// Package codec converts between encoded image payloads and NRGBA buffers.
//
// Decoding accepts png, jpeg and gif through the standard registry, bmp and
// tiff through golang.org/x/image, and WebP through x/image/webp with a libwebp
// fallback for variants the pure Go decoder rejects. Encoding is lossless
// only so partial alpha survives export.
package codec

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	xwebp "golang.org/x/image/webp"

	"github.com/menta2k/sticker-kit/pkg/types"
)

// Format is a lossless output encoding
type Format string

const (
	PNG  Format = "png"
	WebP Format = "webp" // always lossless
)

// ParseFormat maps a format name or file extension to a Format
func ParseFormat(name string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(name), ".") {
	case "", "png":
		return PNG, nil
	case "webp":
		return WebP, nil
	}
	return "", fmt.Errorf("%w: unsupported output format %q (png or lossless webp only)", types.ErrInvalidConfig, name)
}

// Codec decodes uploads and encodes finished stickers
type Codec struct {
	format     Format
	maxBytes   int64
	httpClient *http.Client
}

// DefaultMaxBytes bounds a single payload read from a file or URL
const DefaultMaxBytes = 32 << 20

// New creates a PNG codec
func New() *Codec {
	return NewWithFormat(PNG)
}

// NewWithFormat creates a codec encoding to the given format
func NewWithFormat(format Format) *Codec {
	return &Codec{
		format:   format,
		maxBytes: DefaultMaxBytes,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Format returns the output format
func (c *Codec) Format() Format {
	return c.format
}

// Extension returns the output file extension including the dot
func (c *Codec) Extension() string {
	return "." + string(c.format)
}

// Decode decodes an encoded image into an NRGBA buffer anchored at (0,0).
// EXIF orientation of JPEG uploads is applied.
func (c *Codec) Decode(data []byte) (*image.NRGBA, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", types.ErrDecode)
	}

	var (
		img image.Image
		err error
	)
	if isWebP(data) {
		img, err = xwebp.Decode(bytes.NewReader(data))
		if err != nil {
			// Fallback: libwebp handles extended WebP the pure Go decoder rejects
			if wimg, werr := webp.DecodeRGBA(data); werr == nil {
				img = straightRGBA(wimg)
				err = nil
			}
		}
	} else {
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrDecode, err)
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image", types.ErrDecode)
	}
	return imaging.Clone(img), nil
}

// Encode encodes img in the codec's lossless format
func (c *Codec) Encode(img image.Image) ([]byte, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", types.ErrEncode)
	}

	var buf bytes.Buffer
	switch c.format {
	case WebP:
		// libwebp expects straight alpha, which is what NRGBA holds
		n := imaging.Clone(img)
		rgba := &image.RGBA{Pix: n.Pix, Stride: n.Stride, Rect: n.Rect}
		if err := webp.Encode(&buf, rgba, &webp.Options{Lossless: true}); err != nil {
			return nil, fmt.Errorf("%w: webp: %v", types.ErrEncode, err)
		}
	default:
		if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
			return nil, fmt.Errorf("%w: png: %v", types.ErrEncode, err)
		}
	}
	return buf.Bytes(), nil
}

// LoadFile reads and decodes an image file
func (c *Codec) LoadFile(path string) (*image.NRGBA, error) {
	data, err := c.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return c.Decode(data)
}

// ReadFile reads a payload from disk, bounded by the codec's size limit
func (c *Codec) ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer f.Close()
	return c.readLimited(f)
}

// Fetch downloads a payload over http or https
func (c *Codec) Fetch(ctx context.Context, imageURL string) ([]byte, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %s (only http and https are supported)", parsedURL.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "sticker-kit/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d %s", resp.StatusCode, resp.Status)
	}
	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("URL does not point to an image (Content-Type: %s)", contentType)
	}
	return c.readLimited(resp.Body)
}

// Read returns the payload behind source, which is a file path or an
// http(s) URL
func (c *Codec) Read(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return c.Fetch(ctx, source)
	}
	return c.ReadFile(source)
}

func isWebP(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP"
}

// straightRGBA relabels libwebp output, which carries straight alpha in an
// image.RGBA, as the NRGBA it really is
func straightRGBA(m *image.RGBA) *image.NRGBA {
	return &image.NRGBA{Pix: m.Pix, Stride: m.Stride, Rect: m.Rect}
}

func (c *Codec) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("%w: payload larger than %d bytes", types.ErrDecode, c.maxBytes)
	}
	return data, nil
}
