package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/sson-dev/sson/path"
	"github.com/sson-dev/sson/token"
)

// ImageMeta is a converter handler for elements whose value is a data: URI
// holding a base64-encoded image. It replaces the element with a compact
// JSON object describing the image's width, height, and format, decoding
// just enough of the payload to read the format header rather than fully
// rendering it.
type ImageMeta struct {
	buf bytes.Buffer
}

// NewImageMeta returns an ImageMeta handler.
func NewImageMeta() *ImageMeta {
	return &ImageMeta{}
}

func (h *ImageMeta) IsConverter() bool { return true }

func (h *ImageMeta) Start(path.Path, int, token.Token) ([]byte, error) {
	h.buf.Reset()
	return nil, nil
}

func (h *ImageMeta) Feed(b []byte, _ int) ([]byte, error) {
	h.buf.Write(b)
	return nil, nil
}

func (h *ImageMeta) End(path.Path, int, token.Token) ([]byte, error) {
	var raw string
	if err := json.Unmarshal(h.buf.Bytes(), &raw); err != nil {
		return nil, Wrap("imagemeta: matched value is not a JSON string", err)
	}
	mimeType, b64, ok := parseDataURI(raw)
	if !ok {
		return nil, &Error{Msg: "imagemeta: value is not a data: URI"}
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, Wrap("imagemeta: decode base64 payload", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, Wrap("imagemeta: decode image header", err)
	}
	out, err := json.Marshal(map[string]any{
		"width":  cfg.Width,
		"height": cfg.Height,
		"format": format,
		"mime":   mimeType,
	})
	if err != nil {
		return nil, Wrap("imagemeta: marshal result", err)
	}
	return out, nil
}

func parseDataURI(uri string) (mimeType, b64Payload string, ok bool) {
	value, found := strings.CutPrefix(uri, "data:")
	if !found {
		return "", "", false
	}
	mimeType, rest, found := strings.Cut(value, ";base64,")
	if !found {
		return "", "", false
	}
	return mimeType, rest, true
}
