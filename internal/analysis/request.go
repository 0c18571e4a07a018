package analysis

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Sentinel errors surfaced to the HTTP layer.
var (
	// ErrNoImage is returned when a request carries no usable image reference.
	ErrNoImage = errors.New("no image URL or type provided")

	// ErrDuplicate is returned when the dedup gate rejects a repeat request.
	ErrDuplicate = errors.New("duplicate request")

	// ErrInvalidSource is returned when the request's type field names an
	// unknown image source.
	ErrInvalidSource = errors.New("invalid image source type")
)

// Request is an inbound analysis request. Two body shapes are accepted: the
// bookmarklet sends `{imageUrl|url, category?}`, the typed form sends
// `{type, imageUrl|imagePath|base64Image, category?}`.
type Request struct {
	Type        string `json:"type,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	URL         string `json:"url,omitempty"`
	ImagePath   string `json:"imagePath,omitempty"`
	Base64Image string `json:"base64Image,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Source types accepted in Request.Type.
const (
	SourceURL    = "url"
	SourceLocal  = "local"
	SourceBase64 = "base64"
)

// resolvedImage is a request's image after source resolution.
type resolvedImage struct {
	// Key is the deduplication and history key: the reference string
	// exactly as the caller gave it.
	Key string

	// Ref is what the vision API receives: a remote URL or a data URL.
	Ref string

	// LocalPath is set when the image came from the local filesystem.
	LocalPath string
}

// resolveImage maps a request onto the reference sent upstream. Local files
// are inlined as data URLs; raw base64 payloads get the data URL prefix.
func resolveImage(req Request) (resolvedImage, error) {
	switch req.Type {
	case SourceURL:
		if req.ImageURL == "" {
			return resolvedImage{}, ErrNoImage
		}
		return resolvedImage{Key: req.ImageURL, Ref: req.ImageURL}, nil

	case SourceLocal:
		if req.ImagePath == "" {
			return resolvedImage{}, ErrNoImage
		}
		data, err := os.ReadFile(req.ImagePath)
		if err != nil {
			return resolvedImage{}, fmt.Errorf("error reading image file: %w", err)
		}
		return resolvedImage{
			Key:       req.ImagePath,
			Ref:       "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data),
			LocalPath: req.ImagePath,
		}, nil

	case SourceBase64:
		if req.Base64Image == "" {
			return resolvedImage{}, ErrNoImage
		}
		ref := req.Base64Image
		if !strings.HasPrefix(ref, "data:") {
			ref = "data:image/jpeg;base64," + ref
		}
		return resolvedImage{Key: req.Base64Image, Ref: ref}, nil

	case "":
		ref := req.ImageURL
		if ref == "" {
			ref = req.URL
		}
		if ref == "" {
			return resolvedImage{}, ErrNoImage
		}
		return resolvedImage{Key: ref, Ref: ref}, nil

	default:
		return resolvedImage{}, fmt.Errorf("%w %q", ErrInvalidSource, req.Type)
	}
}
