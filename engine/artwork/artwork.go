// Package artwork downloads cover images and normalizes them for tag
// embedding.
package artwork

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"

	"github.com/dvalderas/playtag/engine"
	"github.com/dvalderas/playtag/engine/provider"
)

// Fetcher downloads cover art and downscales anything larger than MaxDim
// pixels on its longest side. Images that cannot be decoded are embedded
// as-is rather than dropped.
type Fetcher struct {
	Caller *provider.HTTPCaller
	MaxDim int
	Logger engine.Logger
}

func New(caller *provider.HTTPCaller, maxDim int, log engine.Logger) *Fetcher {
	return &Fetcher{Caller: caller, MaxDim: maxDim, Logger: log}
}

// Fetch retrieves the image at url, re-encoded as JPEG when a downscale
// was needed.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	raw, err := f.Caller.GetBytes(ctx, url)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		f.Logger.Debug("cover not decodable, embedding raw", "url", url, "error", err)
		return raw, nil
	}

	bounds := img.Bounds()
	longest := bounds.Dx()
	if bounds.Dy() > longest {
		longest = bounds.Dy()
	}
	if f.MaxDim <= 0 || longest <= f.MaxDim {
		return raw, nil
	}

	scaled := resize.Thumbnail(uint(f.MaxDim), uint(f.MaxDim), img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: 90}); err != nil {
		return raw, nil
	}
	return buf.Bytes(), nil
}
