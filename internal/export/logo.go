package export

import (
	"fmt"

	"github.com/h2non/bimg"
)

// logoMaxWidth bounds embedded logo bitmaps so a huge upload cannot balloon
// the PDF.
const logoMaxWidth = 480

// normalizeLogo converts a stored logo image to PNG and scales it down to
// maxWidth if needed. Generated logos arrive in whatever format the
// generation pipeline produced; the PDF embedder wants a predictable one.
func normalizeLogo(data []byte, maxWidth int) ([]byte, error) {
	img := bimg.NewImage(data)

	size, err := img.Size()
	if err != nil {
		return nil, fmt.Errorf("failed to read logo dimensions: %w", err)
	}

	opts := bimg.Options{Type: bimg.PNG}
	if size.Width > maxWidth {
		opts.Width = maxWidth
	}

	out, err := img.Process(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to convert logo: %w", err)
	}
	return out, nil
}
