package extract

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/mwantia/treefs/data"
)

// ImageExtractor reads dimensions and pixel depth from image headers.
type ImageExtractor struct{}

func NewImageExtractor() *ImageExtractor {
	return &ImageExtractor{}
}

func (*ImageExtractor) Extract(ctx context.Context, item *data.Item, stagedPath string) error {
	if !data.MatchContentType(item.ContentType, "image/*") {
		return nil
	}

	file, err := os.Open(stagedPath)
	if err != nil {
		return err
	}
	defer file.Close()

	config, format, err := image.DecodeConfig(file)
	if err != nil {
		// Formats without a registered decoder (webp, svg, ...) are skipped
		if errors.Is(err, image.ErrFormat) {
			return nil
		}
		return fmt.Errorf("failed to decode image header: %w", err)
	}

	item.SetMeta(data.MetaImageType, format)
	item.SetMeta(data.MetaImageWidth, config.Width)
	item.SetMeta(data.MetaImageHeight, config.Height)
	item.SetMeta(data.MetaImageResolution, fmt.Sprintf("%dx%d", config.Width, config.Height))
	if depth := pixelDepth(config.ColorModel); depth > 0 {
		item.SetMeta(data.MetaImagePixelDepth, depth)
	}

	return nil
}

func pixelDepth(model color.Model) int {
	switch model {
	case color.GrayModel:
		return 8
	case color.Gray16Model:
		return 16
	case color.RGBAModel, color.NRGBAModel:
		return 32
	case color.RGBA64Model, color.NRGBA64Model:
		return 64
	case color.YCbCrModel, color.NYCbCrAModel:
		return 24
	case color.CMYKModel:
		return 32
	}

	if _, ok := model.(color.Palette); ok {
		return 8
	}
	return 0
}
