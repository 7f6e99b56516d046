// Package extract enriches uploaded items with properties read from their staged content.
package extract

import (
	"context"

	"github.com/mwantia/treefs/data"
)

// Extractor fills item.MetaProperties from the staged copy of an upload.
// Implementations ignore content types they do not understand.
type Extractor interface {
	Extract(ctx context.Context, item *data.Item, stagedPath string) error
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, item *data.Item, stagedPath string) error

func (f ExtractorFunc) Extract(ctx context.Context, item *data.Item, stagedPath string) error {
	return f(ctx, item, stagedPath)
}

type chain []Extractor

// Chain runs every extractor in order, even after a failure, and joins their errors.
func Chain(extractors ...Extractor) Extractor {
	return chain(extractors)
}

func (c chain) Extract(ctx context.Context, item *data.Item, stagedPath string) error {
	errs := data.Errors{}
	for _, extractor := range c {
		if err := ctx.Err(); err != nil {
			return err
		}
		errs.Add(extractor.Extract(ctx, item, stagedPath))
	}

	return errs.Errors()
}

// Default returns the extractors used when none are configured.
func Default() Extractor {
	return Chain(NewSniffExtractor(), NewImageExtractor())
}

// Nop does nothing.
var Nop Extractor = ExtractorFunc(func(context.Context, *data.Item, string) error {
	return nil
})
