package extract

import (
	"context"

	"github.com/gabriel-vasile/mimetype"
	"github.com/mwantia/treefs/data"
)

// SniffExtractor records the content type detected from the leading bytes of the upload.
type SniffExtractor struct{}

func NewSniffExtractor() *SniffExtractor {
	return &SniffExtractor{}
}

func (*SniffExtractor) Extract(ctx context.Context, item *data.Item, stagedPath string) error {
	detected, err := Detect(stagedPath)
	if err != nil {
		return err
	}

	item.SetMeta(data.MetaDetectedContentType, detected)
	return nil
}

// Detect sniffs the content type of a file, without parameters such as charset.
func Detect(path string) (string, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", err
	}

	return data.BaseContentType(mtype.String()), nil
}
