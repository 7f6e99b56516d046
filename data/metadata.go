package data

import (
	"encoding/json"
	"maps"
)

// Known enrichment keys stored in MetaProperties.
const (
	// Image properties
	MetaImageType       = "imageType"
	MetaImageWidth      = "imageWidth"
	MetaImageHeight     = "imageHeight"
	MetaImageResolution = "imageResolution"
	MetaImagePixelDepth = "imagePixelDepth"

	// Video properties
	MetaVideoDuration    = "videoDuration"
	MetaVideoCodec       = "videoCodec"
	MetaVideoBitrate     = "videoBitrate"
	MetaVideoFramerate   = "videoFramerate"
	MetaVideoPixelFormat = "videoPixelFormat"
	MetaVideoRatio       = "videoRatio"
	MetaVideoRotation    = "videoRotation"
	MetaVideoWidth       = "videoWidth"
	MetaVideoHeight      = "videoHeight"

	// Content type detected from the bytes themselves
	MetaDetectedContentType = "detectedContentType"
)

// MetaProperties is the dynamic metadata bag of an item.
// Backends persist it as an opaque JSON document.
type MetaProperties map[string]any

// Get safely retrieves a property with a default value.
func (mp MetaProperties) Get(key string, defaultValue any) any {
	if mp == nil {
		return defaultValue
	}

	if value, exists := mp[key]; exists {
		return value
	}

	return defaultValue
}

// Has checks if a property exists.
func (mp MetaProperties) Has(key string) bool {
	if mp == nil {
		return false
	}

	_, exists := mp[key]
	return exists
}

func (mp MetaProperties) Clone() MetaProperties {
	if mp == nil {
		return nil
	}
	return maps.Clone(mp)
}

// MarshalMeta encodes the bag for storage; an empty bag encodes to nil.
func MarshalMeta(mp MetaProperties) ([]byte, error) {
	if len(mp) == 0 {
		return nil, nil
	}
	return json.Marshal(mp)
}

// UnmarshalMeta decodes a stored bag; empty input yields a nil bag.
func UnmarshalMeta(raw []byte) (MetaProperties, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var mp MetaProperties
	if err := json.Unmarshal(raw, &mp); err != nil {
		return nil, err
	}
	return mp, nil
}
