package data

import (
	"path/filepath"
	"strings"
)

const (
	ContentTypeTextPlain         = "text/plain"
	ContentTypeTextHTML          = "text/html"
	ContentTypeTextCSS           = "text/css"
	ContentTypeTextJavaScript    = "text/javascript"
	ContentTypeTextCSV           = "text/csv"
	ContentTypeTextMarkdown      = "text/markdown"
	ContentTypeTextURIList       = "text/uri-list"
	ContentTypeImageJPEG         = "image/jpeg"
	ContentTypeImagePNG          = "image/png"
	ContentTypeImageGIF          = "image/gif"
	ContentTypeImageWebP         = "image/webp"
	ContentTypeImageBMP          = "image/bmp"
	ContentTypeImageSVGXML       = "image/svg+xml"
	ContentTypeAudioMpeg         = "audio/mpeg"
	ContentTypeAudioWAV          = "audio/wav"
	ContentTypeAudioOGG          = "audio/ogg"
	ContentTypeVideoMP4          = "video/mp4"
	ContentTypeVideoWebM         = "video/webm"
	ContentTypeVideoQuickTime    = "video/quicktime"
	ContentTypeApplicationPDF    = "application/pdf"
	ContentTypeApplicationZip    = "application/zip"
	ContentTypeApplicationGZip   = "application/gzip"
	ContentTypeApplicationXTar   = "application/x-tar"
	ContentTypeApplicationJson   = "application/json"
	ContentTypeApplicationXML    = "application/xml"
	ContentTypeApplicationDocx   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypeApplicationXlsx   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeApplicationStream = "application/octet-stream"
)

// ExtensionToMIME maps file extensions to MIME types
var ExtensionToMIME = map[string]string{
	".txt":  ContentTypeTextPlain,
	".log":  ContentTypeTextPlain,
	".html": ContentTypeTextHTML,
	".htm":  ContentTypeTextHTML,
	".css":  ContentTypeTextCSS,
	".js":   ContentTypeTextJavaScript,
	".csv":  ContentTypeTextCSV,
	".md":   ContentTypeTextMarkdown,
	".uri":  ContentTypeTextURIList,
	".jpg":  ContentTypeImageJPEG,
	".jpeg": ContentTypeImageJPEG,
	".png":  ContentTypeImagePNG,
	".gif":  ContentTypeImageGIF,
	".webp": ContentTypeImageWebP,
	".bmp":  ContentTypeImageBMP,
	".svg":  ContentTypeImageSVGXML,
	".mp3":  ContentTypeAudioMpeg,
	".wav":  ContentTypeAudioWAV,
	".ogg":  ContentTypeAudioOGG,
	".mp4":  ContentTypeVideoMP4,
	".webm": ContentTypeVideoWebM,
	".mov":  ContentTypeVideoQuickTime,
	".pdf":  ContentTypeApplicationPDF,
	".zip":  ContentTypeApplicationZip,
	".gz":   ContentTypeApplicationGZip,
	".tar":  ContentTypeApplicationXTar,
	".json": ContentTypeApplicationJson,
	".xml":  ContentTypeApplicationXML,
	".docx": ContentTypeApplicationDocx,
	".xlsx": ContentTypeApplicationXlsx,
}

// GetMIMEType returns the MIME type for a file extension
func GetMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))

	if mimeType, exists := ExtensionToMIME[ext]; exists {
		return mimeType
	}

	// Default to octet-stream for unknown types
	return ContentTypeApplicationStream
}

// IsKnownExtension reports whether GetMIMEType resolves path without falling back.
func IsKnownExtension(path string) bool {
	_, exists := ExtensionToMIME[strings.ToLower(filepath.Ext(path))]
	return exists
}

// MatchContentType checks if a content type matches a pattern with wildcard support.
// Supports wildcards like "image/*", "*/json", "*/*", or "*"
func MatchContentType(contentType string, pattern string) bool {
	if pattern == "*" || pattern == "*/*" {
		return true
	}

	// Parameters such as "; charset=utf-8" never take part in matching
	contentType = BaseContentType(contentType)

	if strings.EqualFold(contentType, pattern) {
		return true
	}

	contentParts := strings.Split(strings.ToLower(contentType), "/")
	patternParts := strings.Split(strings.ToLower(pattern), "/")

	if len(contentParts) != len(patternParts) {
		return false
	}

	for i := range patternParts {
		if patternParts[i] != "*" && patternParts[i] != contentParts[i] {
			return false
		}
	}

	return true
}

// BaseContentType strips parameters, "text/plain; charset=utf-8" becomes "text/plain".
func BaseContentType(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		return strings.TrimSpace(contentType[:idx])
	}
	return strings.TrimSpace(contentType)
}
