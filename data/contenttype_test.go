package data

import "testing"

func TestGetMIMEType(t *testing.T) {
	tests := map[string]string{
		"a.txt":         ContentTypeTextPlain,
		"dir/b.PNG":     ContentTypeImagePNG,
		"archive.zip":   ContentTypeApplicationZip,
		"noextension":   ContentTypeApplicationStream,
		"weird.unknown": ContentTypeApplicationStream,
	}

	for name, want := range tests {
		if got := GetMIMEType(name); got != want {
			t.Errorf("GetMIMEType(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestMatchContentType(t *testing.T) {
	tests := []struct {
		contentType string
		pattern     string
		want        bool
	}{
		{"image/png", "image/*", true},
		{"image/png", "*/*", true},
		{"application/json", "*/json", true},
		{"text/plain; charset=utf-8", "text/plain", true},
		{"text/plain", "image/*", false},
		{"text/plain", "text", false},
	}

	for _, tt := range tests {
		if got := MatchContentType(tt.contentType, tt.pattern); got != tt.want {
			t.Errorf("MatchContentType(%q, %q) = %v, want %v", tt.contentType, tt.pattern, got, tt.want)
		}
	}
}
