package storage

import "testing"

func TestDecodeDataURI(t *testing.T) {
	img, err := DecodeDataURI("data:image/png;base64,aGVsbG8=")
	if err != nil {
		t.Fatalf("DecodeDataURI: %v", err)
	}
	if img.MIMEType != "image/png" || string(img.Data) != "hello" {
		t.Errorf("unexpected image %q %q", img.MIMEType, img.Data)
	}
}

func TestDecodeDataURIRejects(t *testing.T) {
	tests := []string{
		"",
		"aGVsbG8=",
		"data:image/png,aGVsbG8=",
		"data:text/plain;base64,aGVsbG8=",
		"data:image/png;base64,!!!",
		"data:image/png;base64,",
	}
	for _, in := range tests {
		if _, err := DecodeDataURI(in); err == nil {
			t.Errorf("DecodeDataURI(%q) should fail", in)
		}
	}
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"image/png":  ".png",
		"image/webp": ".webp",
		"image/gif":  ".gif",
		"image/jpeg": ".jpg",
		"":           ".jpg",
	}
	for mime, want := range tests {
		if got := Extension(mime); got != want {
			t.Errorf("Extension(%q) = %q, want %q", mime, got, want)
		}
	}
}
