package assets

import (
	"encoding/base64"
	"net/http"
	"testing"
)

func TestDefaultProfilePictureIsPNG(t *testing.T) {
	raw, err := base64.StdEncoding.DecodeString(DefaultProfilePicture())
	if err != nil {
		t.Fatalf("expected valid base64, got %v", err)
	}
	if got := http.DetectContentType(raw); got != "image/png" {
		t.Fatalf("expected image/png, got %q", got)
	}
}
