package usecase

import (
	"testing"

	"github.com/okanyild/listingflow/internal/core/domain"
)

func TestNormalizeImagesPreservesOrder(t *testing.T) {
	sources := []domain.ImageSource{
		domain.BinaryImage("front.jpg", "image/jpeg", []byte{1}),
		domain.RemoteImage("https://cdn.example.com/existing.jpg"),
		domain.WrappedImage(domain.ImageBinary{Name: "side.png", MimeType: "image/png", Data: []byte{2}}),
	}

	out := NormalizeImages(sources)
	if len(out) != 3 {
		t.Fatalf("expected 3 normalized images, got %d", len(out))
	}
	if out[0].Payload == nil || out[0].Payload.Name != "front.jpg" {
		t.Fatalf("expected binary payload first, got %+v", out[0])
	}
	if out[1].URL != "https://cdn.example.com/existing.jpg" {
		t.Fatalf("expected remote url second, got %+v", out[1])
	}
	if out[2].Payload == nil || out[2].Payload.Name != "side.png" {
		t.Fatalf("expected wrapped preview payload third, got %+v", out[2])
	}
}

func TestNormalizeImagesDropsUnusableEntries(t *testing.T) {
	sources := []domain.ImageSource{
		{Kind: domain.ImageSourceBinary},
		domain.BinaryImage("ok.jpg", "image/jpeg", []byte{1}),
		{Kind: domain.ImageSourceRemote},
		{Kind: "mystery"},
		domain.WrappedImage(domain.ImageBinary{}),
	}

	out := NormalizeImages(sources)
	if len(out) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(out))
	}
	if out[0].Payload == nil || out[0].Payload.Name != "ok.jpg" {
		t.Fatalf("expected ok.jpg to survive, got %+v", out[0])
	}
}

func TestNormalizeImagesFillsDefaults(t *testing.T) {
	sources := []domain.ImageSource{
		domain.BinaryImage("", "", []byte{1, 2, 3}),
	}

	out := NormalizeImages(sources)
	if len(out) != 1 {
		t.Fatalf("expected 1 normalized image, got %d", len(out))
	}
	if out[0].Payload.Name != "image_0" {
		t.Fatalf("expected default name image_0, got %s", out[0].Payload.Name)
	}
	if out[0].Payload.MimeType != fallbackMimeType {
		t.Fatalf("expected fallback mime type, got %s", out[0].Payload.MimeType)
	}
}

func TestNormalizeImagesEmptyInput(t *testing.T) {
	if out := NormalizeImages(nil); len(out) != 0 {
		t.Fatalf("expected empty output, got %d entries", len(out))
	}
}
