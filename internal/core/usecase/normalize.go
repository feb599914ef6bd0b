package usecase

import (
	"fmt"
	"log/slog"

	"github.com/okanyild/listingflow/internal/core/domain"
)

const fallbackMimeType = "application/octet-stream"

// NormalizeImages converts the draft's image set into upload-ready
// elements. Entries that carry no usable payload are dropped with a
// warning rather than failing the submission; ordering of the survivors
// matches the input and the main-image index is never recomputed.
func NormalizeImages(sources []domain.ImageSource) []domain.NormalizedImage {
	out := make([]domain.NormalizedImage, 0, len(sources))
	for i, src := range sources {
		normalized, ok := normalizeOne(i, src)
		if !ok {
			slog.Warn("image_dropped", "position", i, "kind", string(src.Kind))
			continue
		}
		out = append(out, normalized)
	}
	return out
}

func normalizeOne(position int, src domain.ImageSource) (domain.NormalizedImage, bool) {
	switch src.Kind {
	case domain.ImageSourceBinary:
		if src.Binary == nil || len(src.Binary.Data) == 0 {
			return domain.NormalizedImage{}, false
		}
		return domain.NormalizedImage{Payload: withDefaults(position, *src.Binary)}, true
	case domain.ImageSourceWrapped:
		if src.Preview == nil || len(src.Preview.Data) == 0 {
			return domain.NormalizedImage{}, false
		}
		return domain.NormalizedImage{Payload: withDefaults(position, *src.Preview)}, true
	case domain.ImageSourceRemote:
		if src.URL == "" {
			return domain.NormalizedImage{}, false
		}
		return domain.NormalizedImage{URL: src.URL}, true
	default:
		return domain.NormalizedImage{}, false
	}
}

func withDefaults(position int, payload domain.ImageBinary) *domain.ImageBinary {
	if payload.Name == "" {
		payload.Name = fmt.Sprintf("image_%d", position)
	}
	if payload.MimeType == "" {
		payload.MimeType = fallbackMimeType
	}
	return &payload
}
