package domain

type ImageSourceKind string

const (
	// ImageSourceBinary is a raw in-memory file the client attached directly.
	ImageSourceBinary ImageSourceKind = "binary"
	// ImageSourceWrapped is a client-side wrapper object holding a preview
	// payload (the shape older clients send).
	ImageSourceWrapped ImageSourceKind = "wrapped"
	// ImageSourceRemote is an already-uploaded image referenced by URL.
	ImageSourceRemote ImageSourceKind = "remote"
)

type ImageBinary struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// ImageSource is a tagged union built at the API boundary, where the caller
// already knows which variant it holds. Exactly one of Binary, Preview or
// URL is set depending on Kind.
type ImageSource struct {
	Kind    ImageSourceKind `json:"kind"`
	Binary  *ImageBinary    `json:"binary,omitempty"`
	Preview *ImageBinary    `json:"preview,omitempty"`
	URL     string          `json:"url,omitempty"`
}

func BinaryImage(name, mimeType string, data []byte) ImageSource {
	return ImageSource{
		Kind:   ImageSourceBinary,
		Binary: &ImageBinary{Name: name, MimeType: mimeType, Data: data},
	}
}

func WrappedImage(preview ImageBinary) ImageSource {
	return ImageSource{
		Kind:    ImageSourceWrapped,
		Preview: &preview,
	}
}

func RemoteImage(url string) ImageSource {
	return ImageSource{
		Kind: ImageSourceRemote,
		URL:  url,
	}
}

// NormalizedImage is an upload-ready element: either a binary payload still
// to be staged or a URL that is already stable. Exactly one field is set.
type NormalizedImage struct {
	Payload *ImageBinary
	URL     string
}
