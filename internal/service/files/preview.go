package files

import (
	"mime"
	"strings"

	"github.com/mwantia/docarchive/pkg/storage"
)

type PreviewType string

const (
	PreviewPDF         PreviewType = "pdf"
	PreviewImage       PreviewType = "image"
	PreviewText        PreviewType = "text"
	PreviewOffice      PreviewType = "office"
	PreviewVideo       PreviewType = "video"
	PreviewAudio       PreviewType = "audio"
	PreviewUnsupported PreviewType = "unsupported"
)

// Preview describes how a client can render a stored file. Office
// documents are classified but need a conversion before they can be shown
// inline.
type Preview struct {
	FileID      uint        `json:"fileId"`
	Filename    string      `json:"filename"`
	PreviewType PreviewType `json:"previewType"`
	ContentType string      `json:"contentType"`
	Previewable bool        `json:"previewable"`
}

var officeTypes = []string{
	"application/msword",
	"application/vnd.ms-excel",
	"application/vnd.ms-powerpoint",
	"application/vnd.openxmlformats-officedocument.",
	"application/vnd.oasis.opendocument.",
	"application/rtf",
}

var textTypes = []string{
	"application/json",
	"application/xml",
	"application/x-yaml",
	"application/yaml",
}

// Classify maps a MIME type to a preview type. filename is used when the
// MIME type is missing or generic.
func Classify(contentType, filename string) PreviewType {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType == "" || mediaType == "application/octet-stream" {
		mediaType, _, _ = mime.ParseMediaType(mime.TypeByExtension("." + storage.Extension(filename)))
	}
	mediaType = strings.ToLower(mediaType)

	switch {
	case mediaType == "":
		return byExtension(storage.Extension(filename))
	case mediaType == "application/pdf":
		return PreviewPDF
	case strings.HasPrefix(mediaType, "image/"):
		return PreviewImage
	case strings.HasPrefix(mediaType, "text/"):
		return PreviewText
	case strings.HasPrefix(mediaType, "video/"):
		return PreviewVideo
	case strings.HasPrefix(mediaType, "audio/"):
		return PreviewAudio
	}

	for _, prefix := range officeTypes {
		if strings.HasPrefix(mediaType, prefix) {
			return PreviewOffice
		}
	}
	for _, t := range textTypes {
		if mediaType == t {
			return PreviewText
		}
	}

	return byExtension(storage.Extension(filename))
}

// byExtension covers files whose MIME type the platform does not know.
func byExtension(ext string) PreviewType {
	switch ext {
	case "pdf":
		return PreviewPDF
	case "doc", "docx", "xls", "xlsx", "ppt", "pptx", "odt", "ods", "odp", "rtf":
		return PreviewOffice
	case "txt", "md", "csv", "log":
		return PreviewText
	case "png", "jpg", "jpeg", "gif", "webp", "svg", "bmp":
		return PreviewImage
	case "mp4", "webm", "mov":
		return PreviewVideo
	case "mp3", "wav", "ogg", "m4a":
		return PreviewAudio
	}
	return PreviewUnsupported
}

// Previewable reports whether a browser can render the type inline.
func (t PreviewType) Previewable() bool {
	switch t {
	case PreviewPDF, PreviewImage, PreviewText, PreviewVideo, PreviewAudio:
		return true
	}
	return false
}
