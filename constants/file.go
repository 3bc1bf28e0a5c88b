package constants

import (
	"mime"
	"strings"
)

// Document formats recorded on extraction results.
const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
)

const MediaTypePDF = "application/pdf"

// MaxUploadBytes caps a single document upload (10 MiB).
const MaxUploadBytes = 10 << 20

// AllowedExtensions holds the file extensions accepted by the directory ingestor.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tif":  {},
	"tiff": {},
	"heic": {},
	"heif": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// NormalizeMediaType lowercases a declared media type and drops parameters ("; charset=...").
func NormalizeMediaType(mt string) string {
	mt = strings.TrimSpace(mt)
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

// IsImageMediaType reports whether mt is an image/* type.
func IsImageMediaType(mt string) bool {
	return strings.HasPrefix(NormalizeMediaType(mt), "image/")
}

// MapMediaTypeToFormat returns PDF, IMAGE or "" for media types we do not extract.
func MapMediaTypeToFormat(mt string) string {
	mt = NormalizeMediaType(mt)
	switch {
	case mt == MediaTypePDF:
		return PDF
	case strings.HasPrefix(mt, "image/"):
		return IMAGE
	default:
		return ""
	}
}

// IsHEICMediaType reports whether the image needs conversion before OCR.
func IsHEICMediaType(mt string) bool {
	switch NormalizeMediaType(mt) {
	case "image/heic", "image/heif", "image/heic-sequence", "image/heif-sequence":
		return true
	}
	return false
}

// MediaTypeFromExt maps a file extension to a media type; empty when unknown.
func MediaTypeFromExt(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return MediaTypePDF
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "tif", "tiff":
		return "image/tiff"
	case "heic":
		return "image/heic"
	case "heif":
		return "image/heif"
	}
	return mime.TypeByExtension("." + NormalizeExt(ext))
}
