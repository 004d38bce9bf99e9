package upload

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	octetStream      = "application/octet-stream"
	unsupportedLabel = "unsupported"
)

// AllowedTypes lists the document types accepted for retrieval, in display order.
var AllowedTypes = []string{
	"text/plain",
	"application/json",
	"application/pdf",
	"text/csv",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"text/markdown",
}

var textExtensions = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".csv":      "text/csv",
	".json":     "application/json",
	".txt":      "text/plain",
}

// IsAllowedType reports whether contentType is on the allow-list.
func IsAllowedType(contentType string) bool {
	for _, allowed := range AllowedTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}

// metricContentType keeps the upload metric labels within the allow-list.
func metricContentType(contentType string) string {
	if base := baseType(contentType); IsAllowedType(base) {
		return base
	}
	return unsupportedLabel
}

// ResolveContentType returns the media type used for validation. The declared
// type wins unless it is missing or generic, in which case the content is sniffed.
func ResolveContentType(declared, filename string, data []byte) string {
	if base := baseType(declared); base != "" && base != octetStream {
		return base
	}

	detected := baseType(mimetype.Detect(data).String())
	if detected == "text/plain" || detected == octetStream {
		if byExt, ok := textExtensions[strings.ToLower(filepath.Ext(filename))]; ok {
			return byExt
		}
	}
	return detected
}

func baseType(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(raw)
	}
	return strings.ToLower(parsed)
}

// FormatSize renders a byte count the way the upload table shows it.
func FormatSize(bytes int64) string {
	return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
}

// FormatLimit renders the upload ceiling for error messages ("512MB").
func FormatLimit(bytes int64) string {
	const mb = 1024 * 1024
	if bytes >= mb && bytes%mb == 0 {
		return fmt.Sprintf("%dMB", bytes/mb)
	}
	return fmt.Sprintf("%d bytes", bytes)
}

// BuildMetadataCache precomputes display values for a stored file.
func BuildMetadataCache(filename, contentType string, size int64) MetadataCache {
	typeDisplay := "FILE"
	if _, subtype, ok := strings.Cut(contentType, "/"); ok && subtype != "" {
		typeDisplay = strings.ToUpper(subtype)
	}
	return MetadataCache{
		DisplayName:       filename,
		SizeFormatted:     FormatSize(size),
		TypeDisplay:       typeDisplay,
		SearchableContent: strings.ToLower(filename),
	}
}

func unsupportedTypeMessage(contentType string) string {
	return fmt.Sprintf("File type %s not supported. Supported types: %s", contentType, strings.Join(AllowedTypes, ", "))
}
