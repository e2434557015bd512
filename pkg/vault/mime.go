package vault

// allowedMimeTypes is the upload allow-list: images, common office and
// document formats, plain/structured text, common archives, and the generic
// octet-stream fallback.
var allowedMimeTypes = map[string]struct{}{
	// Images
	"image/jpeg":    {},
	"image/jpg":     {},
	"image/png":     {},
	"image/gif":     {},
	"image/webp":    {},
	"image/svg+xml": {},

	// Documents
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
	"application/vnd.ms-powerpoint":                                     {},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},

	// Text
	"text/plain":       {},
	"text/csv":         {},
	"text/html":        {},
	"text/css":         {},
	"text/javascript":  {},
	"application/json": {},
	"application/xml":  {},

	// Archives
	"application/zip":             {},
	"application/x-rar-compressed": {},
	"application/x-7z-compressed":  {},

	// Other
	"application/octet-stream": {},
}

// IsAllowedMimeType reports whether mimeType may be uploaded.
func IsAllowedMimeType(mimeType string) bool {
	_, ok := allowedMimeTypes[mimeType]
	return ok
}
