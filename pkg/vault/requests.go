package vault

import "io"

// Size ceilings for uploads. File sizes are checked against bytes actually
// read, never against a client-declared length.
const (
	MaxFileBytes = 20 << 20  // 20 MiB
	MaxTextBytes = 1_000_000 // inline text body
)

// Pagination defaults for ListContent.
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// UploadFileRequest contains parameters for creating file content.
type UploadFileRequest struct {
	Reader   io.Reader
	FileName string
	MimeType string
	Title    string
	Tags     []string
}

// UploadTextRequest contains parameters for creating text content.
type UploadTextRequest struct {
	Body  string
	Title string
	Tags  []string
}

// ListContentRequest contains filter and pagination parameters for listing
// the caller's content.
type ListContentRequest struct {
	Kind   *ContentKind
	Search string
	Limit  int
	Offset int
}

// ContentList is a page of content plus the filtered total.
type ContentList struct {
	Items      []*Content `json:"contents"`
	TotalCount int64      `json:"total_count"`
}

// Download is an open streaming read of a file content's blob. Body must be
// fully drained or closed by the caller.
type Download struct {
	Body     io.ReadCloser
	FileName string
	MimeType string
	Size     int64
}
