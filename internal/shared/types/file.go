package types

// FileEntry is one item of a session directory listing
type FileEntry struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size"`
}

// FileContent is a file read from, or written to, a session workspace
type FileContent struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	// MimeType is detected client-side and never sent
	MimeType string `json:"-"`
}
