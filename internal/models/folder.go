package models

// FolderEntry is one immediate subdirectory of a scan root with its
// recursively computed size
type FolderEntry struct {
	Name string `json:"name"`
	Size uint64 `json:"size"`
	Path string `json:"path"` // absolute
}

// ScanResult is the response of a single scan. TotalSize is always the sum of
// Folders[i].Size; Folders is in directory listing order.
type ScanResult struct {
	Path      string        `json:"path"`
	TotalSize uint64        `json:"totalSize"`
	Folders   []FolderEntry `json:"folders"`
}

// ErrorResponse is returned instead of a ScanResult when a request fails
type ErrorResponse struct {
	Error string `json:"error"`
}
