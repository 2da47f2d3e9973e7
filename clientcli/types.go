package clientcli

import "time"

// UploadOptions configures an upload operation.
type UploadOptions struct {
	LocalPath string
	// Name is the file name on the server, defaults to the base name of LocalPath.
	Name      string
	Recursive bool
}

// UploadResult represents the result of uploading a single file.
type UploadResult struct {
	LocalPath string `json:"local_path"`
	Name      string `json:"name"`
	Size      int64  `json:"size_bytes"`
	Err       error  `json:"-"` // nil on success
}

// DownloadOptions configures a download operation.
type DownloadOptions struct {
	Name      string
	LocalPath string // empty = derive from name, "-" = stdout
}

// DownloadResult represents the result of downloading a file.
type DownloadResult struct {
	Name         string    `json:"name"`
	LocalPath    string    `json:"local_path"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified,omitzero"`
}

// DeleteOptions configures a delete operation.
type DeleteOptions struct {
	Names []string
}

// DeleteResult represents the result of deleting a single file.
type DeleteResult struct {
	Name    string `json:"name"`
	Deleted bool   `json:"deleted"`
	Err     error  `json:"-"` // nil on success
}

// TouchOptions configures a touch operation.
type TouchOptions struct {
	// Paths are relative to the files directory and may name sub-directories.
	Paths []string
}

// TouchResult represents the result of touching a single file.
type TouchResult struct {
	Path    string `json:"path"`
	Touched bool   `json:"touched"`
	Err     error  `json:"-"` // nil on success
}

// ListResult holds the files directory listing in server order.
type ListResult struct {
	Items []FileInfo `json:"items"`
}

// FileInfo is one entry of the files directory listing.
type FileInfo struct {
	Index   int       `json:"index"`
	Name    string    `json:"name"`
	ModTime time.Time `json:"mod_time"`
}

// serverListEntry mirrors one value of the server's /listfiles object.
type serverListEntry struct {
	File string `json:"file"`
	When string `json:"when"`
}
