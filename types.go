package cloudcity

import (
	"fmt"
	"io"
	"time"
)

// DirEntry is one child of a listed directory.
type DirEntry struct {
	Name    string    `json:"name"`
	IsDir   bool      `json:"is_dir"`
	ModTime time.Time `json:"mod_time"`
	Size    int64     `json:"size"`
}

// File is an opened regular file ready to be streamed to a client.
// The caller must close Content.
type File struct {
	Name        string
	Path        string
	Size        int64
	ModTime     time.Time
	ContentType string
	Content     io.ReadSeekCloser
}

// TempFilePrefix starts the name of every in-flight upload. Clients may not use it.
const TempFilePrefix = ".cloudcity-upload-"

type UploadResult struct {
	Path         string
	FileName     string
	BytesWritten int64
}

type ServerMode string

const (
	// ModeBrowse serves the root listing at "/".
	ModeBrowse ServerMode = "browse"
	// ModeDevice serves the upload form at "/".
	ModeDevice ServerMode = "device"
)

func (m ServerMode) IsValid() bool {
	switch m {
	case ModeBrowse, ModeDevice:
		return true
	default:
		return false
	}
}

// DefaultPort is the port a mode binds to when none is configured.
func (m ServerMode) DefaultPort() int {
	if m == ModeDevice {
		return 80
	}
	return 8088
}

func ParseServerMode(s string) (ServerMode, error) {
	mode := ServerMode(s)
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid server mode: %s (valid modes: browse, device)", s)
	}
	return mode, nil
}
