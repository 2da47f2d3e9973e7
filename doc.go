// Package cloudcity provides a small file service over a local directory tree:
// directory listing, file download, multipart upload, touch and delete.
//
// Every request is handled on its own against the filesystem. Nothing is cached
// and no in-process state is shared between requests.
//
// # Key Components
//
//   - ResolvePath: turns client supplied paths into root-relative paths, rejecting traversal
//   - FileService: listing, open, touch, delete, first file and upload operations
//   - FileStorage: interface for the physical file operations (see the filesystem package)
//
// # Server Modes
//
//   - ModeBrowse: "/" lists the root directory, default port 8088
//   - ModeDevice: "/" serves an upload form, default port 80
//
// # Concurrency
//
// The filesystem is the only shared resource and no locking is added on top of it.
// Concurrent uploads to the same name are last-writer-wins; each upload is renamed
// into place whole, so readers never see a half written file. A delete racing a
// read or a touch is resolved by the OS.
//
// # Example Usage
//
//	root, err := os.OpenRoot("/srv/files")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	service, err := cloudcity.NewFileService(filesystem.NewFileStorage(root), cloudcity.ServiceConfig{FilesDir: "files"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	entries, err := service.List(ctx, "/photos")
//
// See the http package for the HTTP routes and the formdata package for the
// multipart upload decoder.
package cloudcity
