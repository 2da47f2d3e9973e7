// Package http provides the HTTP front end of the cloudcity file server.
//
// # Routes
//
//	GET  /                 root listing (browse mode) or upload form (device mode)
//	GET  /<path>           file contents or HTML directory listing
//	GET  /listfiles        JSON listing of the files directory
//	GET  /touch/<path>     set a file's mtime to now, answers "Touched"
//	GET  /download?file=n  file from the files directory as an attachment
//	GET  /onefilename      name of the first file in the files directory
//	GET  /delete?file=n    remove a file from the files directory, answers "removed"
//	POST / or /fileupload  multipart/form-data single file upload, answers "Uploaded"
//	GET  /healthz          liveness check
//	GET  /metrics          Prometheus metrics, when enabled
//
// A directory requested without a trailing slash is redirected with 301 so the
// relative links of its listing resolve.
//
// # Errors
//
// Failures are answered with a plain text page "<status text>: <message>", except on
// /listfiles which answers JSON:
//
//	{"error": "not_found", "message": "..."}
//
// Invalid paths and malformed uploads map to 400, permission failures to 403, missing
// files and directories where a file is required to 404, bodies over the upload limit
// to 413, and any other I/O failure to 500.
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{
//	    Mode:          cloudcity.ModeBrowse,
//	    MaxUploadSize: 1 << 30,
//	    Metrics:       http.NewMetrics("cloudcity"),
//	}
//	handler := http.NewHandler(&handlerCfg, service)
//	http.ListenAndServe(":8088", handler.Router())
package http
