// Package clientcli provides a client library for cloudcity file servers.
//
// It supports upload, download, delete, touch, list and first-file operations
// over the server's plain HTTP routes. The package includes profile-based
// configuration for managing connections to multiple servers.
//
// # Basic Usage
//
// Create a client and upload a file:
//
//	client, err := clientcli.New(&clientcli.Config{Endpoint: "http://192.168.4.1"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := client.Upload(ctx, clientcli.UploadOptions{
//		LocalPath: "./recording.wav",
//	})
//
// Uploads land in the server's files directory under their base name.
//
// # Profile Configuration
//
// A profile names a server and, optionally, a request timeout and a directory
// that receives downloads:
//
//	profiles, err := clientcli.LoadProfileFile(clientcli.DefaultConfigPath())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := profiles.Lookup("badge")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cfg, err := clientcli.ConfigFromProfile(profile)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(cfg)
//
// # Errors
//
// Server failures are returned as *APIError. Use errors.Is with ErrNotFound,
// ErrBadRequest, ErrForbidden or ErrTooLarge to test the status.
//
// # Output Formatting
//
// Use formatters for human-readable or JSON output:
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatUpload(os.Stdout, results)
package clientcli
