// Package binary installs the same release artifact for a platform into the
// runner tool cache and publishes it on PATH.
//
// # Install Flow
//
//  1. Probe the tool cache; a complete entry is published without any network access
//  2. Download the release archive, retrying up to three times with exponential backoff
//  3. Reject empty archives
//  4. Optionally verify the archive (SHA256 digest, detached OpenPGP signature)
//  5. Extract the tar.gz archive into a fresh temporary directory
//  6. Register the extracted tree in the tool cache
//  7. Check the binary exists and make it executable
//  8. Publish the cached directory on PATH
//
// Only the download step is retried. Every other failure ends the install and
// is returned to the caller unchanged.
//
// # Usage
//
//	installer, err := binary.NewInstaller(binary.Config{
//	    Downloader: binary.NewHTTPDownloader(binary.DownloaderOptions{}),
//	    Extractor:  binary.NewExtractor(os.Getenv("RUNNER_TEMP")),
//	    Cache:      toolcache.New(root),
//	    Publisher:  publisher,
//	    HostOS:     runtime.GOOS,
//	})
//	if err != nil {
//	    return err
//	}
//
//	result, err := installer.Install(ctx, "1.0.0", descriptor, token)
//
// # Architecture
//
// The Installer only depends on small collaborator interfaces:
//   - Downloader: one HTTP GET of an artifact into a temporary file
//   - Extractor: tar.gz extraction with path traversal protection
//   - CacheStore: tool cache lookup and registration
//   - PathPublisher: PATH publication
//   - Verifier: optional archive integrity checks
package binary
