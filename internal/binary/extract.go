package binary

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// TarGzExtractor unpacks .tar.gz archives into fresh temporary directories.
type TarGzExtractor struct {
	tempDir string
}

// NewExtractor creates an extractor that creates its output directories
// under tempDir. Empty means os.TempDir().
func NewExtractor(tempDir string) *TarGzExtractor {
	return &TarGzExtractor{tempDir: tempDir}
}

// Extract unpacks archivePath into a new directory and returns its path.
// Failures are reported as *ExtractError and leave no directory behind.
func (e *TarGzExtractor) Extract(archivePath string) (string, error) {
	destDir, err := os.MkdirTemp(e.tempDir, "same-extract-*")
	if err != nil {
		return "", &ExtractError{Archive: archivePath, Err: fmt.Errorf("create dest dir: %w", err)}
	}

	if err := ExtractTarGz(archivePath, destDir); err != nil {
		os.RemoveAll(destDir)
		return "", &ExtractError{Archive: archivePath, Err: err}
	}

	return destDir, nil
}

// ExtractTarGz extracts a .tar.gz archive to a destination directory
func ExtractTarGz(archivePath, destDir string) error {
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer archiveFile.Close()

	gzipReader, err := gzip.NewReader(archiveFile)
	if err != nil {
		return fmt.Errorf("create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	tarReader := tar.NewReader(gzipReader)

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}
	root := filepath.Clean(destDir)

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		target := filepath.Join(root, header.Name)

		// "./" entries from `tar -C dir .` name the destination itself
		if header.Typeflag == tar.TypeDir && target == root {
			continue
		}

		// Security check: prevent path traversal
		if !withinDir(root, target) {
			return fmt.Errorf("illegal file path: %s", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}

		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("create parent dir for %s: %w", target, err)
			}

			outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, header.FileInfo().Mode().Perm())
			if err != nil {
				return fmt.Errorf("create file %s: %w", target, err)
			}

			if _, err := io.Copy(outFile, tarReader); err != nil {
				outFile.Close()
				return fmt.Errorf("write file %s: %w", target, err)
			}

			if err := outFile.Close(); err != nil {
				return fmt.Errorf("close file %s: %w", target, err)
			}

		case tar.TypeSymlink:
			// Links may only point inside the archive
			resolved := header.Linkname
			if !filepath.IsAbs(resolved) {
				resolved = filepath.Join(filepath.Dir(target), resolved)
			}
			if !withinDir(root, resolved) {
				return fmt.Errorf("illegal symlink target: %s -> %s", header.Name, header.Linkname)
			}

			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("create parent dir for %s: %w", target, err)
			}
			if err := os.Symlink(header.Linkname, target); err != nil {
				return fmt.Errorf("create symlink %s: %w", target, err)
			}

		default:
			// Skip other types (hard links, devices, fifos)
			continue
		}
	}

	return nil
}

func withinDir(root, path string) bool {
	return strings.HasPrefix(filepath.Clean(path), root+string(os.PathSeparator))
}

// SetExecutable sets executable permissions on a file
func SetExecutable(path string) error {
	if err := os.Chmod(path, 0755); err != nil {
		return fmt.Errorf("set executable: %w", err)
	}
	return nil
}
