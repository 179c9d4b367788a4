package core

// archive.go expands a zip bundle into a fresh staging directory so each
// entry can be loaded like a standalone CSV file.

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

// ExpandBundle extracts every regular entry of the zip at path into a new,
// uniquely named directory under stagingRoot (os.TempDir when empty).
// Internal relative paths are preserved. Entries whose path would leave the
// staging directory are rejected with ErrUnsafeEntry.
//
// The returned file list is in archive order; callers sort it.
// The staging directory is left on disk on success and removed on failure.
func ExpandBundle(path, stagingRoot string) (string, []string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", nil, fmt.Errorf("%w: open %s: %w", ErrExtraction, filepath.Base(path), err)
	}
	defer zr.Close()

	dir, err := os.MkdirTemp(stagingRoot, filepath.Base(path)+"-")
	if err != nil {
		return "", nil, fmt.Errorf("%w: create staging directory: %w", ErrExtraction, err)
	}

	files := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		dest, err := stagingPath(dir, f.Name)
		if err != nil {
			os.RemoveAll(dir)
			return "", nil, err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				os.RemoveAll(dir)
				return "", nil, fmt.Errorf("%w: %w", ErrExtraction, err)
			}
			continue
		}

		if err := extractEntry(f, dest); err != nil {
			os.RemoveAll(dir)
			return "", nil, fmt.Errorf("%w: %s: %w", ErrExtraction, f.Name, err)
		}
		files = append(files, dest)
	}

	return dir, files, nil
}

// stagingPath resolves an entry name under dir, rejecting absolute paths and
// any name that climbs out of dir.
func stagingPath(dir, name string) (string, error) {
	local := filepath.FromSlash(name)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %w: %q", ErrExtraction, ErrUnsafeEntry, name)
	}
	return filepath.Join(dir, local), nil
}

// extractEntry writes one entry to dest, creating parent directories.
// The entry is fully written and closed before returning.
func extractEntry(f *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
