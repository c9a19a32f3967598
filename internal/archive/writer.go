// Package archive provides utilities for writing and reading compressed tar
// archives. It supports tar.gz and tar.xz, the formats corpus exports use.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
)

// CreateTarGz creates a tar.gz archive from a source directory.
// The baseDir parameter specifies the directory name inside the archive.
// If createParentDir is true, parent directories of dstPath are created.
func CreateTarGz(srcDir, dstPath, baseDir string, createParentDir bool) error {
	return create(srcDir, dstPath, baseDir, createParentDir, func(w io.Writer) (io.WriteCloser, error) {
		return gzip.NewWriter(w), nil
	})
}

// CreateTarXz creates a tar.xz archive from a source directory. xz trades
// slower compression for a noticeably smaller corpus export.
func CreateTarXz(srcDir, dstPath, baseDir string, createParentDir bool) error {
	return create(srcDir, dstPath, baseDir, createParentDir, func(w io.Writer) (io.WriteCloser, error) {
		return xz.NewWriter(w)
	})
}

// CreateCorpusArchive creates an export archive, choosing the compressor from
// the destination extension. The base dir inside the archive is derived from
// dstPath with the archive suffix removed.
func CreateCorpusArchive(srcDir, dstPath string) error {
	switch {
	case strings.HasSuffix(dstPath, ".tar.xz"):
		baseDir := filepath.Base(strings.TrimSuffix(dstPath, ".tar.xz"))
		return CreateTarXz(srcDir, dstPath, baseDir, true)
	case strings.HasSuffix(dstPath, ".tar.gz"):
		baseDir := filepath.Base(strings.TrimSuffix(dstPath, ".tar.gz"))
		return CreateTarGz(srcDir, dstPath, baseDir, true)
	default:
		return fmt.Errorf("unsupported archive format: %s", dstPath)
	}
}

func create(srcDir, dstPath, baseDir string, createParentDir bool, compress func(io.Writer) (io.WriteCloser, error)) error {
	if createParentDir {
		if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
			return fmt.Errorf("failed to create parent directory: %w", err)
		}
	}

	outFile, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer outFile.Close()

	cw, err := compress(outFile)
	if err != nil {
		return fmt.Errorf("failed to create compressor: %w", err)
	}
	defer cw.Close()

	tw := tar.NewWriter(cw)
	defer tw.Close()

	now := time.Now()

	err = filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}

		// Skip root directory
		if relPath == "." {
			return nil
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}

		header.Name = baseDir + "/" + filepath.ToSlash(relPath)
		if info.IsDir() {
			header.Name += "/"
		}

		// Normalize timestamps for reproducibility
		header.ModTime = now

		if err := tw.WriteHeader(header); err != nil {
			return err
		}

		if !info.IsDir() {
			file, err := os.Open(path)
			if err != nil {
				return err
			}
			defer file.Close()

			if _, err := io.Copy(tw, file); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	return nil
}
