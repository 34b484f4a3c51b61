package parser

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
)

// DocumentEntry is the archive entry written by the exporter.
const DocumentEntry = "quiz.qti"

// maxEntrySize bounds the decompressed document.
const maxEntrySize = 32 << 20

// OpenPackage reads the QTI document out of a ZIP package without touching
// the filesystem. It prefers DocumentEntry and falls back to the first .qti
// or .xml entry that is not a manifest.
func OpenPackage(r io.ReaderAt, size int64) (Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Document{}, fmt.Errorf("open package: %w", err)
	}
	f := findEntry(zr.File)
	if f == nil {
		return Document{}, fmt.Errorf("no %s entry in package", DocumentEntry)
	}
	rc, err := f.Open()
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	return ParseDocument(io.LimitReader(rc, maxEntrySize))
}

// ReadPackage is OpenPackage over an in-memory archive.
func ReadPackage(b []byte) (Document, error) {
	return OpenPackage(bytes.NewReader(b), int64(len(b)))
}

// Entries lists the archive entry names.
func Entries(b []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names, nil
}

func findEntry(files []*zip.File) *zip.File {
	var fallback *zip.File
	for _, f := range files {
		if f.FileInfo().IsDir() {
			continue
		}
		if f.Name == DocumentEntry {
			return f
		}
		name := strings.ToLower(path.Base(f.Name))
		if fallback == nil && !strings.Contains(name, "manifest") &&
			(strings.HasSuffix(name, ".qti") || strings.HasSuffix(name, ".xml")) {
			fallback = f
		}
	}
	return fallback
}
