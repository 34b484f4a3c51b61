package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/mind-engage/mindengage-quizgen/internal/ident"
	"github.com/mind-engage/mindengage-quizgen/internal/quiz"
)

// PackageEntry is the single archive entry the LMS importer looks for.
const PackageEntry = "quiz.qti"

// WritePackage wraps an encoded document into a ZIP archive holding exactly
// one deflated entry named PackageEntry.
func WritePackage(w io.Writer, doc []byte) error {
	zw := zip.NewWriter(w)
	fw, err := zw.CreateHeader(&zip.FileHeader{
		Name:     PackageEntry,
		Method:   zip.Deflate,
		Modified: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("zip entry: %w", err)
	}
	if _, err := fw.Write(doc); err != nil {
		return fmt.Errorf("zip write: %w", err)
	}
	return zw.Close()
}

// BuildPackage returns the archive bytes for doc.
func BuildPackage(doc []byte) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := WritePackage(buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Export encodes questions and packages the document in one step.
func Export(qs []quiz.Question, s quiz.Settings, ids ident.Generator) ([]byte, error) {
	doc, err := NewEncoder(ids).Encode(qs, s)
	if err != nil {
		return nil, err
	}
	return BuildPackage(doc)
}
