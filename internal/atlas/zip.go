package atlas

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"time"
)

// WriteZip writes files into a zip archive on w.
func WriteZip(w io.Writer, files []File) error {
	zw := zip.NewWriter(w)
	now := time.Now()

	for _, f := range files {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: now,
		})
		if err != nil {
			return fmt.Errorf("zip %s: %w", f.Name, err)
		}
		if _, err := fw.Write(f.Data); err != nil {
			return fmt.Errorf("zip %s: %w", f.Name, err)
		}
	}
	return zw.Close()
}

// Zip returns files as an in-memory zip archive.
func Zip(files []File) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteZip(&buf, files); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
