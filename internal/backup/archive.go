package backup

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

const archiveEntry = "backup.json"

// FileName builds the export file name for the given timestamp, for
// example FleetProTax-Backup-2026-08-29-14-05.zip.
func FileName(t time.Time) string {
	return fmt.Sprintf("%s-Backup-%04d-%02d-%02d-%02d-%02d.zip",
		AppName, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute())
}

// Archive serializes the backup into a zip archive holding backup.json.
func Archive(b *Backup) ([]byte, error) {
	body, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal backup: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(archiveEntry)
	if err != nil {
		return nil, fmt.Errorf("create archive entry: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return nil, fmt.Errorf("write archive entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}

// Extract returns the backup document from an exported file. Zip input
// is recognized by its magic bytes; anything else is assumed to be the
// bare JSON document, which older exports produced.
func Extract(raw []byte) ([]byte, error) {
	if !bytes.HasPrefix(raw, []byte("PK")) {
		return raw, nil
	}

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	var entry *zip.File
	for _, f := range zr.File {
		if f.Name == archiveEntry {
			entry = f
			break
		}
		if entry == nil && strings.HasSuffix(f.Name, ".json") {
			entry = f
		}
	}
	if entry == nil {
		return nil, fmt.Errorf("archive holds no %s", archiveEntry)
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", entry.Name, err)
	}
	defer rc.Close()

	body, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", entry.Name, err)
	}
	return body, nil
}
