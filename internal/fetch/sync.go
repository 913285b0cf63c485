package fetch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	appLog "colloscope/internal/log"
	"colloscope/internal/normalize"
)

// Sync downloads every source, normalizes the raw export, and writes the
// canonical CSV to dataDir/<class>.csv. One bad source does not block the
// others; all failures come back in the error slice.
//
// Canonical files are written atomically (temp file + rename) so a reload
// running concurrently never reads a half-written table.
func (f *Fetcher) Sync(ctx context.Context, sources []Source, dataDir string) []error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return []error{fmt.Errorf("fetch: create data dir: %w", err)}
	}

	results, errs := f.FetchAll(ctx, sources)

	for _, res := range results {
		if err := writeCanonical(res, dataDir); err != nil {
			errs = append(errs, err)
			appLog.Error("canonical write failed", err, "class", res.Source.Class)
			continue
		}
		appLog.Info("canonical table updated", "class", res.Source.Class, "from_cache", res.FromCache)
	}

	return errs
}

func writeCanonical(res Result, dataDir string) error {
	rows, err := normalize.ReadCSV(bytes.NewReader(res.Body))
	if err != nil {
		return fmt.Errorf("fetch: %s: %w", res.Source.Class, err)
	}

	canonical := normalize.Normalize(rows)
	if len(canonical) == 0 {
		return fmt.Errorf("fetch: %s: raw export too short to normalize", res.Source.Class)
	}

	var buf bytes.Buffer
	if err := normalize.WriteCSV(&buf, canonical); err != nil {
		return fmt.Errorf("fetch: %s: %w", res.Source.Class, err)
	}

	class := strings.ToLower(res.Source.Class)
	target := filepath.Join(dataDir, class+".csv")

	tmp, err := os.CreateTemp(dataDir, "."+class+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, target)
}
