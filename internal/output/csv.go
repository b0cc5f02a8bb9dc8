package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/maltedev/review-scraper/internal/models"
)

// WriteCSV writes a header and one line per record. Every field is quoted,
// embedded quotes are doubled and lines end with "\n".
func WriteCSV(w io.Writer, records []models.Review) error {
	bw := bufio.NewWriter(w)

	if err := writeCSVLine(bw, Columns); err != nil {
		return err
	}
	for _, r := range records {
		if err := writeCSVLine(bw, row(r)); err != nil {
			return err
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func writeCSVLine(w *bufio.Writer, fields []string) error {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}

	if _, err := w.WriteString(strings.Join(quoted, ",") + "\n"); err != nil {
		return fmt.Errorf("failed to write csv line: %w", err)
	}
	return nil
}

func WriteCSVFile(path string, records []models.Review) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := WriteCSV(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
