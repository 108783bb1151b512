package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/minwonlab/sentinel/pkg/complaint"
)

// ClassifiedRecord pairs an input record with its risk result.
type ClassifiedRecord struct {
	Record Record
	Result complaint.RiskScoreResult
}

// resultColumns is the fixed output column block, written right after text.
var resultColumns = []string{
	"risk_score",
	"risk_level",
	"profanity_detected",
	"profanity_category",
	"baseline_issues",
	"metadata_issues",
	"confidence",
	"recommendation",
}

// WriteCSV writes classified records as CSV. A UTF-8 BOM is emitted first so
// spreadsheet tools pick the right encoding. inputColumns preserves the
// source dataset's column order; text is always written first, then the
// result block, then the remaining input columns.
func WriteCSV(w io.Writer, inputColumns []string, records []ClassifiedRecord) error {
	if _, err := io.WriteString(w, "\uFEFF"); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	var passthrough []string
	for _, col := range inputColumns {
		if col != ColText {
			passthrough = append(passthrough, col)
		}
	}

	header := append([]string{ColText}, resultColumns...)
	header = append(header, passthrough...)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range records {
		rec := &records[i]
		row := append([]string{rec.Record.Text}, resultCells(&rec.Result)...)
		for _, col := range passthrough {
			row = append(row, rec.Record.valueFor(col))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveCSV writes classified records to a file.
func SaveCSV(path string, inputColumns []string, records []ClassifiedRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := WriteCSV(f, inputColumns, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func resultCells(result *complaint.RiskScoreResult) []string {
	return []string{
		strconv.Itoa(result.RiskScore),
		result.RiskLevel.String(),
		strconv.FormatBool(result.ProfanityDetected),
		result.ProfanityCategory,
		strings.Join(result.BaselineIssues, "|"),
		strings.Join(result.MetadataIssues, "|"),
		strconv.FormatFloat(result.Confidence, 'f', 2, 64),
		result.Recommendation,
	}
}
