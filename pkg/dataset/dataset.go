// Package dataset loads, validates and writes labeled complaint datasets.
// Supported input formats: CSV (UTF-8 with or without BOM), JSON record
// arrays, session-structured JSON, JSON Lines and Excel workbooks.
package dataset

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/minwonlab/sentinel/pkg/complaint"
)

// Well-known column names. Anything else lands in Record.Extra.
const (
	ColText     = "text"
	ColLabel    = "label"
	ColSession  = "session_id"
	ColTurn     = "turn_id"
	ColSpeaker  = "speaker"
	ColSeverity = "severity"

	ColConsultationContent = "consultation_content"
	ColConsultationResult  = "consultation_result"
	ColRequirementType     = "requirement_type"
	ColConsultationReason  = "consultation_reason"
)

var knownColumns = []string{
	ColText, ColLabel, ColSession, ColTurn, ColSpeaker, ColSeverity,
	ColConsultationContent, ColConsultationResult, ColRequirementType, ColConsultationReason,
}

// Record is one dataset row.
type Record struct {
	Text      string
	Label     string // raw label cell; multi-label rows join with |
	SessionID string
	TurnID    string
	Speaker   string
	Severity  string
	Metadata  complaint.ConsultationMetadata
	Extra     map[string]string
}

// Labels splits the raw label cell into trimmed non-empty labels.
func (r *Record) Labels() []string {
	var labels []string
	for _, label := range strings.Split(r.Label, "|") {
		if label = strings.TrimSpace(label); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

// valueFor returns the cell value for a column name.
func (r *Record) valueFor(column string) string {
	switch column {
	case ColText:
		return r.Text
	case ColLabel:
		return r.Label
	case ColSession:
		return r.SessionID
	case ColTurn:
		return r.TurnID
	case ColSpeaker:
		return r.Speaker
	case ColSeverity:
		return r.Severity
	case ColConsultationContent:
		return r.Metadata.ConsultationContent
	case ColConsultationResult:
		return r.Metadata.ConsultationResult
	case ColRequirementType:
		return r.Metadata.RequirementType
	case ColConsultationReason:
		return r.Metadata.ConsultationReason
	default:
		return r.Extra[column]
	}
}

// Dataset is a loaded dataset with its column set in reading order.
type Dataset struct {
	Columns []string
	Records []Record
}

// Len returns the record count.
func (d *Dataset) Len() int { return len(d.Records) }

// HasColumn reports whether the dataset carries a column.
func (d *Dataset) HasColumn(name string) bool {
	for _, col := range d.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// LabelCounts tallies every individual label across all records.
func (d *Dataset) LabelCounts() map[string]int {
	counts := make(map[string]int)
	for i := range d.Records {
		for _, label := range d.Records[i].Labels() {
			counts[label]++
		}
	}
	return counts
}

// Load reads a dataset, picking the parser from the file extension.
func Load(path string) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".json":
		return LoadJSON(path)
	case ".jsonl":
		return LoadJSONL(path)
	case ".xlsx", ".xls":
		return LoadExcel(path)
	default:
		return nil, fmt.Errorf("unsupported dataset format: %s", filepath.Ext(path))
	}
}

// LoadCSV reads a header-first CSV file. A UTF-8 BOM on the first header
// cell is stripped.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(bufio.NewReader(f))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty dataset: %s", path)
	}

	header := rows[0]
	header[0] = strings.TrimPrefix(header[0], "\uFEFF")

	ds := &Dataset{Columns: header}
	for _, row := range rows[1:] {
		cells := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				cells[col] = row[i]
			}
		}
		ds.Records = append(ds.Records, recordFromCells(cells))
	}
	return ds, nil
}

// LoadJSON reads either a flat array of record objects or the
// session-structured form {"sessions": [{"session_id": ..., "turns": [...]}]}.
func LoadJSON(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}

	trimmed := strings.TrimLeftFunc(string(data), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\uFEFF'
	})
	if strings.HasPrefix(trimmed, "[") {
		var objects []map[string]any
		if err := json.Unmarshal([]byte(trimmed), &objects); err != nil {
			return nil, fmt.Errorf("parse json %s: %w", path, err)
		}
		return fromObjects(objects), nil
	}

	var doc struct {
		Sessions []struct {
			SessionID string `json:"session_id"`
			Turns     []struct {
				TurnID     any      `json:"turn_id"`
				Speaker    string   `json:"speaker"`
				Text       string   `json:"text"`
				Labels     []string `json:"labels"`
				Severity   string   `json:"severity"`
				Severities []string `json:"severities"`
			} `json:"turns"`
		} `json:"sessions"`
	}
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
		return nil, fmt.Errorf("parse json %s: %w", path, err)
	}
	if doc.Sessions == nil {
		return nil, fmt.Errorf("unrecognized json layout: %s", path)
	}

	ds := &Dataset{Columns: []string{ColText, ColLabel, ColSession, ColTurn, ColSpeaker, ColSeverity}}
	for _, sess := range doc.Sessions {
		for _, turn := range sess.Turns {
			severity := turn.Severity
			if len(turn.Severities) > 0 {
				severity = strings.Join(turn.Severities, "|")
			}
			ds.Records = append(ds.Records, Record{
				Text:      turn.Text,
				Label:     strings.Join(turn.Labels, "|"),
				SessionID: sess.SessionID,
				TurnID:    stringifyValue(turn.TurnID),
				Speaker:   turn.Speaker,
				Severity:  severity,
			})
		}
	}
	return ds, nil
}

// LoadJSONL reads newline-delimited record objects.
func LoadJSONL(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	var objects []map[string]any
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\uFEFF"))
		if text == "" {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(text), &obj); err != nil {
			return nil, fmt.Errorf("parse jsonl %s line %d: %w", path, line, err)
		}
		objects = append(objects, obj)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read jsonl %s: %w", path, err)
	}
	return fromObjects(objects), nil
}

// LoadExcel reads the first sheet of a workbook, header row first.
func LoadExcel(path string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty dataset: %s", path)
	}

	ds := &Dataset{Columns: rows[0]}
	for _, row := range rows[1:] {
		cells := make(map[string]string, len(ds.Columns))
		for i, col := range ds.Columns {
			if i < len(row) {
				cells[col] = row[i]
			}
		}
		ds.Records = append(ds.Records, recordFromCells(cells))
	}
	return ds, nil
}

func fromObjects(objects []map[string]any) *Dataset {
	seen := make(map[string]bool)
	var extras []string
	for _, obj := range objects {
		for key := range obj {
			if !seen[key] {
				seen[key] = true
				if !isKnownColumn(key) {
					extras = append(extras, key)
				}
			}
		}
	}
	sort.Strings(extras)

	var columns []string
	for _, col := range knownColumns {
		if seen[col] {
			columns = append(columns, col)
		}
	}
	columns = append(columns, extras...)

	ds := &Dataset{Columns: columns}
	for _, obj := range objects {
		cells := make(map[string]string, len(obj))
		for key, value := range obj {
			cells[key] = stringifyValue(value)
		}
		ds.Records = append(ds.Records, recordFromCells(cells))
	}
	return ds
}

func isKnownColumn(name string) bool {
	for _, col := range knownColumns {
		if col == name {
			return true
		}
	}
	return false
}

func recordFromCells(cells map[string]string) Record {
	r := Record{
		Text:      cells[ColText],
		Label:     cells[ColLabel],
		SessionID: cells[ColSession],
		TurnID:    cells[ColTurn],
		Speaker:   cells[ColSpeaker],
		Severity:  cells[ColSeverity],
		Metadata: complaint.ConsultationMetadata{
			ConsultationContent: cells[ColConsultationContent],
			ConsultationResult:  cells[ColConsultationResult],
			RequirementType:     cells[ColRequirementType],
			ConsultationReason:  cells[ColConsultationReason],
		},
	}
	for key, value := range cells {
		if !isKnownColumn(key) {
			if r.Extra == nil {
				r.Extra = make(map[string]string)
			}
			r.Extra[key] = value
		}
	}
	return r
}

func stringifyValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		if value {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", value)
	}
}
