package dataset

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"github.com/minwonlab/sentinel/pkg/complaint"
)

// PrintReport renders a validation report for terminal consumption.
func PrintReport(w io.Writer, source string, ds *Dataset, rep *Report) {
	fmt.Fprintf(w, "데이터셋 검증: %s\n\n", source)

	verdict := color.Green.Sprint("통과")
	if !rep.Valid {
		verdict = color.Red.Sprint("실패")
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"항목", "값"})
	table.Append([]string{"검증 결과", verdict})
	table.Append([]string{"전체 데이터", strconv.Itoa(rep.RecordCount)})
	table.Append([]string{"오류", strconv.Itoa(len(rep.Errors))})
	table.Append([]string{"경고", strconv.Itoa(len(rep.Warnings))})
	table.Render()

	if len(rep.Errors) > 0 {
		fmt.Fprintf(w, "\n%s\n", color.Red.Sprintf("오류 (%d개):", len(rep.Errors)))
		for i, msg := range rep.Errors {
			fmt.Fprintf(w, "  %d. %s\n", i+1, msg)
		}
	}
	if len(rep.Warnings) > 0 {
		fmt.Fprintf(w, "\n%s\n", color.Yellow.Sprintf("경고 (%d개):", len(rep.Warnings)))
		for i, msg := range rep.Warnings {
			fmt.Fprintf(w, "  %d. %s\n", i+1, msg)
		}
	}
	if rep.Valid && len(rep.Warnings) == 0 {
		fmt.Fprintf(w, "\n%s\n", color.Green.Sprint("모든 검증 통과"))
	}

	if ds != nil && ds.HasColumn(ColLabel) {
		printLabelDistribution(w, ds)
	}
}

func printLabelDistribution(w io.Writer, ds *Dataset) {
	counts := ds.LabelCounts()
	if len(counts) == 0 {
		return
	}

	fmt.Fprintln(w, "\n라벨 분포:")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"라벨", "개수"})

	ordered := append([]complaint.Category{complaint.CategoryNormal}, complaint.AllCategories()...)
	listed := make(map[string]bool)
	for _, cat := range ordered {
		if count, ok := counts[string(cat)]; ok {
			table.Append([]string{string(cat), strconv.Itoa(count)})
			listed[string(cat)] = true
		}
	}
	// Invalid labels still show up so the reader can spot them.
	var rest []string
	for label := range counts {
		if !listed[label] {
			rest = append(rest, label)
		}
	}
	sort.Strings(rest)
	for _, label := range rest {
		table.Append([]string{label, strconv.Itoa(counts[label])})
	}
	table.Render()
}
