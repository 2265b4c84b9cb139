// Package export renders enriched analysis results as an Excel workbook.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"transcript-insights-go/internal/types"
)

// Workbook builds a multi-sheet workbook from the results. The caller owns
// closing or writing the returned file.
func Workbook(results types.AnalysisResults) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return nil, err
	}
	f.SetCellValue("Summary", "A1", "Summary")
	f.SetCellValue("Summary", "B1", results.Summary)
	f.SetCellValue("Summary", "A3", "Section")
	f.SetCellValue("Summary", "B3", "Content")
	f.SetCellValue("Summary", "C3", "Error")
	for i, sec := range results.Sections {
		row := i + 4
		f.SetCellValue("Summary", cell("A", row), sec.Title)
		f.SetCellValue("Summary", cell("B", row), sec.Content)
		f.SetCellValue("Summary", cell("C", row), sec.Error)
	}

	if _, err := f.NewSheet("Action Items"); err != nil {
		return nil, err
	}
	for i, h := range []string{"ID", "Task", "Owner", "Assigned By", "Priority", "Timestamp (s)", "Confidence"} {
		f.SetCellValue("Action Items", cell(column(i), 1), h)
	}
	for i, a := range results.ActionItems {
		row := i + 2
		f.SetCellValue("Action Items", cell("A", row), a.ID)
		f.SetCellValue("Action Items", cell("B", row), a.Task)
		f.SetCellValue("Action Items", cell("C", row), a.Owner)
		f.SetCellValue("Action Items", cell("D", row), a.AssignedBy)
		f.SetCellValue("Action Items", cell("E", row), a.Priority)
		f.SetCellValue("Action Items", cell("F", row), a.Timestamp)
		if a.Confidence != nil {
			f.SetCellValue("Action Items", cell("G", row), *a.Confidence)
		}
	}

	if _, err := f.NewSheet("Decisions"); err != nil {
		return nil, err
	}
	for i, h := range []string{"ID", "Decision", "Made By", "Vote For", "Vote Against", "Abstain", "Confidence"} {
		f.SetCellValue("Decisions", cell(column(i), 1), h)
	}
	for i, d := range results.Decisions {
		row := i + 2
		f.SetCellValue("Decisions", cell("A", row), d.ID)
		f.SetCellValue("Decisions", cell("B", row), d.Text)
		f.SetCellValue("Decisions", cell("C", row), d.MadeBy)
		if d.VoteTally != nil {
			f.SetCellValue("Decisions", cell("D", row), d.VoteTally.For)
			f.SetCellValue("Decisions", cell("E", row), d.VoteTally.Against)
			f.SetCellValue("Decisions", cell("F", row), d.VoteTally.Abstain)
		}
		if d.Confidence != nil {
			f.SetCellValue("Decisions", cell("G", row), *d.Confidence)
		}
	}

	if _, err := f.NewSheet("Quotes"); err != nil {
		return nil, err
	}
	for i, h := range []string{"ID", "Quote", "Speaker", "Category", "Sentiment", "Timestamp (s)"} {
		f.SetCellValue("Quotes", cell(column(i), 1), h)
	}
	for i, q := range results.Quotes {
		row := i + 2
		f.SetCellValue("Quotes", cell("A", row), q.ID)
		f.SetCellValue("Quotes", cell("B", row), q.Text)
		f.SetCellValue("Quotes", cell("C", row), q.Speaker)
		f.SetCellValue("Quotes", cell("D", row), q.Category)
		f.SetCellValue("Quotes", cell("E", row), q.Sentiment)
		f.SetCellValue("Quotes", cell("F", row), q.Timestamp)
	}

	return f, nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func column(i int) string {
	return string(rune('A' + i))
}
