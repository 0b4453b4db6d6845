// Package workbook renders ranking results and performance summaries as
// Excel workbooks.
package workbook

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ignite/planner-ranker/internal/domain"
)

// AllPublishersSheet is the name of the combined ranking sheet.
const AllPublishersSheet = "All Publishers"

var rankingHeader = []string{
	"Final Rank",
	"Plan ID",
	"Publisher",
	"Tag",
	"CTR (%)",
	"EPC",
	"Avg Revenue",
	"Distribution",
	"Expected Clicks",
	"Budget Cap",
	"Subcategory",
	"Score",
	"Adjusted Score",
}

// WriteRankings builds a workbook with the combined ranking on the first
// sheet and one sheet per publisher, then writes it to w. Publisher sheets
// are emitted in sorted order so repeated runs produce identical files.
func WriteRankings(w io.Writer, result domain.RankingResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", AllPublishersSheet); err != nil {
		return fmt.Errorf("workbook: rename sheet: %w", err)
	}
	if err := writeRankingSheet(f, AllPublishersSheet, result.AllPublishers); err != nil {
		return err
	}

	for _, pub := range sortedPublishers(result.ByPublisher) {
		name := sheetName(pub)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("workbook: add sheet %q: %w", name, err)
		}
		if err := writeRankingSheet(f, name, result.ByPublisher[pub]); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("workbook: write: %w", err)
	}
	return nil
}

func writeRankingSheet(f *excelize.File, sheet string, entries []domain.RankedEntry) error {
	if err := writeHeader(f, sheet, rankingHeader); err != nil {
		return err
	}

	for i, e := range entries {
		row := i + 2
		cells := []interface{}{
			e.FinalRank,
			e.PlanID,
			e.Publisher,
			string(e.Tag),
			e.CTR,
			e.EPC,
			e.AvgRevenue,
			e.ExpectedDistribution,
			e.ExpectedClicks,
			e.BudgetCap,
			e.Subcategory,
			e.Score,
			e.AdjustedScore,
		}
		if err := setRow(f, sheet, row, cells); err != nil {
			return err
		}
	}

	// Freeze the header row and widen the identifier columns.
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("workbook: freeze panes on %q: %w", sheet, err)
	}
	if err := f.SetColWidth(sheet, "B", "C", 22); err != nil {
		return fmt.Errorf("workbook: column width on %q: %w", sheet, err)
	}
	return nil
}

var performanceHeader = []string{
	"Plan ID",
	"Total Revenue",
	"Avg Revenue",
	"Total Distribution",
	"Total Clicks",
	"CTR (%)",
	"EPC",
	"Subcategory Fallback",
}

// WritePerformance builds a single-sheet workbook summarizing aggregated
// metrics per plan, sorted by total revenue descending with plan id as the
// tiebreak.
func WritePerformance(w io.Writer, metrics map[string]domain.AggregatedMetrics) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Performance"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("workbook: rename sheet: %w", err)
	}
	if err := writeHeader(f, sheet, performanceHeader); err != nil {
		return err
	}

	ids := make([]string, 0, len(metrics))
	for id := range metrics {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		mi, mj := metrics[ids[i]], metrics[ids[j]]
		if mi.TotalRevenue != mj.TotalRevenue {
			return mi.TotalRevenue > mj.TotalRevenue
		}
		return ids[i] < ids[j]
	})

	for i, id := range ids {
		m := metrics[id]
		fallback := "no"
		if m.SubcategoryFallback {
			fallback = "yes"
		}
		cells := []interface{}{
			id,
			m.TotalRevenue,
			m.AvgRevenue,
			m.TotalDistribution,
			m.TotalClicks,
			m.CTR,
			m.EPC,
			fallback,
		}
		if err := setRow(f, sheet, i+2, cells); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("workbook: write: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, header []string) error {
	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := setRow(f, sheet, 1, cells); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("workbook: header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("workbook: apply header style on %q: %w", sheet, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("workbook: cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("workbook: set row %d on %q: %w", row, sheet, err)
	}
	return nil
}

func sortedPublishers(byPublisher map[string][]domain.RankedEntry) []string {
	pubs := make([]string, 0, len(byPublisher))
	for pub := range byPublisher {
		pubs = append(pubs, pub)
	}
	sort.Strings(pubs)
	return pubs
}

// sheetName makes a publisher name safe for use as a sheet title. Excel
// rejects a handful of characters and caps titles at 31 runes.
func sheetName(pub string) string {
	out := make([]rune, 0, len(pub))
	for _, r := range pub {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	if len(out) > 31 {
		out = out[:31]
	}
	if len(out) == 0 {
		return "Publisher"
	}
	return string(out)
}

// RankingsFilename returns the timestamped name for a rankings workbook.
func RankingsFilename(now time.Time) string {
	return fmt.Sprintf("rankings_%s.xlsx", now.Format("20060102_150405"))
}

// PerformanceFilename returns the timestamped name for a performance workbook.
func PerformanceFilename(now time.Time) string {
	return fmt.Sprintf("performance_%s.xlsx", now.Format("20060102_150405"))
}
