package datanorm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/ignite/planner-ranker/internal/domain"
)

// ReadRows reads a CSV stream and converts it into raw rows keyed by the
// original header names. Rows that fail to parse at the CSV level are
// counted, not fatal.
func ReadRows(r io.Reader) ([]RawRow, int, error) {
	reader := csv.NewReader(stripBOM(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	mapping := MapColumns(header)
	if mapping == nil {
		return nil, 0, fmt.Errorf("no plan identifier column detected in header: %v", header)
	}

	var rows []RawRow
	errCount := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			errCount++
			continue
		}
		rows = append(rows, mapping.Row(record))
	}
	return rows, errCount, nil
}

// ImportHistory reads a CSV stream of historical performance rows and
// normalizes them. Returns the records plus an ImportResult for logging.
func ImportHistory(r io.Reader, fileKey string) ([]domain.HistoricalRecord, ImportResult, error) {
	start := time.Now()
	rows, csvErrs, err := ReadRows(r)
	if err != nil {
		return nil, ImportResult{FileKey: fileKey, Kind: KindHistory}, err
	}
	records, skipped := NormalizeHistory(rows, time.Now().UTC())
	return records, ImportResult{
		FileKey:   fileKey,
		Kind:      KindHistory,
		TotalRows: len(rows) + csvErrs,
		GoodRows:  len(records),
		ErrorRows: csvErrs + skipped,
		Duration:  time.Since(start),
	}, nil
}

// ImportPlans reads a CSV stream of plan/inventory rows and normalizes
// them, completing unset fields from lookup when provided.
func ImportPlans(ctx context.Context, r io.Reader, fileKey string, lookup PlanLookup) ([]domain.Plan, ImportResult, error) {
	start := time.Now()
	rows, csvErrs, err := ReadRows(r)
	if err != nil {
		return nil, ImportResult{FileKey: fileKey, Kind: KindPlan}, err
	}
	plans, skipped := NormalizePlans(ctx, rows, lookup)
	return plans, ImportResult{
		FileKey:   fileKey,
		Kind:      KindPlan,
		TotalRows: len(rows) + csvErrs,
		GoodRows:  len(plans),
		ErrorRows: csvErrs + skipped,
		Duration:  time.Since(start),
	}, nil
}

// stripBOM wraps a reader to strip a UTF-8 BOM if present. Peek buffers
// across short reads, so the mark is detected even when the underlying
// reader hands back one byte at a time.
func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if lead, err := br.Peek(3); err == nil && bytes.Equal(lead, []byte{0xEF, 0xBB, 0xBF}) {
		br.Discard(3)
	}
	return br
}
