package extract

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"spimex-data/internal/model"
)

// Bulletin layout markers. The metric-ton section is the only one ingested;
// the sections after it use other units.
const (
	unitMarker    = "Единица измерения: Метрическая тонна"
	totalsMarker  = "Итого"
	productHeader = "код инструмента"
)

// Header fragments used to locate columns. Header cells wrap across lines in
// the source files, so matching is done on normalized text.
const (
	colProductID   = "код инструмента"
	colProductName = "наименование инструмента"
	colBasisName   = "базис поставки"
	colVolume      = "объем договоров в единицах измерения"
	colTotal       = "обьем договоров, руб." // sic: the bulletin misspells it
	colCount       = "количество договоров, шт."
)

// parseBulletin reads the metric-ton trade table out of one spreadsheet.
// Rows with no concluded contracts are not trades and are skipped; any other
// coercion failure fails the whole file.
func parseBulletin(path string, date time.Time) ([]model.TradeResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	sectionAt := -1
	for i, row := range rows {
		if rowContains(row, unitMarker) {
			sectionAt = i
			break
		}
	}
	if sectionAt < 0 {
		return nil, fmt.Errorf("no %q section found", unitMarker)
	}

	headerAt, cols, err := locateColumns(rows, sectionAt)
	if err != nil {
		return nil, err
	}

	var results []model.TradeResult
	for _, row := range rows[headerAt+1:] {
		id := cell(row, cols.productID)
		if id == "" || normalize(id) == productHeader {
			continue // blank spacer or repeated sub-header row
		}
		if strings.HasPrefix(id, totalsMarker) {
			break
		}

		count, err := parseInt(cell(row, cols.count))
		if err != nil {
			return nil, fmt.Errorf("row %q: contract count: %w", id, err)
		}
		if count <= 0 {
			continue // no concluded contracts for this instrument
		}

		volume, err := parseInt(cell(row, cols.volume))
		if err != nil {
			return nil, fmt.Errorf("row %q: volume: %w", id, err)
		}
		total, err := parseInt(cell(row, cols.total))
		if err != nil {
			return nil, fmt.Errorf("row %q: total: %w", id, err)
		}

		r := model.TradeResult{
			ExchangeProductID:   id,
			ExchangeProductName: cell(row, cols.productName),
			DeliveryBasisName:   cell(row, cols.basisName),
			Volume:              volume,
			Total:               total,
			Count:               count,
			Date:                date,
		}
		if err := r.DeriveIDs(); err != nil {
			return nil, fmt.Errorf("row %q: %w", id, err)
		}
		results = append(results, r)
	}

	return results, nil
}

// columnIndexes maps table columns located by header text.
type columnIndexes struct {
	productID   int
	productName int
	basisName   int
	volume      int
	total       int
	count       int
}

// locateColumns finds the header row following the unit marker and resolves
// each needed column by its (normalized) header text.
func locateColumns(rows [][]string, sectionAt int) (int, columnIndexes, error) {
	for i := sectionAt + 1; i < len(rows); i++ {
		cols := columnIndexes{productID: -1, productName: -1, basisName: -1, volume: -1, total: -1, count: -1}
		for j, c := range rows[i] {
			switch text := normalize(c); {
			case strings.Contains(text, colProductID):
				cols.productID = j
			case strings.Contains(text, colProductName):
				cols.productName = j
			case strings.Contains(text, colBasisName):
				cols.basisName = j
			case strings.Contains(text, colVolume):
				cols.volume = j
			case strings.Contains(text, colTotal):
				cols.total = j
			case strings.Contains(text, colCount):
				cols.count = j
			}
		}
		if cols.productID >= 0 {
			if cols.productName < 0 || cols.basisName < 0 || cols.volume < 0 || cols.total < 0 || cols.count < 0 {
				return 0, cols, fmt.Errorf("header row %d is missing expected columns", i)
			}
			return i, cols, nil
		}
	}
	return 0, columnIndexes{}, fmt.Errorf("no trade table header found after the unit marker")
}

// rowContains reports whether any cell in the row contains the marker text.
func rowContains(row []string, marker string) bool {
	for _, c := range row {
		if strings.Contains(c, marker) {
			return true
		}
	}
	return false
}

// cell returns a trimmed cell value, tolerating short rows.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// normalize flattens wrapped header text for matching.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToLower(s)
}

// parseInt coerces a bulletin numeric cell. Values may carry group spaces
// ("1 000") or be rendered as floats ("60.0"); a dash means zero.
func parseInt(s string) (int64, error) {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" || s == "-" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("value %q is not numeric", s)
	}
	return int64(f), nil
}
