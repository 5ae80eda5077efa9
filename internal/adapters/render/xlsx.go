package render

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/okian/traderheat/internal/domain/model"
	"github.com/okian/traderheat/internal/domain/pivot"
)

// RecordsSheet lists the cleaned records behind the grids.
const RecordsSheet = "Records"

const timestampLayout = "2006-01-02 15:04"

// Sheet is one heatmap worksheet.
type Sheet struct {
	Name string
	Grid pivot.Grid
}

// XLSX builds a workbook with one coloured heatmap sheet per entry of sheets
// followed by the Records sheet.
func XLSX(sheets []Sheet, records []model.CleanedRecord, opts Options) ([]byte, error) {
	pal, err := opts.Palette()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	first := true
	for _, s := range sheets {
		if err := addSheet(f, s.Name, first); err != nil {
			return nil, err
		}
		first = false
		if err := writeGrid(f, s, pal); err != nil {
			return nil, fmt.Errorf("%w: sheet %q: %w", ErrRender, s.Name, err)
		}
	}
	if err := addSheet(f, RecordsSheet, first); err != nil {
		return nil, err
	}
	if err := writeRecords(f, records); err != nil {
		return nil, fmt.Errorf("%w: records: %w", ErrRender, err)
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx: %w", ErrRender, err)
	}
	return buf.Bytes(), nil
}

// addSheet renames the default sheet for the first call.
func addSheet(f *excelize.File, name string, first bool) error {
	var err error
	if first {
		err = f.SetSheetName("Sheet1", name)
	} else {
		_, err = f.NewSheet(name)
	}
	if err != nil {
		return fmt.Errorf("%w: sheet %q: %w", ErrRender, name, err)
	}
	return nil
}

func writeGrid(f *excelize.File, s Sheet, pal Palette) error {
	g := s.Grid

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "left", TextRotation: 45},
	})
	if err != nil {
		return err
	}
	for j, t := range g.Traders {
		cell, err := excelize.CoordinatesToCellName(j+2, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(s.Name, cell, t); err != nil {
			return err
		}
		if err := f.SetCellStyle(s.Name, cell, cell, header); err != nil {
			return err
		}
	}

	styles := make(map[RGB]int)
	lo, hi := g.Min(), g.Max()
	for i, slot := range g.Slots {
		row := i + 2
		if err := f.SetCellValue(s.Name, fmt.Sprintf("A%d", row), slot); err != nil {
			return err
		}
		for j := range g.Traders {
			v := g.Counts[i][j]
			cell, err := excelize.CoordinatesToCellName(j+2, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(s.Name, cell, v); err != nil {
				return err
			}
			bg := pal.Color(v, lo, hi)
			id, ok := styles[bg]
			if !ok {
				if id, err = cellStyle(f, bg); err != nil {
					return err
				}
				styles[bg] = id
			}
			if err := f.SetCellStyle(s.Name, cell, cell, id); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(s.Name, "A", "A", 12); err != nil {
		return err
	}
	if len(g.Traders) > 0 {
		last, err := excelize.ColumnNumberToName(len(g.Traders) + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(s.Name, "B", last, 10); err != nil {
			return err
		}
	}
	return nil
}

func cellStyle(f *excelize.File, bg RGB) (int, error) {
	border := make([]excelize.Border, 0, 4)
	for _, side := range []string{"left", "right", "top", "bottom"} {
		border = append(border, excelize.Border{Type: side, Color: white.Hex(), Style: 1})
	}
	return f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{bg.Hex()}},
		Font:      &excelize.Font{Bold: true, Color: TextOn(bg).Hex()},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
}

func writeRecords(f *excelize.File, records []model.CleanedRecord) error {
	headers := []any{"Date", "Event", "Scheduled for in-play", "Trader", "Hour", "Time slot"}
	if err := f.SetSheetRow(RecordsSheet, "A1", &headers); err != nil {
		return err
	}
	for i, r := range records {
		trader := ""
		if r.HasTrader {
			trader = r.Trader
		}
		row := []any{
			r.Timestamp.Format(timestampLayout),
			r.Event,
			r.ScheduledForInPlay,
			trader,
			r.Hour,
			r.TimeSlot,
		}
		if err := f.SetSheetRow(RecordsSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(RecordsSheet, "A", "F", 18)
}
