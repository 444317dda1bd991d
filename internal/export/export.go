// Package export writes the week overview to an .xlsx file: the bed grid
// (who sleeps where on which night) plus per-night prices and per-person
// totals.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"couchage/internal/calendar"
	"couchage/internal/config"
	"couchage/internal/domain"
	"couchage/internal/models"
	"couchage/internal/pricing"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const gridSheet = "Couchages"
const totalsSheet = "Totals"

type Exporter struct {
	svc    domain.BookingService
	week   *calendar.Week
	cfg    config.ExportConfig
	logger *zerolog.Logger
}

func New(svc domain.BookingService, week *calendar.Week, cfg config.ExportConfig, logger *zerolog.Logger) *Exporter {
	return &Exporter{svc: svc, week: week, cfg: cfg, logger: logger}
}

// Export builds the workbook and returns the written file path.
func (e *Exporter) Export(ctx context.Context) (string, error) {
	if err := os.MkdirAll(e.cfg.Path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	bookings, err := e.svc.ListBookings(ctx)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %w", err)
	}
	prices, err := e.svc.NightPrices(ctx)
	if err != nil {
		return "", fmt.Errorf("error getting night prices: %w", err)
	}
	totals, err := e.svc.PersonTotals(ctx)
	if err != nil {
		return "", fmt.Errorf("error getting totals: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := e.writeGrid(f, bookings, prices); err != nil {
		return "", err
	}
	if err := e.writeTotals(f, totals); err != nil {
		return "", err
	}

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("couchages_%s_to_%s.xlsx",
		e.week.Start().Format(models.DateLayout),
		e.week.End().Format(models.DateLayout))
	filePath := filepath.Join(e.cfg.Path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("Excel file created")
	return filePath, nil
}

func (e *Exporter) writeGrid(f *excelize.File, bookings []*models.Booking, prices []models.NightPrice) error {
	index, err := f.NewSheet(gridSheet)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	nights := e.week.Nights()

	_ = f.SetCellValue(gridSheet, "A1", fmt.Sprintf("Nights: %s - %s",
		e.week.Start().Format("02.01.2006"),
		e.week.End().AddDate(0, 0, -1).Format("02.01.2006")))

	// Row 2: night headers, one column per night starting at B.
	_ = f.SetCellValue(gridSheet, "A2", "Room / Bed")
	for i, night := range nights {
		cell, _ := excelize.CoordinatesToCellName(i+2, 2)
		_ = f.SetCellValue(gridSheet, cell, night.Format("Mon 02.01"))
	}

	// occupant by (night, room, slot)
	occupants := make(map[string]string, len(bookings))
	for _, b := range bookings {
		occupants[b.NightKey()+"|"+b.Room+"|"+b.Slot] = b.Name
	}

	row := 3
	for _, room := range e.svc.Rooms() {
		for _, slot := range room.Slots {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			_ = f.SetCellValue(gridSheet, cell, fmt.Sprintf("%s / %s", room.Name, slot))
			for i, night := range nights {
				key := night.Format(models.DateLayout) + "|" + room.Name + "|" + slot
				if name, ok := occupants[key]; ok {
					cell, _ := excelize.CoordinatesToCellName(i+2, row)
					_ = f.SetCellValue(gridSheet, cell, name)
				}
			}
			row++
		}
	}

	// Footer: occupancy counts and prices per night.
	countRow, priceRow := row+1, row+2
	cell, _ := excelize.CoordinatesToCellName(1, countRow)
	_ = f.SetCellValue(gridSheet, cell, "Occupants")
	cell, _ = excelize.CoordinatesToCellName(1, priceRow)
	_ = f.SetCellValue(gridSheet, cell, "Price per person")
	for i, p := range prices {
		cell, _ := excelize.CoordinatesToCellName(i+2, countRow)
		_ = f.SetCellValue(gridSheet, cell, p.Occupants)
		if p.Priced {
			cell, _ := excelize.CoordinatesToCellName(i+2, priceRow)
			_ = f.SetCellValue(gridSheet, cell, pricing.FormatCents(p.PriceCents))
		}
	}

	_ = f.SetColWidth(gridSheet, "A", "A", 25)
	lastCol, _ := excelize.ColumnNumberToName(len(nights) + 1)
	_ = f.SetColWidth(gridSheet, "B", lastCol, 14)
	_ = f.MergeCell(gridSheet, "A1", lastCol+"1")

	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(gridSheet, "A1", "A1", style)

	return nil
}

func (e *Exporter) writeTotals(f *excelize.File, totals []models.PersonTotal) error {
	if _, err := f.NewSheet(totalsSheet); err != nil {
		return fmt.Errorf("error creating totals sheet: %w", err)
	}

	_ = f.SetCellValue(totalsSheet, "A1", "Name")
	_ = f.SetCellValue(totalsSheet, "B1", "Nights")
	_ = f.SetCellValue(totalsSheet, "C1", "Total")

	for i, t := range totals {
		row := i + 2
		_ = f.SetCellValue(totalsSheet, fmt.Sprintf("A%d", row), t.Name)
		_ = f.SetCellValue(totalsSheet, fmt.Sprintf("B%d", row), t.Nights)
		_ = f.SetCellValue(totalsSheet, fmt.Sprintf("C%d", row), pricing.FormatCents(t.TotalCents))
	}

	_ = f.SetColWidth(totalsSheet, "A", "C", 18)
	_ = f.SetCellValue(totalsSheet, "E1", fmt.Sprintf("Generated %s", time.Now().Format("2006-01-02 15:04")))

	return nil
}
