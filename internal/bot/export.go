package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"labreserva/internal/backend"
	"labreserva/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xuri/excelize/v2"
)

// handleExportFecha runs the weekly occupancy export: labs as rows,
// the seven days starting at the given date as columns.
func (b *Bot) handleExportFecha(ctx context.Context, chatID int64, text string, sesion *models.Sesion) {
	_, inicio, err := parseFecha(text)
	if err != nil {
		b.sendMessage(chatID, "⚠️ Fecha inválida. Usa AAAA-MM-DD:")
		return
	}
	b.clearStep(ctx, chatID)

	fin := inicio.AddDate(0, 0, 6)
	b.sendMessage(chatID, fmt.Sprintf("⏳ Generando el reporte del %s al %s…",
		inicio.Format("02.01.2006"), fin.Format("02.01.2006")))

	filePath, err := b.exportSemana(b.authCtx(ctx, sesion), inicio, fin)
	if err != nil {
		b.logger.Error().Err(err).Msg("Export failed")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(filePath))
	doc.Caption = fmt.Sprintf("📊 Ocupación del %s al %s", inicio.Format("02.01.2006"), fin.Format("02.01.2006"))
	if _, err := b.tgService.Send(doc); err != nil {
		b.logger.Error().Err(err).Str("file", filePath).Msg("Failed to send export document")
		b.sendMessage(chatID, "❌ No pude enviar el archivo.")
	}
}

// exportSemana builds the spreadsheet and returns the file path.
func (b *Bot) exportSemana(ctx context.Context, inicio, fin time.Time) (string, error) {
	if err := os.MkdirAll(b.config.Exports.Path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	labs, err := b.api.ListLaboratorios(ctx, backend.ParamsLaboratorios{})
	if err != nil {
		return "", fmt.Errorf("error getting laboratorios: %w", err)
	}

	porDia, err := b.reservasPorDia(ctx, inicio, fin)
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Ocupación"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Período: %s - %s",
		inicio.Format("02.01.2006"), fin.Format("02.01.2006")))

	dateCols := b.writeDateHeaders(f, sheetName, inicio, fin)
	b.writeLabHeaders(f, sheetName, labs)
	b.writeReservaCells(f, sheetName, labs, porDia, dateCols)

	_ = f.SetColWidth(sheetName, "A", "A", 25)
	for i := 'B'; i <= 'Z'; i++ {
		_ = f.SetColWidth(sheetName, string(i), string(i), 20)
	}

	lastCol := getLastColumn(len(dateCols) + 1)
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")

	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", style)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("export_%s_to_%s.xlsx",
		inicio.Format("2006-01-02"), fin.Format("2006-01-02"))
	filePath := filepath.Join(b.config.Exports.Path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	b.logger.Info().Str("file_path", filePath).Msg("Excel file created")
	return filePath, nil
}

// reservasPorDia fetches one day at a time, keyed by ISO date.
func (b *Bot) reservasPorDia(ctx context.Context, inicio, fin time.Time) (map[string][]models.Reserva, error) {
	porDia := make(map[string][]models.Reserva)
	for dia := inicio; !dia.After(fin); dia = dia.AddDate(0, 0, 1) {
		fecha := dia.Format("2006-01-02")
		reservas, err := b.api.ListReservas(ctx, backend.ParamsReservas{Fecha: fecha})
		if err != nil {
			return nil, fmt.Errorf("error getting reservas for %s: %w", fecha, err)
		}
		porDia[fecha] = reservas
	}
	return porDia, nil
}

func (b *Bot) writeDateHeaders(f *excelize.File, sheetName string, inicio, fin time.Time) map[string]int {
	col := 2
	dateCols := make(map[string]int)

	for dia := inicio; !dia.After(fin); dia = dia.AddDate(0, 0, 1) {
		cell, _ := excelize.CoordinatesToCellName(col, 2)
		_ = f.SetCellValue(sheetName, cell, dia.Format("02.01"))
		dateCols[dia.Format("2006-01-02")] = col

		style, _ := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
			Font:      &excelize.Font{Bold: true},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		_ = f.SetCellStyle(sheetName, cell, cell, style)

		col++
	}
	return dateCols
}

func (b *Bot) writeLabHeaders(f *excelize.File, sheetName string, labs []models.Laboratorio) {
	row := 3
	for _, lab := range labs {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(sheetName, cell, lab.Nombre)

		style, _ := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
			Font: &excelize.Font{Bold: true},
		})
		_ = f.SetCellStyle(sheetName, cell, cell, style)

		row++
	}
}

func (b *Bot) writeReservaCells(
	f *excelize.File, sheetName string,
	labs []models.Laboratorio,
	porDia map[string][]models.Reserva,
	dateCols map[string]int,
) {
	for fecha, reservas := range porDia {
		col, ok := dateCols[fecha]
		if !ok {
			continue
		}

		porLab := make(map[int64][]models.Reserva)
		for _, r := range reservas {
			if r.Cancelada() {
				continue
			}
			porLab[r.IDUbicacion] = append(porLab[r.IDUbicacion], r)
		}

		row := 3
		for _, lab := range labs {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			labReservas := porLab[lab.ID]

			var cellValue string
			todoElLab := false
			for _, r := range labReservas {
				objetivo := fmt.Sprintf("%d equipo(s)", len(r.Equipos))
				if r.EsTodoElLab() {
					objetivo = "todo el laboratorio"
					todoElLab = true
				}
				cellValue += fmt.Sprintf("%s %s–%s · %s\n", statusIcon(r.Status), r.HoraInicio(), r.HoraFin(), objetivo)
			}
			if cellValue == "" {
				cellValue = "Libre"
			}
			_ = f.SetCellValue(sheetName, cell, cellValue)

			if styleID, err := b.ocupacionStyle(f, len(labReservas), todoElLab); err == nil {
				_ = f.SetCellStyle(sheetName, cell, cell, styleID)
			}
			row++
		}
	}
}

// ocupacionStyle colors a cell by how taken the lab is that day:
// green when free, yellow with partial bookings, red when the whole
// lab is reserved.
func (b *Bot) ocupacionStyle(f *excelize.File, activas int, todoElLab bool) (int, error) {
	alignment := &excelize.Alignment{Horizontal: "left", Vertical: "top", WrapText: true}

	color := "#C6EFCE"
	switch {
	case todoElLab:
		color = "#FFC7CE"
	case activas > 0:
		color = "#FFEB9C"
	}
	return f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Alignment: alignment,
	})
}

// getLastColumn converts a 1-based column count to its letter name.
func getLastColumn(colCount int) string {
	name, err := excelize.ColumnNumberToName(colCount)
	if err != nil {
		return "H"
	}
	return name
}
