package xslsxGenerator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/xuri/excelize/v2"
)

const (
	holdingsSheet     = "Позиции"
	historySheet      = "История"
	transactionsSheet = "Операции"
	dateLayout        = "2006-01-02 15:04"
)

type XSLSXGenerator struct{}

func New() *XSLSXGenerator {
	return &XSLSXGenerator{}
}

// Generate renders the portfolio holdings, value history and transactions, one sheet each.
func (g *XSLSXGenerator) Generate(ctx context.Context, portfolio model.Portfolio, transactions []model.Transaction) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolio.PortfolioID))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	fillers := []func(*excelize.File) error{
		func(f *excelize.File) error { return g.fillHoldings(f, portfolio) },
		func(f *excelize.File) error { return g.fillHistory(f, portfolio.History) },
		func(f *excelize.File) error { return g.fillTransactions(f, transactions) },
	}
	for _, fill := range fillers {
		if err = fill(f); err != nil {
			slog.Error("got error while filling sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return nil, "", err
		}
	}

	// Удаляем лист по умолчанию "Sheet1"
	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XSLSXGenerator) fillHoldings(f *excelize.File, portfolio model.Portfolio) error {
	headers := []string{
		"тикер", "название", "кол-во", "средняя цена", "текущая цена",
		"вложено", "стоимость", "доход", "доход %", "реализовано", "дивиденды",
	}
	if err := writeTitle(f, holdingsSheet, portfolio.Name, "#cfe2f3", headers); err != nil { // Светло-голубой цвет
		return err
	}

	row := 3
	for _, a := range portfolio.Assets {
		values := []any{
			a.Symbol, a.Name,
			a.Quantity.InexactFloat64(), a.AveragePrice.InexactFloat64(), a.CurrentPrice.InexactFloat64(),
			a.TotalCost.InexactFloat64(), a.CurrentValue.InexactFloat64(),
			a.GainLoss.InexactFloat64(), a.GainLossPercentage.Round(2).InexactFloat64(),
			a.RealizedGainLoss.InexactFloat64(), a.DividendIncome.InexactFloat64(),
		}
		if err := writeRow(f, holdingsSheet, row, values); err != nil {
			return err
		}
		row++
	}

	totals := []any{
		"Итого", "", nil, nil, nil,
		portfolio.TotalCost.InexactFloat64(), portfolio.TotalValue.InexactFloat64(),
		portfolio.TotalGainLoss.InexactFloat64(), portfolio.TotalGainLossPercentage.Round(2).InexactFloat64(),
	}
	return writeRow(f, holdingsSheet, row+1, totals)
}

func (g *XSLSXGenerator) fillHistory(f *excelize.File, history []model.HistoryEntry) error {
	headers := []string{"дата", "стоимость", "вложено", "доход", "доход %"}
	if err := writeTitle(f, historySheet, "Динамика портфеля", "#d9ead3", headers); err != nil { // Светло-зеленый цвет
		return err
	}

	for i, e := range history {
		values := []any{
			e.Date.UTC().Format(dateLayout),
			e.TotalValue.InexactFloat64(), e.TotalCost.InexactFloat64(),
			e.GainLoss.InexactFloat64(), e.GainLossPercentage.Round(2).InexactFloat64(),
		}
		if err := writeRow(f, historySheet, i+3, values); err != nil {
			return err
		}
	}
	return nil
}

func (g *XSLSXGenerator) fillTransactions(f *excelize.File, transactions []model.Transaction) error {
	headers := []string{"дата", "тикер", "тип", "кол-во", "цена", "сумма", "комиссия", "активна"}
	if err := writeTitle(f, transactionsSheet, "История операций", "#cccccc", headers); err != nil { // Серый цвет
		return err
	}

	for i, tx := range transactions {
		active := "да"
		if !tx.IsActive {
			active = "нет"
		}
		values := []any{
			tx.Date.UTC().Format(dateLayout), tx.Symbol, string(tx.Type),
			tx.Quantity.InexactFloat64(), tx.Price.InexactFloat64(),
			tx.TotalAmount.InexactFloat64(), tx.Fees.InexactFloat64(), active,
		}
		if err := writeRow(f, transactionsSheet, i+3, values); err != nil {
			return err
		}
	}
	return nil
}

// writeTitle creates the sheet with a merged, filled title in row 1 and headers in row 2.
func writeTitle(f *excelize.File, sheet, title, color string, headers []string) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err = f.MergeCell(sheet, "A1", last); err != nil {
		return err
	}
	if err = f.SetCellStr(sheet, "A1", title); err != nil {
		return err
	}

	styleID, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{color},
		},
	})
	if err != nil {
		return err
	}

	if err = f.SetCellStyle(sheet, "A1", "A1", styleID); err != nil {
		return fmt.Errorf("ошибка применения стиля: %w", err)
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return err
		}
		_ = f.SetCellStr(sheet, cell, h)
	}
	return nil
}

// writeRow writes values from column A; nil values leave the cell empty.
func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err = f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
