package report

import (
	"fmt"
	"io"

	"github.com/carlosf02/acg-propack/internal/core"
	"github.com/xuri/excelize/v2"
)

const ledgerSheet = "Ledger"

var ledgerHeader = []any{
	"transaction_id",
	"performed_at",
	"txn_type",
	"wr_number",
	"from_location",
	"to_location",
	"qty",
	"performed_by",
	"reference",
	"notes",
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// WriteLedgerXLSX renders ledger entries as a single-sheet workbook.
func WriteLedgerXLSX(w io.Writer, entries []core.LedgerEntry) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), ledgerSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(ledgerSheet, "A1", &ledgerHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(ledgerHeader))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(ledgerSheet, "A1", lastCol+"1", style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, e := range entries {
		ref := ""
		if e.ReferenceType != nil {
			ref = *e.ReferenceType + ":" + deref(e.ReferenceID)
		}
		row := []any{
			e.TransactionID,
			e.PerformedAt.UTC().Format("2006-01-02 15:04:05"),
			string(e.TxnType),
			e.WRNumber,
			deref(e.FromLocationCode),
			deref(e.ToLocationCode),
			e.Qty,
			e.PerformedBy,
			ref,
			e.Notes,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ledgerSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
