package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/carlosf02/acg-propack/internal/core"
	"github.com/carlosf02/acg-propack/internal/report"
	"github.com/xuri/excelize/v2"
)

func TestWriteLedgerXLSX(t *testing.T) {
	from, to := "LOC-1", "LOC-2"
	refType, refID := core.RefWRMove, "12"
	entries := []core.LedgerEntry{
		{
			TransactionID: 9, TxnType: core.TxnMove, WRNumber: "WR-12",
			PerformedAt:      time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC),
			FromLocationCode: &from, ToLocationCode: &to, Qty: 1, PerformedBy: "operator",
			ReferenceType: &refType, ReferenceID: &refID, Notes: "aisle swap",
		},
		{TransactionID: 3, TxnType: core.TxnReceive, WRNumber: "WR-12", ToLocationCode: &from, Qty: 1},
	}

	var buf bytes.Buffer
	if err := report.WriteLedgerXLSX(&buf, entries); err != nil {
		t.Fatalf("WriteLedgerXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Ledger")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "transaction_id" || rows[0][2] != "txn_type" {
		t.Errorf("header = %v", rows[0])
	}
	got := rows[1]
	if got[2] != "MOVE" || got[4] != "LOC-1" || got[5] != "LOC-2" || got[8] != "WR_MOVE:12" || got[9] != "aisle swap" {
		t.Errorf("first row = %v", got)
	}
	if rows[2][4] != "" || rows[2][5] != "LOC-1" {
		t.Errorf("receive row = %v", rows[2])
	}
}
