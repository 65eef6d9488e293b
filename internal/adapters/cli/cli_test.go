package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/carlosf02/acg-propack/internal/adapters/cli"
	"github.com/carlosf02/acg-propack/internal/app"
	"github.com/carlosf02/acg-propack/internal/core"
	"github.com/carlosf02/acg-propack/internal/store/memory"
	"go.uber.org/zap"
)

type numbers struct{ n int }

func (c *numbers) NextWRNumber() string       { c.n++; return fmt.Sprintf("WR-%d", c.n) }
func (c *numbers) NextShipmentNumber() string { c.n++; return fmt.Sprintf("SHP-%d", c.n) }

type harness struct {
	svc    app.ApplicationService
	actor  *core.Actor
	client int64
	loc1   int64
	loc2   int64
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st := memory.New()
	c := st.AddClient(core.Client{ClientCode: "ACME", Name: "Acme", IsActive: true})
	w := st.AddWarehouse(core.Warehouse{Code: "W1", Name: "Main", IsActive: true})
	l1, _ := st.AddLocation(core.StorageLocation{WarehouseID: w.ID, Code: "A", LocationType: core.LocationStorage, IsActive: true})
	l2, _ := st.AddLocation(core.StorageLocation{WarehouseID: w.ID, Code: "B", LocationType: core.LocationStorage, IsActive: true})
	return &harness{
		svc:    app.NewAppService(st, &numbers{}, nil, zap.NewNop()),
		actor:  &core.Actor{ID: 1, Username: "cli"},
		client: c.ID,
		loc1:   l1.ID,
		loc2:   l2.ID,
	}
}

func (h *harness) run(t *testing.T, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	if err := cli.Run(context.Background(), h.svc, h.actor, args, &out); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out.Bytes()
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func TestRun_ReceiveMoveTrace(t *testing.T) {
	h := newHarness(t)

	var rec app.ReceiptResult
	if err := json.Unmarshal(h.run(t, "receive", id(h.client), "--location", id(h.loc1), "--tracking", "1Z"), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Receipt.TrackingNumber == nil || *rec.Receipt.TrackingNumber != "1Z" {
		t.Errorf("receipt = %+v", rec.Receipt)
	}
	wr := id(rec.Receipt.ID)

	var mv app.MoveResult
	if err := json.Unmarshal(h.run(t, "move", wr, id(h.loc2), "--from", id(h.loc1)), &mv); err != nil {
		t.Fatal(err)
	}
	if mv.ToLocationID != h.loc2 {
		t.Errorf("move = %+v", mv)
	}

	var trace core.ReceiptTrace
	if err := json.Unmarshal(h.run(t, "trace", wr), &trace); err != nil {
		t.Fatal(err)
	}
	if len(trace.InventoryHistory) != 2 {
		t.Errorf("history = %d entries, want 2", len(trace.InventoryHistory))
	}
}

func TestRun_ShipmentAndExport(t *testing.T) {
	h := newHarness(t)
	var rec app.ReceiptResult
	if err := json.Unmarshal(h.run(t, "receive", id(h.client), "--location", id(h.loc1)), &rec); err != nil {
		t.Fatal(err)
	}

	var sh core.Shipment
	var created app.ShipmentResult
	if err := json.Unmarshal(h.run(t, "shipment-create", id(h.client)), &created); err != nil {
		t.Fatal(err)
	}
	sh = *created.Shipment
	h.run(t, "shipment-add", id(sh.ID), id(rec.Receipt.ID))
	h.run(t, "ship", id(sh.ID), "--carrier", "DHL")

	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	out := h.run(t, "export-ledger", id(h.client), path, "--type", "ship")
	if !bytes.Contains(out, []byte(path)) {
		t.Errorf("output = %q", out)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Fatalf("export file: %v", err)
	}
}

func TestRun_Errors(t *testing.T) {
	h := newHarness(t)
	tests := []struct {
		name string
		args []string
		kind error
	}{
		{"no command", nil, cli.ErrUsage},
		{"unknown command", []string{"teleport"}, cli.ErrUsage},
		{"bad id", []string{"move", "x", "2"}, cli.ErrUsage},
		{"missing args", []string{"move", "1"}, cli.ErrUsage},
		{"unknown flag", []string{"trace", "1", "--verbose"}, cli.ErrUsage},
		{"unknown wr", []string{"trace", "99"}, core.ErrNotFound},
		{"single input", []string{"consolidate", id(h.client), id(h.loc1), "5"}, core.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cli.Run(context.Background(), h.svc, h.actor, tt.args, &bytes.Buffer{})
			if !errors.Is(err, tt.kind) {
				t.Errorf("err = %v, want %v", err, tt.kind)
			}
		})
	}
}
