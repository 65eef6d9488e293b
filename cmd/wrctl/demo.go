package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/carlosf02/acg-propack/internal/adapters/cli"
	"github.com/carlosf02/acg-propack/internal/app"
	"github.com/carlosf02/acg-propack/internal/core"
	"github.com/carlosf02/acg-propack/internal/store/memory"
)

// demoSeed holds the ids of the rows seededMemoryStore creates.
type demoSeed struct {
	client    int64
	warehouse int64
	receiving int64
	storage   int64
}

// seededMemoryStore returns a store with one client and two warehouses:
// MIA (RCV-01, A-01-01) and ORL (B-01-01).
func seededMemoryStore() (*memory.Store, demoSeed) {
	st := memory.New()
	var seed demoSeed
	seed.client = st.AddClient(core.Client{ClientCode: "ACME", Name: "Acme Imports", IsActive: true}).ID
	mia := st.AddWarehouse(core.Warehouse{Code: "MIA", Name: "Miami", IsActive: true})
	orl := st.AddWarehouse(core.Warehouse{Code: "ORL", Name: "Orlando", IsActive: true})
	seed.warehouse = mia.ID

	for _, l := range []struct {
		dst *int64
		loc core.StorageLocation
	}{
		{&seed.receiving, core.StorageLocation{WarehouseID: mia.ID, Code: "RCV-01", LocationType: core.LocationReceiving}},
		{&seed.storage, core.StorageLocation{WarehouseID: mia.ID, Code: "A-01-01", LocationType: core.LocationStorage}},
		{nil, core.StorageLocation{WarehouseID: orl.ID, Code: "B-01-01", LocationType: core.LocationStorage}},
	} {
		l.loc.IsActive = true
		loc, err := st.AddLocation(l.loc)
		if err != nil {
			panic(err)
		}
		if l.dst != nil {
			*l.dst = loc.ID
		}
	}
	return st, seed
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

// runDemo walks two packages from receiving to dispatch.
func runDemo(ctx context.Context, svc app.ApplicationService, seed demoSeed, actor *core.Actor, out io.Writer) error {
	step := func(title string, args ...string) error {
		fmt.Fprintf(out, "\n== %s: wrctl %v\n", title, args)
		return cli.Run(ctx, svc, actor, args, out)
	}

	var wrIDs []int64
	for _, tracking := range []string{"1Z-DEMO-1", "1Z-DEMO-2"} {
		res, err := svc.ReceiveWR(ctx, app.ReceiveWRRequest{
			ClientID:       seed.client,
			LocationID:     &seed.receiving,
			TrackingNumber: &tracking,
			Actor:          actor,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "received %s (id %d) at RCV-01\n", res.Receipt.WRNumber, res.Receipt.ID)
		wrIDs = append(wrIDs, res.Receipt.ID)
	}

	if err := step("putaway", "move", itoa(wrIDs[0]), itoa(seed.storage), "--from", itoa(seed.receiving)); err != nil {
		return err
	}

	merged, err := svc.Consolidate(ctx, app.ConsolidateRequest{
		ClientID:     seed.client,
		InputWRIDs:   wrIDs,
		ToLocationID: seed.storage,
		Actor:        actor,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nconsolidated %v into %s (id %d)\n", wrIDs, merged.OutputWRNumber, merged.OutputWRID)
	if err := step("lineage", "trace", itoa(wrIDs[0])); err != nil {
		return err
	}

	sh, err := svc.CreateShipment(ctx, app.CreateShipmentRequest{ClientID: seed.client, FromWarehouseID: &seed.warehouse, Actor: actor})
	if err != nil {
		return err
	}
	shipmentID := itoa(sh.Shipment.ID)
	if err := step("attach", "shipment-add", shipmentID, itoa(merged.OutputWRID)); err != nil {
		return err
	}
	if err := step("dispatch", "ship", shipmentID, "--carrier", "UPS"); err != nil {
		return err
	}
	return step("shipment trace", "trace-shipment", shipmentID)
}
