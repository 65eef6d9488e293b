package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/carlosf02/acg-propack/internal/app"
	"github.com/carlosf02/acg-propack/internal/core"
	"github.com/spf13/pflag"
)

// ErrUsage is returned for malformed command lines.
var ErrUsage = errors.New("usage error")

const usage = `Commands:
  receive <client_id> [--location ID] [--number WR] [--tracking T] [--carrier C] [--notes N]
  move <wr_id> <to_location_id> [--from ID] [--notes N]
  consolidate <client_id> <to_location_id> <wr_id> <wr_id>... [--number WR] [--notes N]
  cancel-wr <wr_id> [--notes N]
  shipment-create <client_id> [--number SHP] [--from-warehouse ID] [--carrier C]
  shipment-add <shipment_id> <wr_id>...
  ship <shipment_id> [--carrier C] [--tracking T] [--notes N]
  pack | deliver | cancel-shipment <shipment_id>
  trace <wr_id>
  trace-shipment <shipment_id>
  ledger <client_id> [--type T] [--from DATE] [--to DATE] [--limit N]
  export-ledger <client_id> <file.xlsx> [--type T] [--from DATE] [--to DATE]`

// Usage returns the command summary.
func Usage() string { return usage }

// Run executes a one-shot command. args[0] is the subcommand name; results
// are written to out as indented JSON.
func Run(ctx context.Context, svc app.ApplicationService, actor *core.Actor, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no command given\n%s", ErrUsage, usage)
	}
	cmd, rest := args[0], args[1:]
	fs := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var result any
	var err error
	switch cmd {
	case "receive":
		location := fs.Int64("location", 0, "storage location id")
		number := fs.String("number", "", "WR number (generated when empty)")
		tracking := fs.String("tracking", "", "carrier tracking number")
		carrier := fs.String("carrier", "", "inbound carrier")
		notes := fs.String("notes", "", "notes")
		ids, perr := parse(fs, rest, 1, 1)
		if perr != nil {
			return perr
		}
		req := app.ReceiveWRRequest{ClientID: ids[0], WRNumber: *number, Carrier: *carrier, Notes: *notes, Actor: actor}
		if fs.Changed("location") {
			req.LocationID = location
		}
		if *tracking != "" {
			req.TrackingNumber = tracking
		}
		result, err = svc.ReceiveWR(ctx, req)

	case "move":
		from := fs.Int64("from", 0, "expected current location id")
		notes := fs.String("notes", "", "notes")
		ids, perr := parse(fs, rest, 2, 2)
		if perr != nil {
			return perr
		}
		req := app.MoveWRRequest{WRID: ids[0], ToLocationID: ids[1], Notes: *notes, Actor: actor}
		if fs.Changed("from") {
			req.FromLocationID = from
		}
		result, err = svc.MoveWR(ctx, req)

	case "consolidate":
		number := fs.String("number", "", "output WR number (generated when empty)")
		notes := fs.String("notes", "", "notes")
		ids, perr := parse(fs, rest, 3, -1)
		if perr != nil {
			return perr
		}
		result, err = svc.Consolidate(ctx, app.ConsolidateRequest{
			ClientID:     ids[0],
			ToLocationID: ids[1],
			InputWRIDs:   ids[2:],
			Output:       app.OutputWRInput{WRNumber: *number},
			Notes:        *notes,
			Actor:        actor,
		})

	case "cancel-wr":
		notes := fs.String("notes", "", "notes")
		ids, perr := parse(fs, rest, 1, 1)
		if perr != nil {
			return perr
		}
		result, err = svc.CancelWR(ctx, app.CancelWRRequest{WRID: ids[0], Notes: *notes, Actor: actor})

	case "shipment-create":
		number := fs.String("number", "", "shipment number (generated when empty)")
		fromWH := fs.Int64("from-warehouse", 0, "warehouse every item must be in")
		carrier := fs.String("carrier", "", "outbound carrier")
		ids, perr := parse(fs, rest, 1, 1)
		if perr != nil {
			return perr
		}
		req := app.CreateShipmentRequest{ClientID: ids[0], ShipmentNumber: *number, Carrier: *carrier, Actor: actor}
		if fs.Changed("from-warehouse") {
			req.FromWarehouseID = fromWH
		}
		result, err = svc.CreateShipment(ctx, req)

	case "shipment-add":
		ids, perr := parse(fs, rest, 2, -1)
		if perr != nil {
			return perr
		}
		result, err = svc.AddShipmentItems(ctx, app.AddShipmentItemsRequest{ShipmentID: ids[0], WRIDs: ids[1:], Actor: actor})

	case "ship":
		carrier := fs.String("carrier", "", "carrier")
		tracking := fs.String("tracking", "", "tracking number")
		notes := fs.String("notes", "", "notes appended to the shipment")
		ids, perr := parse(fs, rest, 1, 1)
		if perr != nil {
			return perr
		}
		req := app.ShipShipmentRequest{ShipmentID: ids[0], Actor: actor}
		if fs.Changed("carrier") {
			req.Carrier = carrier
		}
		if fs.Changed("tracking") {
			req.TrackingNumber = tracking
		}
		if fs.Changed("notes") {
			req.Notes = notes
		}
		result, err = svc.ShipShipment(ctx, req)

	case "pack", "deliver", "cancel-shipment":
		ids, perr := parse(fs, rest, 1, 1)
		if perr != nil {
			return perr
		}
		fn := map[string]func(context.Context, int64, *core.Actor) (*app.ShipmentResult, error){
			"pack":            svc.PackShipment,
			"deliver":         svc.DeliverShipment,
			"cancel-shipment": svc.CancelShipment,
		}[cmd]
		result, err = fn(ctx, ids[0], actor)

	case "trace":
		ids, perr := parse(fs, rest, 1, 1)
		if perr != nil {
			return perr
		}
		result, err = svc.TraceReceipt(ctx, ids[0])

	case "trace-shipment":
		ids, perr := parse(fs, rest, 1, 1)
		if perr != nil {
			return perr
		}
		result, err = svc.TraceShipment(ctx, ids[0])

	case "ledger":
		q := ledgerFlags(fs)
		limit := fs.Int("limit", 50, "maximum rows")
		ids, perr := parse(fs, rest, 1, 1)
		if perr != nil {
			return perr
		}
		query, qerr := q.query(ids[0])
		if qerr != nil {
			return qerr
		}
		query.Limit = *limit
		result, err = svc.LedgerHistory(ctx, query)

	case "export-ledger":
		q := ledgerFlags(fs)
		if err := fs.Parse(rest); err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		if fs.NArg() != 2 {
			return fmt.Errorf("%w: export-ledger <client_id> <file.xlsx>", ErrUsage)
		}
		clientID, perr := parseID(fs.Arg(0))
		if perr != nil {
			return perr
		}
		query, qerr := q.query(clientID)
		if qerr != nil {
			return qerr
		}
		return exportLedger(ctx, svc, query, fs.Arg(1), out)

	default:
		return fmt.Errorf("%w: unknown command %q\n%s", ErrUsage, cmd, usage)
	}
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// parse parses flags and requires between min and max positional ids (max < 0: unbounded).
func parse(fs *pflag.FlagSet, args []string, min, max int) ([]int64, error) {
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	n := fs.NArg()
	if n < min || (max >= 0 && n > max) {
		return nil, fmt.Errorf("%w: %s takes %s id arguments, got %d", ErrUsage, fs.Name(), arity(min, max), n)
	}
	ids := make([]int64, n)
	for i, a := range fs.Args() {
		id, err := parseID(a)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

func arity(min, max int) string {
	switch {
	case max < 0:
		return fmt.Sprintf("at least %d", min)
	case min == max:
		return strconv.Itoa(min)
	}
	return fmt.Sprintf("%d to %d", min, max)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not a valid id", ErrUsage, s)
	}
	return id, nil
}

type ledgerOpts struct {
	txnType, from, to *string
}

func ledgerFlags(fs *pflag.FlagSet) ledgerOpts {
	return ledgerOpts{
		txnType: fs.String("type", "", "transaction type filter"),
		from:    fs.String("from", "", "start date (YYYY-MM-DD)"),
		to:      fs.String("to", "", "end date, exclusive (YYYY-MM-DD)"),
	}
}

func (o ledgerOpts) query(clientID int64) (app.LedgerQuery, error) {
	q := app.LedgerQuery{ClientID: clientID, Type: strings.ToUpper(*o.txnType)}
	var err error
	if *o.from != "" {
		if q.From, err = time.Parse("2006-01-02", *o.from); err != nil {
			return q, fmt.Errorf("%w: invalid --from %q", ErrUsage, *o.from)
		}
	}
	if *o.to != "" {
		if q.To, err = time.Parse("2006-01-02", *o.to); err != nil {
			return q, fmt.Errorf("%w: invalid --to %q", ErrUsage, *o.to)
		}
	}
	return q, nil
}

func exportLedger(ctx context.Context, svc app.ApplicationService, q app.LedgerQuery, path string, out io.Writer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := svc.ExportLedger(ctx, f, q); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	_, err = fmt.Fprintf(out, "Ledger written to %s\n", path)
	return err
}
