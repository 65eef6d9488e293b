package app

import "github.com/carlosf02/acg-propack/internal/core"

// ReceiptResult is returned by ReceiveWR and CancelWR.
type ReceiptResult struct {
	Receipt       *core.WarehouseReceipt `json:"receipt"`
	TransactionID *int64                 `json:"transaction_id,omitempty"`
	BalanceID     *int64                 `json:"balance_id,omitempty"`
}

// MoveResult is returned by MoveWR.
type MoveResult struct {
	TransactionID  int64  `json:"transaction_id"`
	WRID           int64  `json:"wr_id"`
	FromLocationID *int64 `json:"from_location_id"`
	ToLocationID   int64  `json:"to_location_id"`
	BalanceID      int64  `json:"balance_id"`
}

// ConsolidateResult is returned by Consolidate.
type ConsolidateResult struct {
	RepackOperationID    int64   `json:"repack_operation_id"`
	OutputWRID           int64   `json:"output_wr_id"`
	OutputWRNumber       string  `json:"output_wr_number"`
	InputWRIDs           []int64 `json:"input_wr_ids"`
	ConsumeTransactionID int64   `json:"consume_transaction_id"`
	ProduceTransactionID int64   `json:"produce_transaction_id"`
	ToLocationID         int64   `json:"to_location_id"`
}

// ShipmentResult is returned by shipment lifecycle operations.
type ShipmentResult struct {
	Shipment *core.Shipment `json:"shipment"`
}

// AddItemsResult is returned by AddShipmentItems.
type AddItemsResult struct {
	Count int `json:"count"`
}

// LedgerResult is returned by LedgerHistory.
type LedgerResult struct {
	Entries []core.LedgerEntry `json:"entries"`
}
