package worker

import (
	"context"
	"fmt"
	"log/slog"

	"salesbook/internal/amqp"
	"salesbook/internal/core"
	"salesbook/internal/sheets/google"
)

// Mirror receives one row per recorded sale. AppendSale reports whether a
// row was actually written.
type Mirror interface {
	AppendSale(ctx context.Context, row google.SaleRow) (bool, error)
}

var _ Mirror = (*google.Client)(nil)

// MirrorWorker copies sale events into the mirror spreadsheet.
type MirrorWorker struct {
	mirror Mirror
}

func NewMirrorWorker(mirror Mirror) *MirrorWorker {
	return &MirrorWorker{mirror: mirror}
}

// HandleSaleRecorded processes a single sale event from AMQP. A returned
// error makes the consumer requeue the delivery.
func (w *MirrorWorker) HandleSaleRecorded(ctx context.Context, msg *amqp.SaleRecordedMessage) error {
	slog.InfoContext(ctx, "Processing sale event",
		"message_id", msg.ID,
		"customer_id", msg.CustomerID,
		"product", msg.ProductName)

	row := RowFromMessage(msg)
	wrote, err := w.mirror.AppendSale(ctx, row)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to mirror sale",
			"message_id", msg.ID,
			"error", err)
		return fmt.Errorf("mirror sale %s: %w", msg.ID, err)
	}

	if wrote {
		slog.InfoContext(ctx, "Successfully mirrored sale",
			"message_id", msg.ID,
			"amount_cents", row.Amount.Cents)
	}
	return nil
}

// RowFromMessage maps an event to its spreadsheet row.
func RowFromMessage(msg *amqp.SaleRecordedMessage) google.SaleRow {
	sale := msg.Sale()
	return google.SaleRow{
		MessageID:    msg.ID,
		Date:         sale.Date,
		CustomerID:   msg.CustomerID,
		CustomerName: msg.CustomerName,
		Product:      msg.ProductName,
		Quantity:     msg.Quantity,
		UnitPrice:    core.Money{Cents: msg.UnitPriceCents},
		Amount:       msg.Amount(),
	}
}
