package worker

import (
	"context"
	"errors"
	"testing"

	"salesbook/internal/amqp"
	"salesbook/internal/core"
	"salesbook/internal/sheets/google"
)

type fakeMirror struct {
	rows []google.SaleRow
	seen map[string]bool
	err  error
}

func (f *fakeMirror) AppendSale(_ context.Context, row google.SaleRow) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[row.MessageID] {
		return false, nil
	}
	f.seen[row.MessageID] = true
	f.rows = append(f.rows, row)
	return true, nil
}

func sampleMessage() *amqp.SaleRecordedMessage {
	sale := core.Sale{
		CustomerID:  7,
		ProductID:   2,
		ProductName: "Widget",
		Quantity:    3,
		Date:        core.NewDate(2024, 3, 15),
	}
	return amqp.NewSaleRecordedMessage(sale, "Ana", core.Money{Cents: 250})
}

func TestHandleSaleRecorded(t *testing.T) {
	mirror := &fakeMirror{}
	w := NewMirrorWorker(mirror)
	msg := sampleMessage()

	if err := w.HandleSaleRecorded(context.Background(), msg); err != nil {
		t.Fatalf("HandleSaleRecorded() error = %v", err)
	}
	if len(mirror.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(mirror.rows))
	}
	row := mirror.rows[0]
	if row.MessageID != msg.ID || row.CustomerName != "Ana" || row.Product != "Widget" {
		t.Errorf("unexpected row %+v", row)
	}
	if row.Amount.Cents != 750 {
		t.Errorf("amount = %d, want 750", row.Amount.Cents)
	}
	if row.Date.String() != "2024-03-15" {
		t.Errorf("date = %s", row.Date)
	}
}

func TestHandleSaleRecorded_Redelivery(t *testing.T) {
	mirror := &fakeMirror{}
	w := NewMirrorWorker(mirror)
	msg := sampleMessage()

	for i := 0; i < 2; i++ {
		if err := w.HandleSaleRecorded(context.Background(), msg); err != nil {
			t.Fatal(err)
		}
	}
	if len(mirror.rows) != 1 {
		t.Errorf("redelivered event mirrored %d times", len(mirror.rows))
	}
}

func TestHandleSaleRecorded_MirrorError(t *testing.T) {
	boom := errors.New("quota exceeded")
	w := NewMirrorWorker(&fakeMirror{err: boom})

	err := w.HandleSaleRecorded(context.Background(), sampleMessage())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped mirror error, got %v", err)
	}
}
