package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"salesbook/internal/core"
)

// SaleRecordedMessage announces a sale that was appended to the record store.
// It carries everything the mirror needs so the worker never reads the store.
type SaleRecordedMessage struct {
	ID             string    `json:"id"`
	CustomerID     int64     `json:"customer_id"`
	CustomerName   string    `json:"customer_name,omitempty"`
	ProductID      int64     `json:"product_id"`
	ProductName    string    `json:"product_name"`
	Quantity       int64     `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	Date           string    `json:"date"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewSaleRecordedMessage builds a message with a fresh id for the given sale.
func NewSaleRecordedMessage(s core.Sale, customerName string, unitPrice core.Money) *SaleRecordedMessage {
	return &SaleRecordedMessage{
		ID:             uuid.NewString(),
		CustomerID:     s.CustomerID,
		CustomerName:   customerName,
		ProductID:      s.ProductID,
		ProductName:    s.ProductName,
		Quantity:       s.Quantity,
		UnitPriceCents: unitPrice.Cents,
		Date:           s.Date.String(),
		Timestamp:      time.Now(),
	}
}

// Validate rejects messages the mirror cannot turn into a row.
func (m *SaleRecordedMessage) Validate() error {
	if _, err := uuid.Parse(m.ID); err != nil {
		return fmt.Errorf("invalid message id %q: %w", m.ID, err)
	}
	if m.CustomerID <= 0 {
		return core.ErrInvalidCustomer
	}
	if strings.TrimSpace(m.ProductName) == "" {
		return core.ErrEmptyProduct
	}
	if m.Quantity < 1 {
		return core.ErrInvalidQuantity
	}
	if d, err := core.ParseDate(m.Date); err != nil || d.IsEmpty() {
		return errors.New("invalid sale date")
	}
	return nil
}

// Sale converts the message back into a domain sale.
func (m *SaleRecordedMessage) Sale() core.Sale {
	d, _ := core.ParseDate(m.Date)
	return core.Sale{
		CustomerID:  m.CustomerID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Quantity:    m.Quantity,
		Date:        d,
	}
}

// Amount is quantity times unit price.
func (m *SaleRecordedMessage) Amount() core.Money {
	return core.Money{Cents: m.UnitPriceCents}.Times(m.Quantity)
}

// ToJSON converts the message to JSON bytes
func (m *SaleRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SaleRecordedMessageFromJSON decodes and validates a message.
func SaleRecordedMessageFromJSON(data []byte) (*SaleRecordedMessage, error) {
	var msg SaleRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
