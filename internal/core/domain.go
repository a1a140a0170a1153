package core

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the on-disk and form representation of a calendar date.
const DateLayout = "2006-01-02"

// MonthLayout is the year-month label used by monthly aggregations.
const MonthLayout = "2006-01"

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Customer struct {
		ID    int64
		Name  string
		Phone string
	}

	Product struct {
		ID    int64
		Name  string
		Price Money
	}

	// Sale is append-only. ProductID is the foreign key; ProductName is kept
	// so that sales referencing a deleted product can still be matched by name.
	Sale struct {
		CustomerID  int64
		ProductID   int64
		ProductName string
		Quantity    int64
		Date        Date
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidPrice    = errors.New("invalid price")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrEmptyName       = errors.New("empty name")
	ErrNameTooLong     = errors.New("name too long (max 200 characters)")
	ErrEmptyPhone      = errors.New("empty phone")
	ErrEmptyProduct    = errors.New("empty product")
	ErrInvalidCustomer = errors.New("invalid customer id")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// Today returns the current calendar day.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD string. A timestamp suffix
// ("2024-01-15 00:00:00" or RFC 3339) is tolerated and truncated.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String returns the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MonthKey returns the YYYY-MM label of the date.
func (d Date) MonthKey() string {
	return d.Format(MonthLayout)
}

// IsEmpty returns true if the date is zero
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// ValidatePrice checks a price: zero is allowed, negative is not.
func (m Money) ValidatePrice() error {
	if m.Cents < 0 {
		return ErrInvalidPrice
	}
	return nil
}

func (c Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 200 {
		return ErrNameTooLong
	}
	if strings.TrimSpace(c.Phone) == "" {
		return ErrEmptyPhone
	}
	return nil
}

func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if len(p.Name) > 200 {
		return ErrNameTooLong
	}
	return p.Price.ValidatePrice()
}

func (s Sale) Validate() error {
	if s.CustomerID <= 0 {
		return ErrInvalidCustomer
	}
	if strings.TrimSpace(s.ProductName) == "" {
		return ErrEmptyProduct
	}
	if s.Quantity < 1 {
		return ErrInvalidQuantity
	}
	return s.Date.Validate()
}
