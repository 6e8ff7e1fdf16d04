// Package pricing derives ticket subtotal, convenience fee and total from
// a set of seats.  A single Calculator is built at startup and shared by
// every component that displays a total, so the same selection is always
// priced the same way.
package pricing

import (
	"fmt"
	"strings"

	"github.com/iliyamo/cinema-storefront/internal/model"
)

// FeeRule computes the convenience fee for a subtotal over n seats.
type FeeRule interface {
	Fee(subtotal, seats int) int
	Name() string
}

// PercentFee charges Percent of the subtotal, rounded half-up to a whole
// currency unit.
type PercentFee struct {
	Percent int
}

func (p PercentFee) Fee(subtotal, _ int) int {
	if subtotal <= 0 || p.Percent <= 0 {
		return 0
	}
	// integer round-half-up of subtotal*percent/100
	return (subtotal*p.Percent + 50) / 100
}

func (p PercentFee) Name() string { return fmt.Sprintf("percent:%d", p.Percent) }

// FlatFee charges Amount once per order.  Empty selections pay nothing.
type FlatFee struct {
	Amount int
}

func (f FlatFee) Fee(_ int, seats int) int {
	if seats == 0 || f.Amount <= 0 {
		return 0
	}
	return f.Amount
}

func (f FlatFee) Name() string { return fmt.Sprintf("flat:%d", f.Amount) }

// DefaultRule is the canonical storefront fee: 10% of the subtotal.
var DefaultRule FeeRule = PercentFee{Percent: 10}

// RuleFromConfig builds a rule from its configured kind ("percent" or
// "flat") and parameters.
func RuleFromConfig(kind string, percent, flat int) (FeeRule, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "percent":
		if percent < 0 {
			return nil, fmt.Errorf("fee percent must be >= 0, got %d", percent)
		}
		return PercentFee{Percent: percent}, nil
	case "flat":
		if flat < 0 {
			return nil, fmt.Errorf("flat fee must be >= 0, got %d", flat)
		}
		return FlatFee{Amount: flat}, nil
	}
	return nil, fmt.Errorf("unknown fee rule %q", kind)
}

// Line is one priced seat of a quote.
type Line struct {
	SeatID   string             `json:"seat_id"`
	Category model.SeatCategory `json:"category"`
	Price    int                `json:"price"`
}

// Quote is the priced summary of a selection.
type Quote struct {
	Lines    []Line `json:"seats"`
	Subtotal int    `json:"subtotal"`
	Fee      int    `json:"convenience_fee"`
	Total    int    `json:"total"`
	FeeRule  string `json:"fee_rule"`
}

// SeatIDs returns the identifiers of the quoted seats in order.
func (q Quote) SeatIDs() []string {
	ids := make([]string, 0, len(q.Lines))
	for _, l := range q.Lines {
		ids = append(ids, l.SeatID)
	}
	return ids
}

// Calculator prices selections with one fee rule.
type Calculator struct {
	Rule FeeRule
}

// NewCalculator returns a Calculator using rule, or DefaultRule when rule
// is nil.
func NewCalculator(rule FeeRule) *Calculator {
	if rule == nil {
		rule = DefaultRule
	}
	return &Calculator{Rule: rule}
}

// Quote prices seats in the given order.  Each seat contributes its own
// unit price; the fee is applied once to the subtotal.
func (c *Calculator) Quote(seats []model.Seat) Quote {
	q := Quote{Lines: make([]Line, 0, len(seats)), FeeRule: c.Rule.Name()}
	for _, s := range seats {
		q.Lines = append(q.Lines, Line{SeatID: s.ID, Category: s.Category, Price: s.Price})
		q.Subtotal += s.Price
	}
	q.Fee = c.Rule.Fee(q.Subtotal, len(seats))
	q.Total = q.Subtotal + q.Fee
	return q
}

// QuoteIDs prices seat identifiers resolved through lookup.  Unknown
// identifiers are reported as an error rather than priced at zero.
func (c *Calculator) QuoteIDs(ids []string, lookup func(string) (model.Seat, bool)) (Quote, error) {
	seats := make([]model.Seat, 0, len(ids))
	for _, id := range ids {
		s, ok := lookup(id)
		if !ok {
			return Quote{}, fmt.Errorf("unknown seat %q", id)
		}
		seats = append(seats, s)
	}
	return c.Quote(seats), nil
}
