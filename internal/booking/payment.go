package booking

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/cinema-storefront/internal/model"
)

var (
	// ErrPaymentDeclined is returned when the gateway refuses a charge.
	ErrPaymentDeclined = errors.New("payment declined")
	// ErrPaymentTimeout is returned when the gateway does not answer
	// within the processor's timeout.
	ErrPaymentTimeout = errors.New("payment timed out")
	// ErrPaymentCancelled is returned when the caller gives up before the
	// gateway answers.
	ErrPaymentCancelled = errors.New("payment cancelled")
)

// CardDetails are the fields of the card payment form.
type CardDetails struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"` // MM/YY
	CVV    string `json:"cvv"`
	Name   string `json:"name"`
}

// PaymentDetails is the submitted payment form.  Only the fields of the
// chosen method are inspected.
type PaymentDetails struct {
	Method model.PaymentMethod `json:"method"`
	Card   CardDetails         `json:"card"`
	UPIID  string              `json:"upi_id"`
	Wallet string              `json:"wallet"`
}

// FieldErrors maps form fields to validation messages.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "invalid payment details: " + strings.Join(parts, "; ")
}

// Wallets accepted by the wallet method.
var Wallets = []string{"paytm", "amazonpay", "mobikwik"}

var upiPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{2,256}@[a-zA-Z]{2,64}$`)

// Validate checks the fields of the chosen method.  now is used to reject
// expired cards.  It returns nil when the form may be submitted.
func (p PaymentDetails) Validate(now time.Time) error {
	fe := FieldErrors{}
	switch p.Method {
	case model.PaymentCard:
		validateCard(p.Card, now, fe)
	case model.PaymentUPI:
		if !upiPattern.MatchString(strings.TrimSpace(p.UPIID)) {
			fe["upi_id"] = "must look like name@bank"
		}
	case model.PaymentWallet:
		w := strings.ToLower(strings.TrimSpace(p.Wallet))
		known := false
		for _, k := range Wallets {
			if w == k {
				known = true
				break
			}
		}
		if !known {
			fe["wallet"] = "must be one of " + strings.Join(Wallets, ", ")
		}
	default:
		fe["method"] = "must be card, upi or wallet"
	}
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func validateCard(c CardDetails, now time.Time, fe FieldErrors) {
	digits := strings.NewReplacer(" ", "", "-", "").Replace(c.Number)
	if len(digits) < 13 || len(digits) > 19 || !allDigits(digits) || !luhn(digits) {
		fe["card.number"] = "invalid card number"
	}
	if !expiryValid(c.Expiry, now) {
		fe["card.expiry"] = "must be a future MM/YY date"
	}
	if cvv := strings.TrimSpace(c.CVV); len(cvv) < 3 || len(cvv) > 4 || !allDigits(cvv) {
		fe["card.cvv"] = "must be 3 or 4 digits"
	}
	if strings.TrimSpace(c.Name) == "" {
		fe["card.name"] = "required"
	}
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func luhn(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// expiryValid accepts MM/YY when the card is valid through the end of
// that month.
func expiryValid(s string, now time.Time) bool {
	mm, yy, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || len(mm) != 2 || len(yy) != 2 {
		return false
	}
	m, err1 := strconv.Atoi(mm)
	y, err2 := strconv.Atoi(yy)
	if err1 != nil || err2 != nil || m < 1 || m > 12 {
		return false
	}
	// first instant after the expiry month
	end := time.Date(2000+y, time.Month(m)+1, 1, 0, 0, 0, 0, now.Location())
	return now.Before(end)
}

// Charge is the amount requested from a gateway.
type Charge struct {
	DraftID string
	Amount  int
	Method  model.PaymentMethod
}

// Receipt is a successful gateway answer.
type Receipt struct {
	Ref       string
	ChargedAt time.Time
}

// Gateway charges a payment.  Implementations must honour ctx.
type Gateway interface {
	Charge(ctx context.Context, ch Charge) (Receipt, error)
}

// MockGateway simulates network latency and then approves the charge.
// Decline, when set, lets tests and demos force a refusal.
type MockGateway struct {
	Delay   time.Duration
	Decline func(Charge) bool
}

func (g *MockGateway) Charge(ctx context.Context, ch Charge) (Receipt, error) {
	if g.Delay > 0 {
		t := time.NewTimer(g.Delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return Receipt{}, ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	if g.Decline != nil && g.Decline(ch) {
		return Receipt{}, ErrPaymentDeclined
	}
	now := time.Now().UTC()
	return Receipt{Ref: fmt.Sprintf("PAY-%d", now.UnixNano()), ChargedAt: now}, nil
}

// Result is the outcome of one payment attempt.
type Result struct {
	Receipt Receipt
	Err     error
}

// OK reports whether the attempt succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Processor runs a charge as a cancellable task with a timeout.
type Processor struct {
	Gateway Gateway
	Timeout time.Duration
}

// Process charges ch and folds every failure into the result: a deadline
// becomes ErrPaymentTimeout, a cancelled caller ErrPaymentCancelled.
func (p *Processor) Process(ctx context.Context, ch Charge) Result {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	rcpt, err := p.Gateway.Charge(ctx, ch)
	switch {
	case err == nil:
		return Result{Receipt: rcpt}
	case errors.Is(err, context.DeadlineExceeded):
		return Result{Err: ErrPaymentTimeout}
	case errors.Is(err, context.Canceled):
		return Result{Err: ErrPaymentCancelled}
	}
	return Result{Err: err}
}
