package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/movie-ticket-booking/internal/booking"
)

// PaymentMethod is how a customer pays at checkout.
type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "Credit Card"
	PaymentDebitCard  PaymentMethod = "Debit Card"
	PaymentUPI        PaymentMethod = "UPI"
)

// ErrInvalidPayment is returned when payment details fail validation.
var ErrInvalidPayment = errors.New("invalid payment details")

// PaymentDetails is what the customer submits at checkout. Card fields
// apply to card methods, UPIID to UPI.
type PaymentDetails struct {
	Method     PaymentMethod `json:"method" validate:"required,oneof='Credit Card' 'Debit Card' UPI"`
	CardNumber string        `json:"card_number,omitempty"`
	CardHolder string        `json:"card_holder,omitempty"`
	Expiry     string        `json:"expiry,omitempty"` // MM/YY
	CVV        string        `json:"cvv,omitempty"`
	UPIID      string        `json:"upi_id,omitempty"`
}

// PaymentReceipt confirms a charge.
type PaymentReceipt struct {
	Reference string
	Method    PaymentMethod
	Amount    booking.Money
}

// PaymentGateway charges and refunds customers.
type PaymentGateway interface {
	Charge(ctx context.Context, d PaymentDetails, amount booking.Money) (PaymentReceipt, error)
	Refund(ctx context.Context, r PaymentReceipt) error
}

// SimulatedGateway accepts any well-formed payment after Delay.
type SimulatedGateway struct {
	Delay time.Duration
	Now   func() time.Time
}

// NewSimulatedGateway returns a gateway that waits delay before answering.
func NewSimulatedGateway(delay time.Duration) *SimulatedGateway {
	return &SimulatedGateway{Delay: delay, Now: time.Now}
}

// Charge validates d and returns a receipt with a fresh reference.
func (g *SimulatedGateway) Charge(ctx context.Context, d PaymentDetails, amount booking.Money) (PaymentReceipt, error) {
	if err := d.Validate(g.now()); err != nil {
		return PaymentReceipt{}, err
	}
	if amount <= 0 {
		return PaymentReceipt{}, fmt.Errorf("%w: amount must be positive", ErrInvalidPayment)
	}
	if err := g.wait(ctx); err != nil {
		return PaymentReceipt{}, err
	}
	return PaymentReceipt{Reference: "PAY-" + strings.ToUpper(uuid.NewString()[:8]), Method: d.Method, Amount: amount}, nil
}

// Refund always succeeds.
func (g *SimulatedGateway) Refund(ctx context.Context, _ PaymentReceipt) error {
	return g.wait(ctx)
}

func (g *SimulatedGateway) wait(ctx context.Context) error {
	if g.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(g.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (g *SimulatedGateway) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

var (
	upiPattern    = regexp.MustCompile(`^[a-zA-Z0-9._-]{2,256}@[a-zA-Z][a-zA-Z0-9]{1,63}$`)
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/(\d{2})$`)
	cvvPattern    = regexp.MustCompile(`^\d{3}$`)
)

// Validate checks the shape of the details for their method. Cards
// expiring in the month of now are still accepted.
func (d PaymentDetails) Validate(now time.Time) error {
	switch d.Method {
	case PaymentCreditCard, PaymentDebitCard:
		return d.validateCard(now)
	case PaymentUPI:
		if !upiPattern.MatchString(strings.TrimSpace(d.UPIID)) {
			return fmt.Errorf("%w: UPI id must look like name@bank", ErrInvalidPayment)
		}
		return nil
	default:
		return fmt.Errorf("%w: unsupported method %q", ErrInvalidPayment, d.Method)
	}
}

func (d PaymentDetails) validateCard(now time.Time) error {
	digits := strings.NewReplacer(" ", "", "-", "").Replace(d.CardNumber)
	if len(digits) < 12 || len(digits) > 19 {
		return fmt.Errorf("%w: card number must have 12 to 19 digits", ErrInvalidPayment)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: card number must be numeric", ErrInvalidPayment)
		}
	}
	if strings.TrimSpace(d.CardHolder) == "" {
		return fmt.Errorf("%w: card holder is required", ErrInvalidPayment)
	}
	m := expiryPattern.FindStringSubmatch(strings.TrimSpace(d.Expiry))
	if m == nil {
		return fmt.Errorf("%w: expiry must be MM/YY", ErrInvalidPayment)
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	// first day of the month after expiry
	expires := time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, now.Location())
	if !now.Before(expires) {
		return fmt.Errorf("%w: card has expired", ErrInvalidPayment)
	}
	if !cvvPattern.MatchString(d.CVV) {
		return fmt.Errorf("%w: CVV must be 3 digits", ErrInvalidPayment)
	}
	return nil
}
