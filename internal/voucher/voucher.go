package voucher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/khonloi/gash-storefront/internal/domain"
)

type State string

const (
	StateNone     State = "none"
	StateApplying State = "applying"
	StateApplied  State = "applied"
)

var (
	ErrEmptyCode     = errors.New("voucher code is empty")
	ErrBelowMinOrder = errors.New("order total below voucher minimum")
	ErrApplying      = errors.New("a voucher application is already in progress")
)

// API validates a code against the backend, which owns voucher definitions.
type API interface {
	Validate(ctx context.Context, code string) (domain.Voucher, error)
}

// Applier is the checkout-session voucher state machine:
// none → applying → applied on success, back to none on rejection. Only one
// voucher is ever active; applying over an active one replaces it
// atomically. Nothing here is persisted beyond the session.
type Applier struct {
	mu      sync.Mutex
	api     API
	state   State
	voucher *domain.Voucher
}

func NewApplier(api API) *Applier {
	return &Applier{api: api, state: StateNone}
}

// Apply validates code and, on success, makes it the active voucher and
// returns the discount for total. Any rejection surfaces an error and leaves
// the previously active voucher (if any) in place.
func (a *Applier) Apply(ctx context.Context, code string, total decimal.Decimal) (decimal.Decimal, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return decimal.Zero, ErrEmptyCode
	}

	a.mu.Lock()
	if a.state == StateApplying {
		a.mu.Unlock()
		return decimal.Zero, ErrApplying
	}
	prevState, prevVoucher := a.state, a.voucher
	a.state = StateApplying
	a.mu.Unlock()

	reject := func(err error) (decimal.Decimal, error) {
		a.mu.Lock()
		a.state, a.voucher = prevState, prevVoucher
		a.mu.Unlock()
		return decimal.Zero, err
	}

	v, err := a.api.Validate(ctx, code)
	if err != nil {
		return reject(fmt.Errorf("validate voucher: %w", err))
	}

	// Defensive client-side check; the backend enforces this too.
	if !v.Eligible(total) {
		return reject(ErrBelowMinOrder)
	}

	a.mu.Lock()
	a.state = StateApplied
	a.voucher = &v
	a.mu.Unlock()
	return v.DiscountFor(total), nil
}

// Remove clears the active voucher. Allowed at any time before submission.
func (a *Applier) Remove() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = StateNone
	a.voucher = nil
}

func (a *Applier) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Active returns the applied voucher, if any.
func (a *Applier) Active() (domain.Voucher, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateApplied || a.voucher == nil {
		return domain.Voucher{}, false
	}
	return *a.voucher, true
}

// Discount computes the active voucher's discount for total, zero when none
// is applied or the total no longer meets the minimum.
func (a *Applier) Discount(total decimal.Decimal) decimal.Decimal {
	v, ok := a.Active()
	if !ok || !v.Eligible(total) {
		return decimal.Zero
	}
	return v.DiscountFor(total)
}
