package payments

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Fee schedules and simulated success rates for the built-in processors.
const (
	creditCardFeeBps   = 300 // 3%
	payPalFeeBps       = 250 // 2.5%
	cryptoFeeBps       = 500 // 5%
	bankTransferFeeBps = 0

	creditCardSuccessRate = 0.90
	payPalSuccessRate     = 0.95
	cryptoSuccessRate     = 0.95
)

// SimulatedProcessor charges nothing real: it applies a basis-point fee and
// succeeds with a fixed probability. The roll source is injectable so tests
// are deterministic.
type SimulatedProcessor struct {
	name        string
	feeBps      int64
	successRate float64
	roll        func() float64
}

// SimulatedOption customises a simulated processor.
type SimulatedOption func(*SimulatedProcessor)

// WithRoll overrides the random source used to decide charge outcomes.
func WithRoll(roll func() float64) SimulatedOption {
	return func(p *SimulatedProcessor) {
		if roll != nil {
			p.roll = roll
		}
	}
}

// NewCreditCardProcessor simulates a card network: 3% fee, 90% success.
func NewCreditCardProcessor(opts ...SimulatedOption) *SimulatedProcessor {
	return newSimulated("credit_card", creditCardFeeBps, creditCardSuccessRate, opts...)
}

// NewPayPalProcessor simulates PayPal: 2.5% fee, 95% success.
func NewPayPalProcessor(opts ...SimulatedOption) *SimulatedProcessor {
	return newSimulated("paypal", payPalFeeBps, payPalSuccessRate, opts...)
}

// NewCryptoProcessor simulates a crypto gateway: 5% fee, 95% success.
func NewCryptoProcessor(opts ...SimulatedOption) *SimulatedProcessor {
	return newSimulated("crypto", cryptoFeeBps, cryptoSuccessRate, opts...)
}

// NewBankTransferProcessor simulates a bank transfer: no fee, always succeeds.
func NewBankTransferProcessor(opts ...SimulatedOption) *SimulatedProcessor {
	return newSimulated("bank_transfer", bankTransferFeeBps, 1.0, opts...)
}

func newSimulated(name string, feeBps int64, successRate float64, opts ...SimulatedOption) *SimulatedProcessor {
	p := &SimulatedProcessor{
		name:        name,
		feeBps:      feeBps,
		successRate: successRate,
		roll:        defaultRoll(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name identifies the processor in logs.
func (p *SimulatedProcessor) Name() string { return p.name }

// CalculateFee implements Processor.
func (p *SimulatedProcessor) CalculateFee(amount int64) int64 {
	return amount * p.feeBps / 10_000
}

// Process implements Processor.
func (p *SimulatedProcessor) Process(_ context.Context, _ int64) bool {
	if p.successRate >= 1.0 {
		return true
	}
	return p.roll() < p.successRate
}

func defaultRoll() func() float64 {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var mu sync.Mutex
	return func() float64 {
		mu.Lock()
		defer mu.Unlock()
		return rng.Float64()
	}
}
