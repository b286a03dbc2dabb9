package payments

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/northwind-commerce/api/internal/domain"
)

// ErrUnsupportedMethod is returned when the manager has no processor for a method.
var ErrUnsupportedMethod = errors.New("payments: unsupported payment method")

// Processor is the capability the order flow consumes: a fee schedule plus an
// opaque charge oracle. Process reports success only; the caller decides
// whether to retry the whole order.
type Processor interface {
	// CalculateFee returns the processing fee in minor units for the amount.
	CalculateFee(amount int64) int64
	// Process attempts to charge the amount and reports success.
	Process(ctx context.Context, amount int64) bool
}

// Manager routes payment method selectors to their processor.
type Manager struct {
	processors map[domain.PaymentMethod]Processor
}

// NewManager builds a manager over the given processor table. Every known
// payment method must be wired; a partial table is a construction error so an
// unmatched method can never silently no-op at charge time.
func NewManager(processors map[domain.PaymentMethod]Processor) (*Manager, error) {
	if len(processors) == 0 {
		return nil, errors.New("payments: at least one processor is required")
	}
	table := make(map[domain.PaymentMethod]Processor, len(processors))
	for method, processor := range processors {
		if processor == nil {
			return nil, fmt.Errorf("payments: nil processor for %s", method)
		}
		table[method] = processor
	}
	for _, method := range domain.KnownPaymentMethods() {
		if _, ok := table[method]; !ok {
			return nil, fmt.Errorf("payments: no processor wired for %s", method)
		}
	}
	return &Manager{processors: table}, nil
}

// NewDefaultManager wires the simulated processors for every known method.
func NewDefaultManager(opts ...SimulatedOption) (*Manager, error) {
	return NewManager(map[domain.PaymentMethod]Processor{
		domain.PaymentMethodCreditCard:   NewCreditCardProcessor(opts...),
		domain.PaymentMethodPayPal:       NewPayPalProcessor(opts...),
		domain.PaymentMethodCrypto:       NewCryptoProcessor(opts...),
		domain.PaymentMethodBankTransfer: NewBankTransferProcessor(),
	})
}

// ProcessorFor resolves the processor for a payment method.
func (m *Manager) ProcessorFor(method domain.PaymentMethod) (Processor, error) {
	processor, ok := m.processors[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}
	return processor, nil
}
