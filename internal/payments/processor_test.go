package payments

import (
	"context"
	"errors"
	"testing"

	domain "github.com/northwind-commerce/api/internal/domain"
)

func TestCalculateFeeSchedules(t *testing.T) {
	cases := []struct {
		name      string
		processor *SimulatedProcessor
		amount    int64
		want      int64
	}{
		{"credit card 3%", NewCreditCardProcessor(), 100_00, 3_00},
		{"paypal 2.5%", NewPayPalProcessor(), 100_00, 2_50},
		{"crypto 5%", NewCryptoProcessor(), 100_00, 5_00},
		{"bank transfer free", NewBankTransferProcessor(), 100_00, 0},
		{"fee truncates", NewCreditCardProcessor(), 99, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.processor.CalculateFee(tc.amount); got != tc.want {
				t.Fatalf("expected fee %d, got %d", tc.want, got)
			}
		})
	}
}

func TestProcessUsesInjectedRoll(t *testing.T) {
	ctx := context.Background()

	// Credit card succeeds below its 0.90 threshold and fails above it.
	approve := NewCreditCardProcessor(WithRoll(func() float64 { return 0.89 }))
	if !approve.Process(ctx, 100_00) {
		t.Fatal("expected charge to succeed on a low roll")
	}

	decline := NewCreditCardProcessor(WithRoll(func() float64 { return 0.90 }))
	if decline.Process(ctx, 100_00) {
		t.Fatal("expected charge to fail on a high roll")
	}
}

func TestBankTransferAlwaysSucceeds(t *testing.T) {
	processor := NewBankTransferProcessor(WithRoll(func() float64 { return 1.0 }))
	if !processor.Process(context.Background(), 100_00) {
		t.Fatal("expected bank transfer to succeed regardless of roll")
	}
}

func TestNewManagerRequiresEveryKnownMethod(t *testing.T) {
	_, err := NewManager(map[domain.PaymentMethod]Processor{
		domain.PaymentMethodCreditCard: NewCreditCardProcessor(),
	})
	if err == nil {
		t.Fatal("expected error for a partial processor table")
	}

	if _, err := NewManager(nil); err == nil {
		t.Fatal("expected error for an empty processor table")
	}
}

func TestProcessorForRouting(t *testing.T) {
	manager, err := NewDefaultManager()
	if err != nil {
		t.Fatalf("new default manager: %v", err)
	}

	for _, method := range domain.KnownPaymentMethods() {
		if _, err := manager.ProcessorFor(method); err != nil {
			t.Fatalf("expected processor for %s, got %v", method, err)
		}
	}

	if _, err := manager.ProcessorFor("gift_card"); !errors.Is(err, ErrUnsupportedMethod) {
		t.Fatalf("expected ErrUnsupportedMethod, got %v", err)
	}
}
