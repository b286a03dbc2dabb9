package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	domain "github.com/northwind-commerce/api/internal/domain"
)

// MessageSender abstracts the SMTP dialer so tests can capture outgoing mail.
type MessageSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailConfig configures the SMTP notifier.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Sender overrides the dialer, mainly for tests.
	Sender MessageSender
}

// EmailNotifier delivers order notifications over SMTP.
type EmailNotifier struct {
	sender MessageSender
	from   string
}

// NewEmailNotifier constructs an SMTP-backed notifier.
func NewEmailNotifier(cfg EmailConfig) (*EmailNotifier, error) {
	from := strings.TrimSpace(cfg.From)
	if from == "" {
		return nil, errors.New("email notifier: from address is required")
	}

	sender := cfg.Sender
	if sender == nil {
		if strings.TrimSpace(cfg.Host) == "" {
			return nil, errors.New("email notifier: smtp host is required")
		}
		sender = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}

	return &EmailNotifier{sender: sender, from: from}, nil
}

// OrderConfirmed implements Notifier.
func (n *EmailNotifier) OrderConfirmed(_ context.Context, email string, order domain.Order) error {
	subject := fmt.Sprintf("Order %s confirmed", order.ID)
	body := fmt.Sprintf(
		"Thanks for your order!\n\nOrder: %s\nItems: %d\nTotal: %s\nShipping to: %s\n",
		order.ID, len(order.Items), formatAmount(order.Totals.Total), order.ShippingAddress,
	)
	return n.send(email, subject, body)
}

// OrderShipped implements Notifier.
func (n *EmailNotifier) OrderShipped(_ context.Context, order domain.Order, trackingNumber string) error {
	subject := fmt.Sprintf("Order %s shipped", order.ID)
	body := fmt.Sprintf(
		"Your order is on its way.\n\nOrder: %s\nTracking number: %s\n",
		order.ID, trackingNumber,
	)
	return n.send(order.CustomerEmail, subject, body)
}

// OrderCancelled implements Notifier.
func (n *EmailNotifier) OrderCancelled(_ context.Context, order domain.Order) error {
	subject := fmt.Sprintf("Order %s cancelled", order.ID)
	body := fmt.Sprintf(
		"Your order has been cancelled.\n\nOrder: %s\nRefund amount: %s\n",
		order.ID, formatAmount(order.Totals.Total),
	)
	return n.send(order.CustomerEmail, subject, body)
}

func (n *EmailNotifier) send(to, subject, body string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return errors.New("email notifier: recipient is required")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("email notifier: send to %s: %w", to, err)
	}
	return nil
}

func formatAmount(minor int64) string {
	return fmt.Sprintf("$%d.%02d", minor/100, minor%100)
}
