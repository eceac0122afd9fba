// Package email delivers internal lead notifications over SMTP.
package email

import "context"

// Notification carries everything the lead alert email needs.
type Notification struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	City      string
	ZipCode   string
	Age       int
	Gender    string
	Campaign  string
	Score     int
	Category  string
	ImageURL  string
	OptIn     bool
}

// Sender delivers lead notification emails.
type Sender interface {
	SendLeadNotification(ctx context.Context, to string, n Notification) error
}

// NoopSender is used when SMTP is not configured. Sends succeed silently.
type NoopSender struct{}

func (NoopSender) SendLeadNotification(context.Context, string, Notification) error { return nil }
