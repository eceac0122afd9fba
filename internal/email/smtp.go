package email

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
}

// NewSMTPSender creates a sender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) SendLeadNotification(ctx context.Context, to string, n Notification) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(LeadNotificationSubject(n))
	msg.SetBodyString(gomail.TypeTextPlain, leadNotificationBody(n))

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func leadNotificationBody(n Notification) string {
	optIn := "No"
	if n.OptIn {
		optIn = "Yes"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "New lead received.\n\n")
	fmt.Fprintf(&b, "Name: %s %s\n", n.FirstName, n.LastName)
	fmt.Fprintf(&b, "Email: %s\n", n.Email)
	fmt.Fprintf(&b, "Phone: %s\n", n.Phone)
	fmt.Fprintf(&b, "Address: %s, %s\n", n.City, n.ZipCode)
	fmt.Fprintf(&b, "Age: %d\n", n.Age)
	fmt.Fprintf(&b, "Gender: %s\n", n.Gender)
	fmt.Fprintf(&b, "Campaign: %s\n", n.Campaign)
	fmt.Fprintf(&b, "Score: %d\n", n.Score)
	fmt.Fprintf(&b, "Category: %s\n", n.Category)
	fmt.Fprintf(&b, "Marketing opt-in: %s\n", optIn)
	if n.ImageURL != "" {
		fmt.Fprintf(&b, "Photo: %s\n", n.ImageURL)
	}
	return b.String()
}
