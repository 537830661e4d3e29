package notify

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"
	"sync"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"gardentracker/internal/dateutil"
)

// GmailNotifier emails every configured gardener when the garden is watered.
// One message per recipient; a recipient that fails never blocks the rest.
type GmailNotifier struct {
	svc        *gmail.Service
	recipients []string
	senderName string

	mu         sync.Mutex
	senderAddr string
}

// NewGmailNotifier builds a notifier for the given recipient list. senderName
// is the display name shown in the From header; the sender address itself is
// resolved from the account on first use.
func NewGmailNotifier(ctx context.Context, recipients []string, senderName string, opts ...option.ClientOption) (*GmailNotifier, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail client: %w", err)
	}
	return &GmailNotifier{svc: svc, recipients: dedupe(recipients), senderName: senderName}, nil
}

var _ Notifier = (*GmailNotifier)(nil)

// Notify sends one email per recipient address containing an '@'. The human
// date in subject and body is rebuilt from the record's own calendar
// components, never from a reinterpreted timestamp.
func (n *GmailNotifier) Notify(ctx context.Context, date, gardener, notes string) error {
	formatted := date
	if d, err := dateutil.ParseDate(date); err == nil {
		formatted = d.Human()
	}

	subject := "🌱 Garden Watered - " + formatted
	body := notificationBody(formatted, gardener, notes, n.senderName)

	from, err := n.sender(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve sender address: %w", err)
	}

	sent, failed := 0, 0
	for _, to := range n.recipients {
		if !strings.Contains(to, "@") {
			continue
		}
		raw := rawMessage(from, n.senderName, to, subject, body)
		if _, err := n.svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do(); err != nil {
			log.Printf("gmail: failed to send to %s: %v", to, err)
			failed++
			continue
		}
		sent++
	}
	log.Printf("gmail: sent %d notifications, %d failed", sent, failed)

	if sent == 0 && failed > 0 {
		return fmt.Errorf("all %d notification emails failed", failed)
	}
	return nil
}

// sender resolves and caches the account address: the first send-as alias,
// else the profile's own address.
func (n *GmailNotifier) sender(ctx context.Context) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.senderAddr != "" {
		return n.senderAddr, nil
	}

	aliases, err := n.svc.Users.Settings.SendAs.List("me").Context(ctx).Do()
	if err == nil && len(aliases.SendAs) > 0 {
		n.senderAddr = aliases.SendAs[0].SendAsEmail
		return n.senderAddr, nil
	}
	if err != nil {
		log.Printf("gmail: could not list send-as aliases, falling back to profile address: %v", err)
	}

	profile, err := n.svc.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	n.senderAddr = profile.EmailAddress
	return n.senderAddr, nil
}

// dedupe keeps the first occurrence of each address so a copy-pasted
// recipient list cannot double-mail anyone.
func dedupe(addrs []string) []string {
	seen := make(map[string]struct{}, len(addrs))
	var out []string
	for _, a := range addrs {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}

func notificationBody(formattedDate, gardener, notes, senderName string) string {
	var b strings.Builder
	b.WriteString("<div>\n")
	b.WriteString("Great news! The garden was watered today.<br><br>\n")
	fmt.Fprintf(&b, "📅 Date: %s<br>\n", formattedDate)
	fmt.Fprintf(&b, "👨‍🌾 Gardener: %s<br>\n", gardener)
	if notes != "" {
		fmt.Fprintf(&b, "📝 Notes: %s<br>\n", notes)
	}
	b.WriteString("<br>\nThank you for taking care of our garden! 🌿<br><br>\n")
	fmt.Fprintf(&b, `<span style="font-size:small;color:#888;">This is an automated notification from the Garden Watering Tracker on behalf of %s</span>`, senderName)
	b.WriteString("\n</div>")
	return b.String()
}

// rawMessage builds the web-safe base64 RFC 2822 message the Gmail API
// expects. The subject is B-encoded so the emoji survives, with base64
// padding stripped the way the frontend's mail clients expect.
func rawMessage(from, fromName, to, subject, htmlBody string) string {
	encodedSubject := strings.TrimRight(base64.StdEncoding.EncodeToString([]byte(subject)), "=")
	msg := strings.Join([]string{
		"To: " + to,
		fmt.Sprintf("From: %s <%s>", fromName, from),
		"Subject: =?UTF-8?B?" + encodedSubject + "?=",
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
		"",
		htmlBody,
	}, "\r\n")
	return base64.RawURLEncoding.EncodeToString([]byte(msg))
}
