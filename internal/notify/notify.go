package notify

import (
	"os/exec"
	"strconv"
	"time"
)

// Urgency is the notify-send urgency level
type Urgency int

const (
	UrgencyNormal Urgency = iota
	UrgencyLow
	UrgencyCritical
)

func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "low"
	case UrgencyCritical:
		return "critical"
	default:
		return "normal"
	}
}

// Notification is one desktop popup
type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
	Timeout time.Duration
	Icon    string
}

const appName = "homeroom"

// Sender delivers a notification
type Sender interface {
	Send(notification Notification) error
}

// SenderFunc adapts a function to a Sender
type SenderFunc func(notification Notification) error

// Send calls f
func (f SenderFunc) Send(notification Notification) error {
	return f(notification)
}

// Notifier handles sending desktop notifications
type Notifier struct {
	enabled bool
	command string
}

// NewNotifier creates a new notifier
func NewNotifier() *Notifier {
	return &Notifier{
		enabled: true,
		command: "notify-send",
	}
}

// SetEnabled enables or disables notifications
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}

// Args builds the notify-send argument list
func (n *Notifier) Args(notification Notification) []string {
	args := []string{"-a", appName, "-u", notification.Urgency.String()}
	if notification.Timeout > 0 {
		args = append(args, "-t", strconv.FormatInt(notification.Timeout.Milliseconds(), 10))
	}
	if notification.Icon != "" {
		args = append(args, "-i", notification.Icon)
	}
	args = append(args, notification.Title)
	if notification.Body != "" {
		args = append(args, notification.Body)
	}
	return args
}

// Send sends a desktop notification using notify-send
func (n *Notifier) Send(notification Notification) error {
	if !n.enabled {
		return nil
	}
	return exec.Command(n.command, n.Args(notification)...).Run()
}

// DueNotification builds the reminder shown when a task comes due.
// Pinned tasks are sent as critical so they stay on screen.
func DueNotification(title, subject string, kind string, pinned bool) Notification {
	body := "Due now"
	if kind == "homework" {
		body = "Homework due now"
	}
	if subject != "" {
		body += " · " + subject
	}

	urgency := UrgencyNormal
	icon := "appointment-soon-symbolic"
	if pinned {
		urgency = UrgencyCritical
		icon = "emblem-important-symbolic"
	}

	return Notification{
		Title:   title,
		Body:    body,
		Urgency: urgency,
		Timeout: 15 * time.Second,
		Icon:    icon,
	}
}
