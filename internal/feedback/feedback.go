package feedback

import (
	"context"
	"fmt"
	"net/mail"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/ppiankov/veritas/internal/model"
)

// DefaultSubject is the subject line of feedback mail
const DefaultSubject = "Veritas AI Feedback"

// Validate checks the rating range and, when present, the email address
func Validate(f model.Feedback) error {
	if f.Rating < 1 || f.Rating > 5 {
		return &model.ValidationError{Field: "rating", Message: "a rating from 1 to 5 is required"}
	}
	if email := strings.TrimSpace(f.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return &model.ValidationError{Field: "email", Message: "invalid email address"}
		}
	}
	return nil
}

// Body renders the mail body
func Body(f model.Feedback) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Rating: %d/5\n", f.Rating)
	fmt.Fprintf(&sb, "Name: %s\n", orNotProvided(f.Name))
	fmt.Fprintf(&sb, "Email: %s\n", orNotProvided(f.Email))
	sb.WriteString("\nComments:\n")
	sb.WriteString(strings.TrimSpace(f.Comments))
	return strings.TrimSpace(sb.String())
}

// MailtoURL builds a mailto link carrying the feedback
func MailtoURL(recipient, subject string, f model.Feedback) (string, error) {
	if err := Validate(f); err != nil {
		return "", err
	}
	if subject == "" {
		subject = DefaultSubject
	}
	return fmt.Sprintf("mailto:%s?subject=%s&body=%s", recipient, escape(subject), escape(Body(f))), nil
}

// Open hands link to the platform's default handler
func Open(ctx context.Context, link string) error {
	name, args := openCommand(runtime.GOOS, link)
	if err := exec.CommandContext(ctx, name, args...).Start(); err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	return nil
}

func openCommand(goos, link string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{link}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", link}
	default:
		return "xdg-open", []string{link}
	}
}

func orNotProvided(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "Not provided"
	}
	return s
}

// escape percent-encodes like encodeURIComponent: spaces become %20, not +
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
