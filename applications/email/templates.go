package email

import (
	"fmt"
	"html"
	"strings"
)

// ConfirmationMessage builds the welcome mail for a new member. cardPath may be
// empty when the card could not be generated.
func ConfirmationMessage(to, name, registrationID string, interests []string, cardPath string) Message {
	escaped := make([]string, 0, len(interests))
	for _, i := range interests {
		escaped = append(escaped, html.EscapeString(i))
	}

	body := fmt.Sprintf(`
		<h2>🎉 Welcome to C3, %s!</h2>
		<p>Your registration was received.</p>
		<p><b>Registration ID:</b> %s</p>
		<p><b>Interests:</b> %s</p>
	`, html.EscapeString(name), html.EscapeString(registrationID), strings.Join(escaped, ", "))

	text := fmt.Sprintf("Welcome to C3, %s! Your registration ID is %s.", name, registrationID)

	msg := Message{
		To:      to,
		Subject: fmt.Sprintf("Welcome to C3 [%s]", registrationID),
		Text:    text,
	}

	if cardPath != "" {
		body += "<p>Your membership card is attached to this email.</p>"
		msg.Attachments = []Attachment{{
			Name: fmt.Sprintf("C3-Membership-Card-%s.pdf", registrationID),
			Path: cardPath,
		}}
	}
	msg.HTML = body
	return msg
}
