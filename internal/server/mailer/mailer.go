// Package mailer sends the transactional emails of the blog API.
package mailer

import (
	"context"
	"net/url"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// VerificationSubject is the subject line of the email-verification message.
const VerificationSubject = "Email Verification"

// VerificationLink builds the verify-email URL under publicURL.
func VerificationLink(publicURL, token string) string {
	return publicURL + "/api/auth/verify-email?token=" + url.QueryEscape(token)
}

// VerificationMessage is the email sent after registration.
func VerificationMessage(to, publicURL, token string) Message {
	return Message{
		To:      to,
		Subject: VerificationSubject,
		Body:    "Click this link to verify your email: " + VerificationLink(publicURL, token),
	}
}
