// Package recovery decides how a failed network call is surfaced to the user
// and drives the resulting modal prompt.
//
// Classify maps any error to exactly one Intent. A Controller renders the
// Intent on a Host, collects field input if the Intent asks for it, and
// reports the user's choice exactly once.
package recovery

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/alnah/go-jenkins/internal/apierr"
)

// Field keys of the credentials prompt.
const (
	FieldUsername = "username"
	FieldPassword = "password"
)

// Literal prompt texts. These are shown to the user verbatim.
const (
	titleError          = "Error"
	messageCredentials  = "Please provide username and password"
	messageStatusFormat = "An error occured %d"
	messageGeneric      = "An error occurred"
)

// Intent is the decided UI response to a failure.
// It is one of RequireCredentials, Inform or InformWithDetail.
type Intent interface {
	intent()
}

// Field is a text input requested from the user.
type Field struct {
	Key         string
	Placeholder string
	// Secret fields are not echoed.
	Secret bool
}

// RequireCredentials asks the user for the given fields.
type RequireCredentials struct {
	Title   string
	Message string
	Fields  []Field
}

// Inform tells the user something went wrong; no input is requested.
type Inform struct {
	Title   string
	Message string
}

// InformWithDetail is an Inform whose message is a transport-level detail.
type InformWithDetail struct {
	Title   string
	Message string
}

func (RequireCredentials) intent() {}
func (Inform) intent()             {}
func (InformWithDetail) intent()   {}

// Classify maps a failure to its recovery intent. First match wins:
//  1. HTTP 403: ask for username and password.
//  2. Any other HTTP status: inform with the code.
//  3. Transport failure: inform with the underlying description.
//  4. Anything else, nil included: generic inform.
func Classify(err error) Intent {
	var statusErr *apierr.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.Code == http.StatusForbidden {
			return RequireCredentials{
				Title:   titleError,
				Message: messageCredentials,
				Fields: []Field{
					{Key: FieldUsername, Placeholder: "Username"},
					{Key: FieldPassword, Placeholder: "Password", Secret: true},
				},
			}
		}
		return Inform{
			Title:   titleError,
			Message: fmt.Sprintf(messageStatusFormat, statusErr.Code),
		}
	}

	var transportErr *apierr.TransportError
	if errors.As(err, &transportErr) {
		return InformWithDetail{
			Title:   titleError,
			Message: describe(transportErr.Err),
		}
	}

	return Inform{Title: titleError, Message: messageGeneric}
}

// describe returns the human description of a transport cause.
func describe(err error) string {
	if err == nil {
		return messageGeneric
	}
	return err.Error()
}

// Text returns the title and message of an intent.
func Text(in Intent) (title, message string) {
	switch in := in.(type) {
	case RequireCredentials:
		return in.Title, in.Message
	case Inform:
		return in.Title, in.Message
	case InformWithDetail:
		return in.Title, in.Message
	}
	return titleError, messageGeneric
}
