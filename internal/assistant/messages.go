package assistant

import "fmt"

// User-facing messages for terminal failure paths. Raw technical errors
// never reach the user; each kind maps to one of these templates.

// MessageUnderspecified asks for a usable filter. Conversation context
// stays unchanged so a later follow-up can still anchor on the previous
// valid intent.
func MessageUnderspecified() string {
	return `I need a bit more to go on. Ask about a time period, a category, or a merchant - for example: "How much did I spend in September?"`
}

// MessageUnknownClient reports a client id with no data.
func MessageUnknownClient(clientID int) string {
	return fmt.Sprintf("Client %d not found or has no transactions.", clientID)
}

// MessageStoreTrouble covers transaction store failures.
func MessageStoreTrouble() string {
	return "I'm having trouble reaching your transaction data right now. Please try again in a moment."
}
