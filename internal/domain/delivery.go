package domain

import "time"

// DeliveryKind classifies the outcome of sending one message to one
// recipient.
type DeliveryKind int

const (
	// Delivered means the transport accepted the message.
	Delivered DeliveryKind = iota
	// PermanentlyBlocked means the recipient cannot be reached anymore
	// (bot blocked, chat deleted). No retry will ever succeed.
	PermanentlyBlocked
	// RateLimited means the transport asked the sending identity to back
	// off. The limit is global to the sender, not per-recipient.
	RateLimited
	// TransientError covers everything else (network hiccup, timeout).
	TransientError
)

// Delivery is the tagged result of one send attempt. RetryAfter is set
// only for RateLimited; Err holds the underlying transport error and is
// nil for Delivered.
type Delivery struct {
	Kind       DeliveryKind
	RetryAfter time.Duration
	Err        error
}
