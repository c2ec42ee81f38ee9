package model

import "fmt"

// Outcome is what a memory command produced. The concrete types are
// NotHandled, Message, MemoryList and ConfirmationRequest.
type Outcome interface {
	outcome()
}

// NotHandled means the utterance is not a memory command
type NotHandled struct{}

// Message is a plain reply, e.g. a confirmation or a clarification request
type Message struct {
	Text    string
	Subtype Subtype
}

// MemoryList is a recall result in insertion order
type MemoryList struct {
	Title string
	Items []*MemoryItem
}

// ConfirmationRequest asks the user to confirm a deletion
type ConfirmationRequest struct {
	Pending *PendingDeletion
}

func (NotHandled) outcome()           {}
func (*Message) outcome()             {}
func (*MemoryList) outcome()          {}
func (*ConfirmationRequest) outcome() {}

// NewMessage formats a Message
func NewMessage(subtype Subtype, format string, args ...any) *Message {
	return &Message{Text: fmt.Sprintf(format, args...), Subtype: subtype}
}
