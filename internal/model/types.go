package model

import (
	"fmt"
	"time"
)

// EventType names an event kind as it appears in logs.
type EventType string

const (
	EventSubmit  EventType = "submit"
	EventMessage EventType = "message"
	EventOpen    EventType = "open"
	EventError   EventType = "error"
	EventClose   EventType = "close"
)

// FieldSource is the read side of a form at submit time.
type FieldSource interface {
	ID() string
	Value(name string) string
}

// SubmitEvent is dispatched when a form is submitted. Unless a handler calls
// PreventDefault, the document performs its default action (navigation).
type SubmitEvent struct {
	Form FieldSource
	At   time.Time

	defaultPrevented bool
}

func NewSubmitEvent(form FieldSource) *SubmitEvent {
	return &SubmitEvent{Form: form, At: time.Now()}
}

func (e *SubmitEvent) Type() EventType { return EventSubmit }

func (e *SubmitEvent) PreventDefault() { e.defaultPrevented = true }

func (e *SubmitEvent) DefaultPrevented() bool { return e.defaultPrevented }

// MessageEvent carries one received text frame.
type MessageEvent struct {
	Data string    `json:"data"`
	At   time.Time `json:"at"`
}

func (MessageEvent) Type() EventType { return EventMessage }

type OpenEvent struct {
	URL string    `json:"url"`
	At  time.Time `json:"at"`
}

func (OpenEvent) Type() EventType { return EventOpen }

type ErrorEvent struct {
	Err error     `json:"-"`
	At  time.Time `json:"at"`
}

func (ErrorEvent) Type() EventType { return EventError }

func (e ErrorEvent) String() string {
	if e.Err == nil {
		return "error"
	}
	return e.Err.Error()
}

// CloseEvent reports the end of a connection. Code follows RFC 6455; 1006
// means the connection dropped without a close frame.
type CloseEvent struct {
	Code     int       `json:"code"`
	Reason   string    `json:"reason"`
	WasClean bool      `json:"was_clean"`
	At       time.Time `json:"at"`
}

func (CloseEvent) Type() EventType { return EventClose }

func (e CloseEvent) String() string {
	return fmt.Sprintf("code=%d reason=%q clean=%t", e.Code, e.Reason, e.WasClean)
}

// Command is one text frame received by the command server.
type Command struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	RemoteAddr string    `json:"remote_addr"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}
