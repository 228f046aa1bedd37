package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"wsconsole/internal/dom"
	"wsconsole/internal/eventloop"
	"wsconsole/internal/logging"
	"wsconsole/internal/transport/ws"
)

// Element and field names of the command page.
const (
	StatusElementID = "status"
	CommandFormID   = "send-command"
	CommandField    = "command"
)

// Page is the command console: a status display and a command form bound
// to one connection. Both components share the connection passed in.
type Page struct {
	Loop   *eventloop.Loop
	Doc    *dom.Document
	Status *dom.Element
	Form   *dom.Form
	Conn   *ws.Conn

	unbind []func()
}

// NewPage builds the document and wires the command submitter and status
// echo to conn. The connection is not dialed until Open.
func NewPage(loop *eventloop.Loop, conn *ws.Conn, log zerolog.Logger) (*Page, error) {
	doc := dom.NewDocument(loop)

	status, err := doc.NewElement(StatusElementID)
	if err != nil {
		return nil, fmt.Errorf("failed to create status element: %w", err)
	}
	form, err := doc.NewForm(CommandFormID, CommandField)
	if err != nil {
		return nil, fmt.Errorf("failed to create command form: %w", err)
	}

	submitter := NewCommandSubmitter(conn, CommandField, logging.Component(log, "submitter"))
	echo := NewStatusEcho(status, logging.Component(log, "status"))

	return &Page{
		Loop:   loop,
		Doc:    doc,
		Status: status,
		Form:   form,
		Conn:   conn,
		unbind: []func(){
			submitter.Bind(form.OnSubmit),
			echo.Bind(conn),
		},
	}, nil
}

// Open starts connecting. Cancelling ctx closes the connection.
func (p *Page) Open(ctx context.Context) {
	p.Conn.Connect(ctx)
}

// SubmitCommand types text into the command field and submits the form,
// both on the loop and in that order.
func (p *Page) SubmitCommand(text string) bool {
	if !p.Loop.Post(func() { _ = p.Form.SetField(CommandField, text) }) {
		return false
	}
	return p.Form.Submit()
}

// Close closes the connection. Its close event is still delivered to the
// status echo; later events are not.
func (p *Page) Close() error {
	err := p.Conn.Close()
	p.Loop.Post(func() {
		for _, unbind := range p.unbind {
			unbind()
		}
	})
	return err
}
