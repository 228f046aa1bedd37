package app

import (
	"github.com/rs/zerolog"

	"wsconsole/internal/model"
	"wsconsole/internal/observable"
)

// Sender transmits one text frame.
type Sender interface {
	Send(text string) error
}

// CommandSubmitter forwards a form field over the connection on submit.
type CommandSubmitter struct {
	conn  Sender
	field string
	log   zerolog.Logger
}

func NewCommandSubmitter(conn Sender, field string, log zerolog.Logger) *CommandSubmitter {
	return &CommandSubmitter{
		conn:  conn,
		field: field,
		log:   log,
	}
}

// Bind subscribes the submitter to a form's submit events.
func (s *CommandSubmitter) Bind(onSubmit *observable.Notifier[*model.SubmitEvent]) (unbind func()) {
	return onSubmit.Subscribe(s.OnSubmit)
}

// OnSubmit keeps the document in place and sends the field value as is,
// empty strings included. A failed send is logged and otherwise dropped.
func (s *CommandSubmitter) OnSubmit(ev *model.SubmitEvent) {
	ev.PreventDefault()

	command := ev.Form.Value(s.field)
	if err := s.conn.Send(command); err != nil {
		s.log.Warn().
			Err(err).
			Str("form", ev.Form.ID()).
			Msg("command not sent")
		return
	}
	s.log.Debug().Str("command", command).Msg("command sent")
}
