// Package dom is a small in-process document: elements addressed by ID,
// each holding text content, and forms with named fields that dispatch
// submit events on an event loop.
package dom

import (
	"errors"
	"fmt"
	"sync"

	"wsconsole/internal/eventloop"
	"wsconsole/internal/model"
	"wsconsole/internal/observable"
)

var (
	ErrDuplicateID = errors.New("dom: duplicate element id")
	ErrNoSuchField = errors.New("dom: no such form field")
)

// TextChange is published whenever an element's text content is replaced.
type TextChange struct {
	ID   string
	Text string
}

// Document holds the page's elements and forms by ID and counts the
// navigations caused by unprevented form submissions.
type Document struct {
	loop *eventloop.Loop

	mu          sync.Mutex
	elements    map[string]*Element
	forms       map[string]*Form
	navigations int

	// OnTextChange notifies renderers of text updates, in update order.
	OnTextChange *observable.Notifier[TextChange]
}

func NewDocument(loop *eventloop.Loop) *Document {
	return &Document{
		loop:         loop,
		elements:     make(map[string]*Element),
		forms:        make(map[string]*Form),
		OnTextChange: observable.NewNotifier[TextChange](loop),
	}
}

func (doc *Document) Loop() *eventloop.Loop {
	return doc.loop
}

// NewElement adds an empty element with the given id.
func (doc *Document) NewElement(id string) (*Element, error) {
	doc.mu.Lock()
	defer doc.mu.Unlock()

	if _, exists := doc.elements[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	e := &Element{doc: doc, id: id}
	doc.elements[id] = e
	return e, nil
}

// NewForm adds a form with the given id and declared field names. Fields
// start out empty.
func (doc *Document) NewForm(id string, fields ...string) (*Form, error) {
	e, err := doc.NewElement(id)
	if err != nil {
		return nil, err
	}

	f := &Form{
		Element:  e,
		fields:   make(map[string]string, len(fields)),
		OnSubmit: observable.NewNotifier[*model.SubmitEvent](doc.loop),
	}
	for _, name := range fields {
		f.fields[name] = ""
	}

	doc.mu.Lock()
	doc.forms[id] = f
	doc.mu.Unlock()
	return f, nil
}

func (doc *Document) ElementByID(id string) (*Element, bool) {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	e, ok := doc.elements[id]
	return e, ok
}

func (doc *Document) FormByID(id string) (*Form, bool) {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	f, ok := doc.forms[id]
	return f, ok
}

// Navigations counts default submit actions that were not prevented.
func (doc *Document) Navigations() int {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	return doc.navigations
}

// navigate emulates a full page reload: all text and field state is lost.
func (doc *Document) navigate() {
	doc.mu.Lock()
	doc.navigations++
	elements := make([]*Element, 0, len(doc.elements))
	for _, e := range doc.elements {
		elements = append(elements, e)
	}
	forms := make([]*Form, 0, len(doc.forms))
	for _, f := range doc.forms {
		forms = append(forms, f)
	}
	doc.mu.Unlock()

	for _, e := range elements {
		e.SetText("")
	}
	for _, f := range forms {
		f.reset()
	}
}

// Element is a node with an ID and replaceable text content.
type Element struct {
	doc *Document
	id  string

	mu   sync.RWMutex
	text string
}

func (e *Element) ID() string {
	return e.id
}

func (e *Element) Text() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.text
}

// SetText replaces the element's text content verbatim.
func (e *Element) SetText(text string) {
	e.mu.Lock()
	e.text = text
	e.mu.Unlock()

	e.doc.OnTextChange.Notify(TextChange{ID: e.id, Text: text})
}

// Form is an element with named fields whose submission is dispatched as a
// cancelable SubmitEvent.
type Form struct {
	*Element

	fieldsMu sync.RWMutex
	fields   map[string]string

	OnSubmit *observable.Notifier[*model.SubmitEvent]
}

var _ model.FieldSource = (*Form)(nil)

// SetField sets a declared field's value.
func (f *Form) SetField(name, value string) error {
	f.fieldsMu.Lock()
	defer f.fieldsMu.Unlock()

	if _, ok := f.fields[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNoSuchField, name)
	}
	f.fields[name] = value
	return nil
}

// Value returns the current value of a field, or "" if it is not declared.
func (f *Form) Value(name string) string {
	f.fieldsMu.RLock()
	defer f.fieldsMu.RUnlock()
	return f.fields[name]
}

func (f *Form) reset() {
	f.fieldsMu.Lock()
	defer f.fieldsMu.Unlock()
	for name := range f.fields {
		f.fields[name] = ""
	}
}

// Submit schedules a submit event on the document's loop. Handlers see the
// field values as they are when the event is dispatched. It reports false
// if the loop has stopped.
func (f *Form) Submit() bool {
	return f.doc.loop.Post(f.dispatchSubmit)
}

func (f *Form) dispatchSubmit() {
	ev := model.NewSubmitEvent(f)
	f.OnSubmit.Dispatch(ev)
	if !ev.DefaultPrevented() {
		f.doc.navigate()
	}
}
