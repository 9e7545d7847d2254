// Package roster holds the record list, the form draft and the single
// validation message, and applies add/edit/update/delete to them. Every
// successful mutation writes the full list back through a store.KV.
package roster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/roster/internal/model"
	"github.com/Makepad-fr/roster/internal/store"
)

// Draft is the not-yet-committed form input.
type Draft struct {
	Name  string
	Email string
	ToDo  string
}

// Field names one input of a Draft.
type Field int

const (
	FieldName Field = iota
	FieldEmail
	FieldToDo
)

func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldEmail:
		return "email"
	case FieldToDo:
		return "toDo"
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

const noTarget = -1

// Controller owns the store, the draft and the error state. It is not safe
// for concurrent use; callers drive it from one goroutine.
type Controller struct {
	kv     store.KV
	logger *log.Logger

	records []model.Record

	draft      Draft
	editTarget int
	editID     string

	errMsg  string
	notice  string
	loadErr error
}

// New loads the record list from kv. A missing, unreadable or malformed
// value leaves the store empty; the cause is kept in LoadErr.
func New(ctx context.Context, kv store.KV, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	c := &Controller{
		kv:         kv,
		logger:     logger.With("component", "roster"),
		records:    []model.Record{},
		editTarget: noTarget,
	}
	records, err := store.LoadRecords(ctx, kv)
	if err != nil {
		c.loadErr = &StorageReadError{Err: err}
		c.logger.Warn("starting with an empty roster", "err", err)
		return c
	}
	c.records = records
	c.logger.Debug("loaded roster", "records", len(records))
	return c
}

// LoadErr returns the StorageReadError recovered from at startup, if any.
func (c *Controller) LoadErr() error { return c.loadErr }

// Records returns a copy of the store in order.
func (c *Controller) Records() []model.Record { return slices.Clone(c.records) }

// Len returns the number of records.
func (c *Controller) Len() int { return len(c.records) }

// Record returns the record at position.
func (c *Controller) Record(position int) (model.Record, bool) {
	if position < 0 || position >= len(c.records) {
		return model.Record{}, false
	}
	return c.records[position], true
}

// IndexOf returns the position of the record with id, or -1.
func (c *Controller) IndexOf(id string) int {
	return slices.IndexFunc(c.records, func(r model.Record) bool { return r.ID == id })
}

// Draft returns the current form input.
func (c *Controller) Draft() Draft { return c.draft }

// EditTarget returns the position under edit; ok is false when idle.
func (c *Controller) EditTarget() (position int, ok bool) {
	return c.editTarget, c.editTarget != noTarget
}

// Editing reports whether the next submit updates rather than adds.
func (c *Controller) Editing() bool { return c.editTarget != noTarget }

// Err returns the active validation message, or "".
func (c *Controller) Err() string { return c.errMsg }

// Notice returns the active storage failure message, or "".
func (c *Controller) Notice() string { return c.notice }

// SetField updates one draft value. The validation message is kept until
// the next successful submit.
func (c *Controller) SetField(f Field, value string) {
	switch f {
	case FieldName:
		c.draft.Name = value
	case FieldEmail:
		c.draft.Email = value
	case FieldToDo:
		c.draft.ToDo = value
	}
}

// SetDraft replaces all draft values at once.
func (c *Controller) SetDraft(d Draft) { c.draft = d }

// Add validates d and appends it as a new record.
func (c *Controller) Add(ctx context.Context, d Draft) error {
	if err := c.validate(d, noTarget); err != nil {
		return err
	}
	rec := model.NewRecord(d.Name, d.Email, d.ToDo)
	c.records = append(c.records, rec)
	c.draft = Draft{}
	c.errMsg = ""
	c.logger.Info("added record", "id", rec.ID, "position", len(c.records)-1)
	return c.persist(ctx)
}

// SelectForEdit loads the record at position into the draft and makes it
// the edit target. Nothing is validated or persisted.
func (c *Controller) SelectForEdit(position int) error {
	rec, ok := c.Record(position)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoRecord, position)
	}
	c.draft = Draft{Name: rec.Name, Email: rec.Email, ToDo: rec.ToDo}
	c.editTarget = position
	c.editID = rec.ID
	return nil
}

// Update validates d and replaces the record at target in place. The
// record's own email does not count as a duplicate.
func (c *Controller) Update(ctx context.Context, d Draft, target int) error {
	if _, ok := c.Record(target); !ok {
		return fmt.Errorf("%w: %d", ErrNoRecord, target)
	}
	if err := c.validate(d, target); err != nil {
		return err
	}
	rec := &c.records[target]
	rec.Name, rec.Email, rec.ToDo = d.Name, d.Email, d.ToDo
	c.clearEdit()
	c.errMsg = ""
	c.logger.Info("updated record", "id", rec.ID, "position", target)
	return c.persist(ctx)
}

// Submit is the primary form action: Add when idle, Update when editing.
func (c *Controller) Submit(ctx context.Context) error {
	if target, ok := c.EditTarget(); ok {
		return c.Update(ctx, c.draft, target)
	}
	return c.Add(ctx, c.draft)
}

// Delete removes the record at position, shifting later records down.
// If the record under edit is removed the draft is discarded; if an
// earlier record is removed the edit target follows its record.
func (c *Controller) Delete(ctx context.Context, position int) error {
	rec, ok := c.Record(position)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoRecord, position)
	}
	c.records = slices.Delete(c.records, position, position+1)
	if c.Editing() {
		if i := c.IndexOf(c.editID); i >= 0 {
			c.editTarget = i
		} else {
			c.clearEdit()
		}
	}
	c.logger.Info("deleted record", "id", rec.ID, "position", position)
	return c.persist(ctx)
}

// CancelEdit returns to idle, discarding the draft and any message.
func (c *Controller) CancelEdit() {
	c.clearEdit()
	c.errMsg = ""
}

func (c *Controller) clearEdit() {
	c.draft = Draft{}
	c.editTarget = noTarget
	c.editID = ""
}

// validate runs the checks in their fixed order; the first failure wins
// and becomes the error state. exclude is skipped by the uniqueness check.
func (c *Controller) validate(d Draft, exclude int) error {
	var err *ValidationError
	switch {
	case !ValidateEmail(d.Email):
		err = ErrInvalidEmail
	case c.emailTaken(d.Email, exclude):
		err = ErrEmailTaken
	case d.Name == "" || d.Email == "" || d.ToDo == "":
		err = ErrRequired
	default:
		return nil
	}
	c.errMsg = err.Message
	c.logger.Debug("rejected draft", "reason", err.Message)
	return err
}

func (c *Controller) emailTaken(email string, exclude int) bool {
	for i, r := range c.records {
		if i != exclude && r.Email == email {
			return true
		}
	}
	return false
}

func (c *Controller) persist(ctx context.Context) error {
	if err := store.SaveRecords(ctx, c.kv, c.records); err != nil {
		c.notice = "Changes could not be saved: " + err.Error()
		c.logger.Error("persist roster", "err", err)
		return &StorageWriteError{Err: err}
	}
	c.notice = ""
	return nil
}

// IsValidation reports whether err is a user-facing validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
