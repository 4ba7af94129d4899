package intake

import (
	"fmt"

	"greenbuilder/internal/models"
)

// State represents the lifecycle of the intake form.
type State string

const (
	// StateEmpty — черновик равен набору значений по умолчанию.
	StateEmpty State = "empty"
	// StateEditing — хотя бы одно поле отличается от значения по умолчанию.
	StateEditing State = "editing"
	// StateSubmitting — запрос к сервису генерации в полете.
	StateSubmitting State = "submitting"
	// StateSubmitted — терминальное состояние успешной отправки.
	StateSubmitted State = "submitted"
)

// TextField names a free-text draft field addressable through SetField.
type TextField string

const (
	FieldDesignName     TextField = "designName"
	FieldLength         TextField = "length"
	FieldWidth          TextField = "width"
	FieldSpecialRequest TextField = "specialRequest"
)

// requiredFields are checked before dispatch, in surfacing order.
var requiredFields = []TextField{FieldDesignName, FieldLength, FieldWidth}

// Form is the intake form state machine. It owns the in-progress draft
// exclusively; callers only ever see copies. The dirty flag is recomputed
// synchronously after every mutation, not by an ambient subscription, so the
// navigation layer can gate destructive actions on the spot.
//
// Form is not safe for concurrent use; the workflow controller serializes
// access to it.
type Form struct {
	draft models.DesignDraft
	state State
	dirty bool
}

// NewForm returns a form at the default (empty) draft.
func NewForm() *Form {
	return &Form{draft: models.NewDesignDraft(), state: StateEmpty}
}

// State returns the current lifecycle state.
func (f *Form) State() State { return f.state }

// IsDirty reports whether any field differs from its default.
func (f *Form) IsDirty() bool { return f.dirty }

// Draft returns a copy of the current draft.
func (f *Form) Draft() models.DesignDraft { return f.draft.Clone() }

// SetField assigns a free-text field. Rejected while a submission is in
// flight: the draft in the request is the consumed value.
func (f *Form) SetField(field TextField, value string) error {
	if f.state == StateSubmitting {
		return models.ErrFormLocked
	}
	switch field {
	case FieldDesignName:
		f.draft.DesignName = value
	case FieldLength:
		f.draft.Length = value
	case FieldWidth:
		f.draft.Width = value
	case FieldSpecialRequest:
		f.draft.SpecialRequest = value
	default:
		return fmt.Errorf("unknown draft field %q", field)
	}
	f.recompute()
	return nil
}

// AdjustRoom changes a room count by delta, clamped so the count never drops
// below 1 regardless of how many decrements arrive or in what order.
func (f *Form) AdjustRoom(kind models.RoomKind, delta int) error {
	if f.state == StateSubmitting {
		return models.ErrFormLocked
	}
	current, ok := f.draft.Rooms[kind]
	if !ok {
		return fmt.Errorf("unknown room kind %q", kind)
	}
	next := current + delta
	if next < 1 {
		next = 1
	}
	f.draft.Rooms[kind] = next
	f.recompute()
	return nil
}

// ToggleWindow flips the presence flag for one side of the floor plan.
func (f *Form) ToggleWindow(side models.WindowSide) error {
	if f.state == StateSubmitting {
		return models.ErrFormLocked
	}
	current, ok := f.draft.Windows[side]
	if !ok {
		return fmt.Errorf("unknown window side %q", side)
	}
	f.draft.Windows[side] = !current
	f.recompute()
	return nil
}

// Validate checks the required fields. A draft failing validation must never
// reach the network.
func (f *Form) Validate() error {
	for _, field := range requiredFields {
		var value string
		switch field {
		case FieldDesignName:
			value = f.draft.DesignName
		case FieldLength:
			value = f.draft.Length
		case FieldWidth:
			value = f.draft.Width
		}
		if value == "" {
			return &models.ValidationError{Field: string(field)}
		}
	}
	return nil
}

// BeginSubmit validates the draft and moves the form into Submitting,
// returning the draft copy to send. A second BeginSubmit while one request
// is in flight is rejected.
func (f *Form) BeginSubmit() (models.DesignDraft, error) {
	if f.state == StateSubmitting {
		return models.DesignDraft{}, models.ErrSubmissionInFlight
	}
	if err := f.Validate(); err != nil {
		return models.DesignDraft{}, err
	}
	f.state = StateSubmitting
	return f.draft.Clone(), nil
}

// CompleteSubmit records a successful submission and clears the dirty flag.
func (f *Form) CompleteSubmit() {
	f.state = StateSubmitted
	f.dirty = false
}

// FailSubmit returns the form to Editing after a failed submission. Черновик
// не очищается: пользователь может повторить отправку.
func (f *Form) FailSubmit() {
	f.state = StateEditing
	f.recompute()
}

// RequestReset reports whether clearing the form needs user confirmation.
// A clean form is cleared immediately.
func (f *Form) RequestReset() (confirmationRequired bool) {
	if f.dirty {
		return true
	}
	f.Reset()
	return false
}

// Reset clears the draft back to the default tuple.
func (f *Form) Reset() {
	f.draft = models.NewDesignDraft()
	f.state = StateEmpty
	f.dirty = false
}

// Load seeds the form with an existing draft, e.g. when editing a persisted
// design. State follows from whether the draft diverges from the defaults.
func (f *Form) Load(draft models.DesignDraft) {
	f.draft = draft.Clone()
	if f.draft.Rooms == nil || f.draft.Windows == nil {
		base := models.NewDesignDraft()
		if f.draft.Rooms == nil {
			f.draft.Rooms = base.Rooms
		}
		if f.draft.Windows == nil {
			f.draft.Windows = base.Windows
		}
	}
	f.state = StateEmpty
	f.recompute()
}

// recompute derives the dirty flag and the Empty/Editing split from the
// draft. Submitting and Submitted are preserved.
func (f *Form) recompute() {
	f.dirty = !f.draft.IsDefault()
	switch f.state {
	case StateSubmitting, StateSubmitted:
		return
	default:
		if f.dirty {
			f.state = StateEditing
		} else {
			f.state = StateEmpty
		}
	}
}
