package components

import (
	"github.com/Veraticus/spend/internal/tui/themes"
)

// ToastKind selects the toast color.
type ToastKind int

// Toast kinds.
const (
	ToastInfo ToastKind = iota
	ToastSuccess
	ToastError
)

// ToastModel is a single transient status line.
type ToastModel struct {
	theme   themes.Theme
	message string
	kind    ToastKind
	seq     int
}

// NewToast creates an empty toast.
func NewToast(theme themes.Theme) ToastModel {
	return ToastModel{theme: theme}
}

// Show replaces the message and returns its sequence number, which Dismiss
// needs so a late timer cannot hide a newer message.
func (t *ToastModel) Show(message string, kind ToastKind) int {
	t.seq++
	t.message = message
	t.kind = kind
	return t.seq
}

// Dismiss hides the message if seq is still the latest.
func (t *ToastModel) Dismiss(seq int) {
	if seq == t.seq {
		t.message = ""
	}
}

// Message returns the current text.
func (t ToastModel) Message() string {
	return t.message
}

// View renders the toast, or nothing.
func (t ToastModel) View() string {
	if t.message == "" {
		return ""
	}
	style := t.theme.StatusInfo
	switch t.kind {
	case ToastSuccess:
		style = t.theme.StatusSuccess
	case ToastError:
		style = t.theme.StatusError
	}
	return t.theme.Toast.Render(style.Render(t.message))
}
