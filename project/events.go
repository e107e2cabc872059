package project

import (
	"github.com/amonks/recur/note"
)

// Widget names the properties-panel editor a field is edited with.
type Widget string

const (
	WidgetLongText Widget = "metadata-input-longtext"
	WidgetCheckbox Widget = "metadata-input-checkbox"
	WidgetNumber   Widget = "metadata-input-number"
	WidgetList     Widget = "metadata-input-list"
	WidgetUnknown  Widget = "metadata-input-unknown"
)

// WidgetFor returns the editor used for values of kind.
func WidgetFor(kind note.Kind) Widget {
	switch kind {
	case note.KindText:
		return WidgetLongText
	case note.KindBool:
		return WidgetCheckbox
	case note.KindNumber:
		return WidgetNumber
	case note.KindList:
		return WidgetList
	default:
		return WidgetUnknown
	}
}

// FieldEvent reports that the user left a property field.
type FieldEvent struct {
	Path        string
	Widget      Widget
	PropertyKey string
	Text        string
	// Blur removes focus from the field. It may be nil.
	Blur func()
}

// Changes returns one event per key whose value differs between before and
// after, in the key order of after. Removed keys produce no event.
func Changes(path string, before, after note.Snapshot) []FieldEvent {
	var events []FieldEvent
	for _, key := range after.Keys {
		value := after.Values[key]
		if previous, ok := before.Values[key]; ok && previous == value {
			continue
		}
		events = append(events, FieldEvent{
			Path:        path,
			Widget:      WidgetFor(value.Kind),
			PropertyKey: key,
			Text:        value.Text,
		})
	}
	return events
}
