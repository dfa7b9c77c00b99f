// Package editor describes the pieces of a host editor that isorted interacts with.
//
// A host supplies a View for the buffer being sorted and a Window describing the
// project around it. Buffer and StaticWindow are in-memory implementations used by
// the command line host and in tests.
package editor

// View is the active buffer of the host editor.
type View interface {
	// FileName returns the path of the file backing the buffer, or "" for an unsaved buffer.
	FileName() string
	// Text returns the full buffer contents.
	Text() string
	// Size returns the length of the buffer in bytes.
	Size() int
	// Replace swaps the full buffer contents for text in a single edit.
	Replace(text string)
	// Selections returns the current selections, in order.
	Selections() []Region
	// SetSelections replaces the current selections.
	SetSelections(regions []Region)
	// Encoding returns the encoding the host reports for the buffer, or "" when undefined.
	Encoding() string
	// Window returns the window containing the view, or nil when it is detached.
	Window() Window
}

// Window is the host window (or project) a View belongs to.
type Window interface {
	// Folders returns the project folders open in the window.
	Folders() []string
	// Variables returns the host path variables available for command expansion.
	Variables() map[string]string
}
