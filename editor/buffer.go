package editor

import "slices"

// Buffer is an in-memory View.
type Buffer struct {
	fileName   string
	text       string
	encoding   string
	selections []Region
	window     Window
}

// BufferOption configures a Buffer.
type BufferOption func(*Buffer)

// WithFileName sets the path of the file backing the buffer.
func WithFileName(name string) BufferOption {
	return func(b *Buffer) {
		b.fileName = name
	}
}

// WithEncoding sets the encoding reported for the buffer.
func WithEncoding(encoding string) BufferOption {
	return func(b *Buffer) {
		b.encoding = encoding
	}
}

// WithSelections sets the initial selections.
func WithSelections(regions ...Region) BufferOption {
	return func(b *Buffer) {
		b.selections = slices.Clone(regions)
	}
}

// WithWindow attaches the buffer to a window.
func WithWindow(w Window) BufferOption {
	return func(b *Buffer) {
		b.window = w
	}
}

// NewBuffer creates a Buffer holding text with a single caret at the start.
func NewBuffer(text string, opts ...BufferOption) *Buffer {
	b := &Buffer{
		text:       text,
		selections: []Region{Point(0)},
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

func (b *Buffer) FileName() string {
	return b.fileName
}

func (b *Buffer) Text() string {
	return b.text
}

func (b *Buffer) Size() int {
	return len(b.text)
}

// Replace swaps the contents. Like most editors, the selections collapse to a caret at the start of the
// new text, callers wanting to keep them must save and reapply them.
func (b *Buffer) Replace(text string) {
	b.text = text
	b.selections = []Region{Point(0)}
}

func (b *Buffer) Selections() []Region {
	return slices.Clone(b.selections)
}

// SetSelections replaces the selections, clamping each region to the current buffer size.
func (b *Buffer) SetSelections(regions []Region) {
	b.selections = make([]Region, len(regions))
	for i, r := range regions {
		b.selections[i] = r.Clamp(len(b.text))
	}
}

func (b *Buffer) Encoding() string {
	return b.encoding
}

func (b *Buffer) Window() Window {
	return b.window
}
