package drive

import (
	"github.com/alfred-assistant/alfred/pkg/adapter"
	"github.com/alfred-assistant/alfred/pkg/model"
)

const (
	// MaxReadSize is the largest file read will download
	MaxReadSize = 10 * 1024 * 1024

	// maxDepth bounds recursive walks of the folder tree
	maxDepth = 6

	// maxSummaryInput is the number of runes of a document sent for summary
	maxSummaryInput = 30000

	// maxDisplay is the number of runes of a read document shown to the user
	maxDisplay = 4000
)

type document struct {
	name string
	text string
}

// UseCase executes storage intents against the Drive folder
type UseCase struct {
	drive       adapter.Drive
	gemini      adapter.Gemini
	interpreter *Interpreter

	lastMatches []*model.DriveEntry
	lastRead    *document
}

type Option func(*UseCase)

// WithInterpreter replaces the interpreter built from the Gemini client
func WithInterpreter(interpreter *Interpreter) Option {
	return func(u *UseCase) {
		u.interpreter = interpreter
	}
}

func New(drive adapter.Drive, gemini adapter.Gemini, opts ...Option) *UseCase {
	u := &UseCase{
		drive:       drive,
		gemini:      gemini,
		interpreter: NewInterpreter(gemini),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Response is the result of one storage utterance. Result is nil when the
// intent is fallback, confirm or cancel: the caller owns those.
type Response struct {
	Intent  *model.StorageIntent
	Result  *model.Result
	Pending *model.PendingTrash
}

// Handled reports whether the response carries an answer
func (r *Response) Handled() bool {
	return r != nil && r.Result != nil
}
