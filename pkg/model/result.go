package model

import "fmt"

// Subtype tells the presentation layer how to render a Result
type Subtype string

const (
	SubtypeSuccess Subtype = "success"
	SubtypeInfo    Subtype = "info"
	SubtypeWarning Subtype = "warning"
	SubtypeError   Subtype = "error"

	// SubtypeNone is plain assistant text from the generic responder
	SubtypeNone Subtype = ""
)

// Result is the answer to one utterance
type Result struct {
	Content string  `json:"content"`
	Subtype Subtype `json:"subtype"`
}

func NewResult(subtype Subtype, format string, args ...any) *Result {
	return &Result{
		Content: fmt.Sprintf(format, args...),
		Subtype: subtype,
	}
}
