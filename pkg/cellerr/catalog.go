// Package cellerr defines the API/editor-level error type returned by
// internal/editor and internal/engine (spec.md §7 layer 3). These are never
// surfaced as cell values — that's what internal/types.ExcelError is for —
// they report failures of the mutation/transaction surface itself: unknown
// sheet, invalid address, an operation unsupported mid-transaction, a failed
// atomic action.
//
// Modeled on mcpxcel's pkg/mcperr Code/Entry/catalog pattern, decoupled from
// MCP: EditorError is a plain error usable with errors.Is/errors.As instead
// of a *mcp.CallToolResult.
package cellerr

import (
	"errors"
	"fmt"
)

// Code is a canonical editor/engine error code.
type Code string

const (
	InvalidSheet          Code = "INVALID_SHEET"
	InvalidAddress        Code = "INVALID_ADDRESS"
	InvalidRange          Code = "INVALID_RANGE"
	UnknownName           Code = "UNKNOWN_NAME"
	NameAlreadyDefined    Code = "NAME_ALREADY_DEFINED"
	UnknownTable          Code = "UNKNOWN_TABLE"
	TableAlreadyDefined   Code = "TABLE_ALREADY_DEFINED"
	UnsupportedInAction   Code = "UNSUPPORTED_IN_ACTION"
	ActionFailed          Code = "ACTION_FAILED"
	NothingToUndo         Code = "NOTHING_TO_UNDO"
	NothingToRedo         Code = "NOTHING_TO_REDO"
	ParseFailed           Code = "PARSE_FAILED"
	BulkIngestFailed      Code = "BULK_INGEST_FAILED"
)

// Entry documents a code's standard message, retry semantics, and next steps.
type Entry struct {
	Code      Code
	Message   string
	Retryable bool
	NextSteps []string
}

var catalog = map[Code]Entry{
	InvalidSheet:        {Code: InvalidSheet, Message: "sheet not found", Retryable: true, NextSteps: []string{"List sheets and check spelling/case"}},
	InvalidAddress:      {Code: InvalidAddress, Message: "cell address out of bounds or malformed", Retryable: false, NextSteps: []string{"Check row/column bounds"}},
	InvalidRange:        {Code: InvalidRange, Message: "range out of bounds or malformed", Retryable: false, NextSteps: []string{"Check the range corners are within sheet bounds"}},
	UnknownName:         {Code: UnknownName, Message: "named range not defined", Retryable: true, NextSteps: []string{"Call define_name first"}},
	NameAlreadyDefined:  {Code: NameAlreadyDefined, Message: "named range already defined in this scope", Retryable: false, NextSteps: []string{"Use update_name to change an existing definition"}},
	UnknownTable:        {Code: UnknownTable, Message: "table not defined", Retryable: true, NextSteps: []string{"Call define_table first"}},
	TableAlreadyDefined: {Code: TableAlreadyDefined, Message: "table already defined", Retryable: false, NextSteps: []string{"Use update_table to change an existing definition"}},
	UnsupportedInAction: {Code: UnsupportedInAction, Message: "operation not supported inside an atomic action", Retryable: false, NextSteps: []string{"Perform the operation outside action_atomic"}},
	ActionFailed:        {Code: ActionFailed, Message: "atomic action failed and was rolled back", Retryable: true, NextSteps: []string{"Inspect the wrapped cause"}},
	NothingToUndo:       {Code: NothingToUndo, Message: "undo stack is empty", Retryable: false},
	NothingToRedo:       {Code: NothingToRedo, Message: "redo stack is empty", Retryable: false},
	ParseFailed:         {Code: ParseFailed, Message: "formula failed to parse", Retryable: false, NextSteps: []string{"Check formula syntax"}},
	BulkIngestFailed:    {Code: BulkIngestFailed, Message: "bulk ingest failed partway through", Retryable: false, NextSteps: []string{"Inspect the wrapped cause and the row it failed on"}},
}

// EditorError is the API-level error type returned from editor/engine
// methods. It is never a cell value; see internal/types.ExcelError for
// those.
type EditorError struct {
	Code    Code
	Message string
	Cause   error
}

func (e *EditorError) Error() string {
	msg := e.Message
	if msg == "" {
		if entry, ok := catalog[e.Code]; ok {
			msg = entry.Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *EditorError) Unwrap() error { return e.Cause }

// Is reports whether target is an *EditorError with the same Code, so
// errors.Is(err, cellerr.New(cellerr.InvalidSheet, "")) matches any
// InvalidSheet error regardless of message/cause.
func (e *EditorError) Is(target error) bool {
	var other *EditorError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// New builds an EditorError for code with an optional message override (the
// catalog's default message is used when empty).
func New(code Code, message string) *EditorError {
	return &EditorError{Code: code, Message: message}
}

// Wrap builds an EditorError for code, wrapping cause so errors.As/errors.Is
// chains through it.
func Wrap(code Code, message string, cause error) *EditorError {
	return &EditorError{Code: code, Message: message, Cause: cause}
}

// Retryable reports whether the catalog marks code as worth retrying.
func Retryable(code Code) bool {
	return catalog[code].Retryable
}

// NextSteps returns the catalog's suggested next steps for code, if any.
func NextSteps(code Code) []string {
	return catalog[code].NextSteps
}
