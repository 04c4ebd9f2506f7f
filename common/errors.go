package common

import "errors"

// Errors reported by the script bridge, the element resolver and the dialog
// commands. Callers wrap them with %w and match with errors.Is.
var (
	ErrNoSuchElement   = errors.New("no such element")
	ErrScriptExecution = errors.New("script execution failed")
	ErrResultShape     = errors.New("unexpected script result shape")
	ErrDocumentGone    = errors.New("document is no longer available")
	ErrWrongDocument   = errors.New("element belongs to a different document")
	ErrStaleElement    = errors.New("element reference is not known in this session")
	ErrNoAlertOpen     = errors.New("no alert is active")
	ErrButtonNotFound  = errors.New("dialog button not found")
	ErrNoSuchWindow    = errors.New("no such window")
)
