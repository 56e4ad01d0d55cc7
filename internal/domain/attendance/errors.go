package attendance

import "errors"

// Attendance domain errors
var (
	ErrEntryNotFound     = errors.New("attendance entry not found")
	ErrEntryLocked       = errors.New("attendance entry has a manual override")
	ErrEmptyImport       = errors.New("import content is empty")
	ErrImportTooLarge    = errors.New("import content exceeds the size limit")
	ErrNilImportContent  = errors.New("import content is missing")
	ErrUnknownCorrection = errors.New("correction scope must be in, out or both")
	ErrUnreadableImport  = errors.New("import content could not be read")
)
