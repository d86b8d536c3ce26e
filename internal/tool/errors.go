package tool

import "errors"

// Sentinel errors shared across the tool layer. The execution loop folds
// these into tool-result messages rather than aborting; only the loop's own
// infrastructure failures terminate a run.
var (
	ErrFileMissing     = errors.New("file does not exist")
	ErrFileExists      = errors.New("file already exists")
	ErrBinaryFile      = errors.New("binary files are not supported")
	ErrTooLarge        = errors.New("file or content exceeds size limit")
	ErrSnippetNotFound = errors.New("search string not found in file")
	ErrInvalidOffset   = errors.New("offset must be >= 0")
	ErrInvalidLimit    = errors.New("limit must be >= 0")

	ErrToolTimeout = errors.New("tool execution timed out")
)
