package cli

import "errors"

// ErrFileNotFound indicates the specified input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrOutputExists indicates the output file already exists and --force was not given.
var ErrOutputExists = errors.New("output file already exists")
