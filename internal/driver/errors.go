package driver

import "errors"

// ErrInvalidConfig is returned for malformed run configuration, e.g. a
// negative budget or a missing solver. Check with errors.Is.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrOverwriteDeclined is returned when saving would overwrite an existing
// checkpoint, no restore was requested, and the confirmation callback
// declined. No state is written in that case; callers are expected to abort
// with a distinct status.
var ErrOverwriteDeclined = errors.New("checkpoint overwrite declined")
