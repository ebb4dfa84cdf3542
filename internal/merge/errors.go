package merge

import "errors"

// ErrSchemaChange is returned when an extract's column set no longer matches
// the contract of the fact it feeds. The merge fails before any write: a
// partial overwrite must never be applied silently.
var ErrSchemaChange = errors.New("schema change detected")
