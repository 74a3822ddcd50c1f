package domain

import "errors"

// ErrFormNotFound is returned when no schema exists for a form identifier.
var ErrFormNotFound = errors.New("form not found")

// ErrNodeNotFound is returned when a node the flow depends on is absent from the schema:
// an empty schema has no entry node, or a stored position references a removed node.
var ErrNodeNotFound = errors.New("node not found")

// ErrStoreUnavailable wraps failures of the session store.
var ErrStoreUnavailable = errors.New("session store unavailable")

// ErrKeyNotFound is returned by key-value stores for missing or expired keys.
var ErrKeyNotFound = errors.New("key not found")
