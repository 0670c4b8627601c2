package translation

import "errors"

// ErrNotInitialized is returned by Translate and Release when no model has
// been loaded with Initialize.
var ErrNotInitialized = errors.New("translator not initialized")
