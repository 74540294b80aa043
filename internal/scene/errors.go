package scene

import "errors"

// Load and animation errors. Concrete failures wrap one of these, so callers
// classify them with errors.Is.
var (
	// ErrMalformedScene rejects a whole model at load time: out-of-range
	// material/texture/image/node index, missing positions, unsupported index
	// width, broken hierarchy.
	ErrMalformedScene = errors.New("malformed scene")
	// ErrInvalidAnimationData reports keyframe data that cannot be evaluated.
	ErrInvalidAnimationData = errors.New("invalid animation data")
	// ErrConfigMismatch reports a conflicting binding, such as a second timeline id.
	ErrConfigMismatch = errors.New("configuration mismatch")
	// ErrAlreadyBound reports an attempt to set a keyframe channel twice.
	ErrAlreadyBound = errors.New("channel already bound")
)
