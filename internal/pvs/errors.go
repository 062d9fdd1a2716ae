package pvs

const (
	// ErrTypeBadBlob marks a bake file that cannot be decoded.
	ErrTypeBadBlob = "bad_blob"

	// ErrTypeUnknownTarget marks a target index that was never added.
	ErrTypeUnknownTarget = "unknown_target"
)
