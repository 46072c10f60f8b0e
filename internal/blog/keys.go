package blog

import "time"

const (
	KeyPrefix = "blog-output/"
	KeySuffix = ".txt"

	// Fixed width, so keys sort lexically in time order.
	keyTimeLayout = "20060102T150405.000000000Z"
)

// ArtifactKey derives the storage key for an artifact created at t.
func ArtifactKey(t time.Time) string {
	return KeyPrefix + t.UTC().Format(keyTimeLayout) + KeySuffix
}
