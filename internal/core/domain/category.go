package domain

// CategoryResolution maps a human-readable category path to the numeric id
// chain the backend stores. Both fields stay nil when resolution failed;
// submission proceeds without them.
type CategoryResolution struct {
	LeafID *int64
	Path   []int64
}
