package state

// Entry is implemented by anything a Collection can hold. ID is the identity
// used for de-duplication, removal and filtering; Label is the display form.
type Entry interface {
	ID() string
	Label() string
}

// CloneItems produces a shallow copy of the provided entries.
func CloneItems[T Entry](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}

func indexOf[T Entry](items []T, id string) int {
	for i, item := range items {
		if item.ID() == id {
			return i
		}
	}
	return -1
}
