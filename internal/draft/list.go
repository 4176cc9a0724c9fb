package draft

import "fmt"

// The three repeatable fields share these helpers. Every helper returns a
// fresh slice and never writes through its argument.

func copyItems(items []string) []string {
	if len(items) == 0 {
		return []string{""}
	}
	out := make([]string, len(items))
	copy(out, items)
	return out
}

func setItem(items []string, index int, value string) ([]string, error) {
	if index < 0 || index >= len(items) {
		return nil, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(items))
	}
	out := copyItems(items)
	out[index] = value
	return out, nil
}

func appendItem(items []string) []string {
	out := make([]string, len(items), len(items)+1)
	copy(out, items)
	return append(out, "")
}

func removeItem(items []string, index int) ([]string, error) {
	if index < 0 || index >= len(items) {
		return nil, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(items))
	}
	if len(items) == 1 {
		return []string{""}, nil
	}
	out := make([]string, 0, len(items)-1)
	out = append(out, items[:index]...)
	return append(out, items[index+1:]...), nil
}
