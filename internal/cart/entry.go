package cart

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

// Entry is the canonical cart line: either a plain quantity or a set of
// per-size quantities, never both. Carts written by older frontends arrive
// in four shapes (bare integer, list of dicts, dict with "quantity", dict
// with "items_by_size"); Normalize folds all of them into this type at the
// boundary so nothing downstream ever sniffs shapes again.
type Entry struct {
	Quantity int
	BySize   map[string]int

	// Unknown keys carried alongside "quantity" are kept and re-serialized
	// untouched so newer cookie fields survive a round trip.
	extra map[string]any
}

func defaultEntry() Entry { return Entry{Quantity: 1} }

// Normalize converts any historical cart-entry shape into a canonical
// Entry. It is total (never panics, never errors) and idempotent: feeding
// it an already-canonical Entry returns an equal Entry. Anything
// unrecognized, including nil, degrades to quantity 1 rather than aborting
// the whole cart.
func Normalize(raw any) Entry {
	switch v := raw.(type) {
	case Entry:
		return normalizeEntry(v)
	case *Entry:
		if v == nil {
			return defaultEntry()
		}
		return normalizeEntry(*v)
	case map[string]any:
		return normalizeMap(v)
	case []any:
		return normalizeList(v)
	default:
		if n, ok := asQuantity(raw); ok {
			return Entry{Quantity: n}
		}
		return defaultEntry()
	}
}

func normalizeEntry(e Entry) Entry {
	if len(e.BySize) > 0 {
		if sizes := filterSizes(e.BySize); len(sizes) > 0 {
			return Entry{BySize: sizes}
		}
		return defaultEntry()
	}
	if e.Quantity >= 1 {
		return Entry{Quantity: e.Quantity, extra: e.extra}
	}
	return defaultEntry()
}

func normalizeMap(m map[string]any) Entry {
	if raw, ok := m["items_by_size"]; ok {
		if sizes := parseSizes(raw); len(sizes) > 0 {
			return Entry{BySize: sizes}
		}
		return defaultEntry()
	}
	if raw, ok := m["quantity"]; ok {
		n, ok := asQuantity(raw)
		if !ok {
			return defaultEntry()
		}
		var extra map[string]any
		for k, v := range m {
			if k == "quantity" {
				continue
			}
			if extra == nil {
				extra = map[string]any{}
			}
			extra[k] = v
		}
		return Entry{Quantity: n, extra: extra}
	}
	return defaultEntry()
}

// Legacy list shape: the first element carrying a usable "quantity" wins.
func normalizeList(list []any) Entry {
	for _, el := range list {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		if n, ok := asQuantity(m["quantity"]); ok {
			return Entry{Quantity: n}
		}
	}
	return defaultEntry()
}

func parseSizes(raw any) map[string]int {
	switch v := raw.(type) {
	case map[string]int:
		return filterSizes(v)
	case map[string]any:
		sizes := map[string]int{}
		for size, q := range v {
			if n, ok := asQuantity(q); ok {
				sizes[size] = n
			}
		}
		if len(sizes) == 0 {
			return nil
		}
		return sizes
	default:
		return nil
	}
}

func filterSizes(in map[string]int) map[string]int {
	out := map[string]int{}
	for size, q := range in {
		if q >= 1 {
			out[size] = q
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// maxQuantity bounds a single cart line. Anything above it is cookie
// garbage, not a plausible purchase.
const maxQuantity = math.MaxInt32

// intQuantity validates a candidate quantity before the int conversion so
// an overflowed value can never come out negative.
func intQuantity(n int64) (int, bool) {
	if n < 1 || n > maxQuantity {
		return 0, false
	}
	return int(n), true
}

// asQuantity extracts a positive integer quantity from whatever JSON or
// caller code handed us. Floats must be whole numbers; numeric strings are
// accepted because old cookies contain them.
func asQuantity(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return intQuantity(int64(v))
	case int32:
		return intQuantity(int64(v))
	case int64:
		return intQuantity(v)
	case float64:
		if v != math.Trunc(v) || v < 1 || v > maxQuantity {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return intQuantity(n)
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return intQuantity(n)
	default:
		return 0, false
	}
}

// TotalQuantity is the logical unit count of the line, summing size
// buckets when present.
func (e Entry) TotalQuantity() int {
	if len(e.BySize) > 0 {
		total := 0
		for _, q := range e.BySize {
			total += q
		}
		return total
	}
	return e.Quantity
}

// Sizes returns the size labels in deterministic order.
func (e Entry) Sizes() []string {
	sizes := make([]string, 0, len(e.BySize))
	for s := range e.BySize {
		sizes = append(sizes, s)
	}
	sort.Strings(sizes)
	return sizes
}

func (e Entry) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	for k, v := range e.extra {
		out[k] = v
	}
	if len(e.BySize) > 0 {
		out["items_by_size"] = e.BySize
	} else {
		out["quantity"] = e.Quantity
	}
	return json.Marshal(out)
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		*e = defaultEntry()
		return nil
	}
	*e = Normalize(raw)
	return nil
}
