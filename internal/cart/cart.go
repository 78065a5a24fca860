package cart

import (
	"encoding/json"
)

// Cart maps product id (string key, matching the cookie wire format) to a
// canonical entry. All values are normalized on the way in.
type Cart map[string]Entry

// Parse decodes a serialized cart, tolerating every malformed payload by
// returning an empty cart. A corrupted cookie must never break shopping.
func Parse(data []byte) Cart {
	if len(data) == 0 {
		return Cart{}
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Cart{}
	}
	c := make(Cart, len(raw))
	for id, entry := range raw {
		c[id] = Normalize(entry)
	}
	return c
}

func (c Cart) IsEmpty() bool { return len(c) == 0 }

func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for id, e := range c {
		out[id] = e
	}
	return out
}

// Count reports the total unit count across all lines and the number of
// distinct lines. Entries are already canonical so nothing here can abort.
func (c Cart) Count() (productCount, lineCount int) {
	for _, e := range c {
		productCount += e.TotalQuantity()
		lineCount++
	}
	return productCount, lineCount
}

// Add increments the entry for productID by qty, creating it when absent.
// Whatever legacy shape the entry was stored in, it is normalized first
// and then incremented, so repeated adds compose: add 2 then add 3 equals
// add 5. A size-bucketed entry collapses to its total quantity plus qty.
// Returns the resulting quantity.
func (c Cart) Add(productID string, qty int) (int, error) {
	if qty < 1 {
		return 0, ErrInvalidQuantity
	}
	existing, ok := c[productID]
	if !ok {
		c[productID] = Entry{Quantity: qty}
		return qty, nil
	}
	newQty := existing.TotalQuantity() + qty
	c[productID] = Entry{Quantity: newQty}
	return newQty, nil
}

// Adjust sets the entry's quantity to exactly qty. A qty of zero or below
// is the sanctioned removal path. Adjusting an absent line reports
// ErrItemNotFound rather than creating it.
func (c Cart) Adjust(productID string, qty int) error {
	if _, ok := c[productID]; !ok {
		return ErrItemNotFound
	}
	if qty <= 0 {
		delete(c, productID)
		return nil
	}
	c[productID] = Entry{Quantity: qty}
	return nil
}

func (c Cart) Remove(productID string) error {
	if _, ok := c[productID]; !ok {
		return ErrItemNotFound
	}
	delete(c, productID)
	return nil
}

func (c Cart) Clear() {
	for id := range c {
		delete(c, id)
	}
}

// Merge performs the login-time union of the session cart and the cookie
// cart. On key collision the session entry wins: the just-authenticated
// session is assumed more recent than a stale guest cookie.
func Merge(session, cookie Cart) Cart {
	out := make(Cart, len(session)+len(cookie))
	for id, e := range cookie {
		out[id] = Normalize(e)
	}
	for id, e := range session {
		out[id] = Normalize(e)
	}
	return out
}
