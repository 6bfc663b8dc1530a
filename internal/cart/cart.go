// Package cart parses and normalizes the carts clients submit. The server
// never stores a cart; the client owns it and sends it with each request.
package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const MaxLineQuantity = 999

// Reasons an entry is left out of a normalized cart.
const (
	ReasonInvalidID       = "invalid_id"
	ReasonInvalidQuantity = "invalid_quantity"
	ReasonNotFound        = "not_found"
	ReasonIDMismatch      = "id_mismatch"
	ReasonInvalidPrice    = "invalid_price"
	ReasonLookupFailed    = "lookup_failed"
)

// Line is a cart entry as sent by a client. Both fields are kept raw so
// that a malformed entry drops only itself rather than the whole request.
type Line struct {
	ID       json.RawMessage `json:"id"`
	Quantity json.RawMessage `json:"quantity,omitempty"`
}

type Item struct {
	ProductID int64 `json:"id"`
	Quantity  int   `json:"quantity"`
}

type Dropped struct {
	Ref    string `json:"id"`
	Reason string `json:"reason"`
}

// Cart is an ordered set of product references. Order of first insertion
// is preserved.
type Cart struct {
	items []Item
	index map[int64]int
}

func New() *Cart {
	return &Cart{index: make(map[int64]int)}
}

// Normalize merges duplicate product ids and drops invalid entries,
// reporting each drop with its reason.
func Normalize(lines []Line) (*Cart, []Dropped) {
	c := New()
	var dropped []Dropped

	for _, l := range lines {
		ref := rawRef(l.ID)

		id, ok := parseID(l.ID)
		if !ok {
			dropped = append(dropped, Dropped{Ref: ref, Reason: ReasonInvalidID})
			continue
		}

		qty, ok := parseQuantity(l.Quantity)
		if !ok {
			dropped = append(dropped, Dropped{Ref: ref, Reason: ReasonInvalidQuantity})
			continue
		}

		if err := c.Add(id, qty); err != nil {
			dropped = append(dropped, Dropped{Ref: ref, Reason: ReasonInvalidQuantity})
		}
	}

	return c, dropped
}

// Add merges qty into the entry for id.
func (c *Cart) Add(id int64, qty int) error {
	if id <= 0 {
		return fmt.Errorf("invalid product id %d", id)
	}
	if qty <= 0 {
		return fmt.Errorf("invalid quantity %d", qty)
	}

	if i, ok := c.index[id]; ok {
		merged := c.items[i].Quantity + qty
		if merged > MaxLineQuantity {
			return fmt.Errorf("quantity for product %d exceeds %d", id, MaxLineQuantity)
		}
		c.items[i].Quantity = merged
		return nil
	}

	if qty > MaxLineQuantity {
		return fmt.Errorf("quantity for product %d exceeds %d", id, MaxLineQuantity)
	}
	c.index[id] = len(c.items)
	c.items = append(c.items, Item{ProductID: id, Quantity: qty})
	return nil
}

func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

func parseID(raw json.RawMessage) (int64, bool) {
	s, ok := scalar(raw)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseQuantity(raw json.RawMessage) (int, bool) {
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return 1, true
	}
	s, ok := scalar(raw)
	if !ok {
		return 0, false
	}
	q, err := strconv.Atoi(s)
	if err != nil || q <= 0 {
		return 0, false
	}
	return q, true
}

// scalar returns the text of a JSON number or string.
func scalar(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return strings.TrimSpace(s), true
	}
	if raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9') {
		return string(raw), true
	}
	return "", false
}

func rawRef(raw json.RawMessage) string {
	if s, ok := scalar(raw); ok {
		return s
	}
	return string(bytes.TrimSpace(raw))
}
