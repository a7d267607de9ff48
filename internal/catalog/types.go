package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ID identifies a product. The remote API uses numeric ids, but string ids are
// accepted too so the client works against catalogs that key by string.
type ID string

// ParseID normalizes user input into an ID.
func ParseID(raw string) (ID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("product id is empty")
	}
	return ID(trimmed), nil
}

// String returns the canonical form used in URLs and comparisons.
func (id ID) String() string { return string(id) }

// IsZero reports whether the id is unset, as on a product not yet created.
func (id ID) IsZero() bool { return id == "" }

// integer reports whether id is the canonical decimal form of an int64, the
// only form that is written back to the wire as a JSON number.
func (id ID) integer() bool {
	n, err := strconv.ParseInt(string(id), 10, 64)
	return err == nil && strconv.FormatInt(n, 10) == string(id)
}

// MarshalJSON writes integer ids as JSON numbers so the server sees the same
// type it handed out. Anything else is a JSON string.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.integer() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts a JSON number or string. Integral numbers such as 1.0
// are stored in canonical form so they encode back as numbers.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id: %w", err)
	}
	*id = ID(canonicalNumber(n))
	return nil
}

func canonicalNumber(n json.Number) string {
	if v, err := n.Int64(); err == nil {
		return strconv.FormatInt(v, 10)
	}
	if f, err := n.Float64(); err == nil && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return n.String()
}

// Keys of the attributes Product types. Everything else lands in Extra.
var productKeys = map[string]struct{}{
	"id": {}, "title": {}, "price": {}, "description": {}, "category": {}, "image": {}, "rating": {},
}

// Product mirrors a catalog entry. Only ID is interpreted by this module. The
// typed fields are the attributes the UI shows; any other attribute the API
// sends is kept verbatim in Extra and written back on encode.
type Product struct {
	ID          ID
	Title       string
	Price       float64
	Description string
	Category    string
	Image       string
	Rating      *Rating

	// Extra holds the attributes without a typed field, as received.
	Extra map[string]json.RawMessage

	// sent records which typed keys the server included, so a zero value the
	// server sent is written back and one it never sent stays absent.
	sent map[string]struct{}
}

// Rating is the aggregate review score attached to a product.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

type productWire struct {
	ID          ID      `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      *Rating `json:"rating"`
}

// UnmarshalJSON decodes the typed attributes and keeps the rest in Extra.
func (p *Product) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var w productWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*p = Product{
		ID:          w.ID,
		Title:       w.Title,
		Price:       w.Price,
		Description: w.Description,
		Category:    w.Category,
		Image:       w.Image,
		Rating:      w.Rating,
	}
	for k, v := range fields {
		if _, ok := productKeys[k]; ok {
			if p.sent == nil {
				p.sent = make(map[string]struct{}, len(productKeys))
			}
			p.sent[k] = struct{}{}
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]json.RawMessage)
		}
		p.Extra[k] = append(json.RawMessage(nil), v...)
	}
	return nil
}

// MarshalJSON writes Extra plus every typed attribute that is set or that the
// server sent. A zero ID is always omitted.
func (p Product) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+len(productKeys))
	for k, v := range p.Extra {
		if _, ok := productKeys[k]; ok {
			continue
		}
		out[k] = v
	}
	if !p.ID.IsZero() {
		out["id"] = p.ID
	}
	p.put(out, "title", p.Title, p.Title != "")
	p.put(out, "price", p.Price, p.Price != 0)
	p.put(out, "description", p.Description, p.Description != "")
	p.put(out, "category", p.Category, p.Category != "")
	p.put(out, "image", p.Image, p.Image != "")
	p.put(out, "rating", p.Rating, p.Rating != nil)
	return json.Marshal(out)
}

func (p Product) put(out map[string]any, key string, v any, set bool) {
	if _, ok := p.sent[key]; ok || set {
		out[key] = v
	}
}

// Clone returns a copy of p that shares nothing with it.
func (p Product) Clone() Product {
	if p.Rating != nil {
		r := *p.Rating
		p.Rating = &r
	}
	if p.Extra != nil {
		extra := make(map[string]json.RawMessage, len(p.Extra))
		for k, v := range p.Extra {
			extra[k] = append(json.RawMessage(nil), v...)
		}
		p.Extra = extra
	}
	if p.sent != nil {
		sent := make(map[string]struct{}, len(p.sent))
		for k := range p.sent {
			sent[k] = struct{}{}
		}
		p.sent = sent
	}
	return p
}

// CloneProducts copies a product list. Each entry is cloned so the copy shares
// nothing with the source.
func CloneProducts(items []Product) []Product {
	if items == nil {
		return nil
	}
	dup := make([]Product, len(items))
	for i := range items {
		dup[i] = items[i].Clone()
	}
	return dup
}
