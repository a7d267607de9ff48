package catalog

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestID_UnmarshalAcceptsNumbersAndStrings(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want ID
	}{
		{"number", `{"id":7}`, "7"},
		{"string", `{"id":"p1"}`, "p1"},
		{"numeric string", `{"id":"12"}`, "12"},
		{"integral float", `{"id":1.0}`, "1"},
		{"exponent", `{"id":2e1}`, "20"},
		{"fraction", `{"id":1.5}`, "1.5"},
		{"null", `{"id":null}`, ""},
		{"missing", `{}`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var p Product
			if err := json.Unmarshal([]byte(tc.in), &p); err != nil {
				t.Fatalf("Unmarshal(%s) returned error: %v", tc.in, err)
			}
			if p.ID != tc.want {
				t.Fatalf("ID = %q, want %q", p.ID, tc.want)
			}
		})
	}
}

func TestID_UnmarshalRejectsObjects(t *testing.T) {
	var p Product
	if err := json.Unmarshal([]byte(`{"id":{"x":1}}`), &p); err == nil {
		t.Fatalf("Unmarshal returned nil error, want error")
	}
}

func TestID_MarshalKeepsWireType(t *testing.T) {
	cases := []struct {
		name string
		id   ID
		want string
	}{
		{"integer", "7", `7`},
		{"negative", "-3", `-3`},
		{"string", "p1", `"p1"`},
		{"leading zeros", "007", `"007"`},
		{"plus sign", "+1", `"+1"`},
		{"fraction", "1.5", `"1.5"`},
		{"overflow", "99999999999999999999", `"99999999999999999999"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := json.Marshal(Product{ID: tc.id, Title: "A"})
			if err != nil {
				t.Fatalf("Marshal returned error: %v", err)
			}
			var generic map[string]json.RawMessage
			if err := json.Unmarshal(raw, &generic); err != nil {
				t.Fatalf("Unmarshal returned error: %v", err)
			}
			if got := string(generic["id"]); got != tc.want {
				t.Fatalf("id encoded as %s, want %s", got, tc.want)
			}
		})
	}

	raw, err := json.Marshal(Product{Title: "new"})
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	var generic map[string]any
	_ = json.Unmarshal(raw, &generic)
	if _, ok := generic["id"]; ok {
		t.Fatalf("zero id should be omitted: %s", raw)
	}
}

func TestID_IntegralFloatRoundTripsAsNumber(t *testing.T) {
	var p Product
	if err := json.Unmarshal([]byte(`{"id":1.0}`), &p); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if string(raw) != `{"id":1}` {
		t.Fatalf("Marshal = %s, want {\"id\":1}", raw)
	}
}

func TestProduct_KeepsUnknownAttributes(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"untyped only", `{"id":1,"name":"A"}`},
		{"mixed", `{"id":"p9","title":"Lamp","price":0,"tags":["a","b"],"stock":{"n":3}}`},
		{"typed zero values", `{"id":2,"title":"","description":"","rating":null}`},
		{"full", `{"id":3,"title":"T","price":9.5,"description":"d","category":"c","image":"i","rating":{"rate":4.1,"count":2}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var p Product
			if err := json.Unmarshal([]byte(tc.in), &p); err != nil {
				t.Fatalf("Unmarshal returned error: %v", err)
			}
			raw, err := json.Marshal(p)
			if err != nil {
				t.Fatalf("Marshal returned error: %v", err)
			}
			if !jsonEqual(t, raw, []byte(tc.in)) {
				t.Fatalf("round trip = %s, want %s", raw, tc.in)
			}
		})
	}
}

func TestProduct_TypedFieldsOverrideExtra(t *testing.T) {
	p := Product{Title: "typed", Extra: map[string]json.RawMessage{
		"title": json.RawMessage(`"stale"`),
		"name":  json.RawMessage(`"B"`),
	}}
	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if !jsonEqual(t, raw, []byte(`{"title":"typed","name":"B"}`)) {
		t.Fatalf("Marshal = %s", raw)
	}
}

func jsonEqual(t *testing.T, a, b []byte) bool {
	t.Helper()
	var x, y any
	if err := json.Unmarshal(a, &x); err != nil {
		t.Fatalf("Unmarshal(%s) returned error: %v", a, err)
	}
	if err := json.Unmarshal(b, &y); err != nil {
		t.Fatalf("Unmarshal(%s) returned error: %v", b, err)
	}
	return reflect.DeepEqual(x, y)
}

func TestParseID(t *testing.T) {
	if _, err := ParseID("   "); err == nil {
		t.Fatalf("ParseID blank returned nil error")
	}
	id, err := ParseID(" 42 ")
	if err != nil || id != "42" {
		t.Fatalf("ParseID = %q, %v; want 42, nil", id, err)
	}
}

func TestCloneProducts_Independent(t *testing.T) {
	var src []Product
	if err := json.Unmarshal([]byte(`[{"id":1,"rating":{"rate":4.5,"count":3},"name":"A"}]`), &src); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	dup := CloneProducts(src)
	dup[0].Title = "changed"
	dup[0].Rating.Count = 99
	dup[0].Extra["name"][1] = 'Z'
	dup[0].Extra["added"] = json.RawMessage(`true`)
	if src[0].Title != "" || src[0].Rating.Count != 3 {
		t.Fatalf("clone shares state with source: %#v", src[0])
	}
	if string(src[0].Extra["name"]) != `"A"` || len(src[0].Extra) != 1 {
		t.Fatalf("clone shares Extra with source: %v", src[0].Extra)
	}
	if CloneProducts(nil) != nil {
		t.Fatalf("CloneProducts(nil) should be nil")
	}
}
