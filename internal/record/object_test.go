package record

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecode_PreservesKeyOrder(t *testing.T) {
	v, err := Decode([]byte(`{"network_size":100,"success_rate":0.97,"avg_hops":5.3,"avg_stretch":1.8}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	obj, ok := v.(*Object)
	if !ok {
		t.Fatalf("got %T, want *Object", v)
	}
	want := []string{"network_size", "success_rate", "avg_hops", "avg_stretch"}
	if diff := cmp.Diff(want, obj.Keys()); diff != "" {
		t.Errorf("key order mismatch (-want +got):\n%s", diff)
	}
	sr, _ := obj.Get("success_rate")
	if sr != json.Number("0.97") {
		t.Errorf("success_rate = %#v, want json.Number(0.97)", sr)
	}
}

func TestDecode_NestedAndArrays(t *testing.T) {
	v, err := Decode([]byte(`{"config":{"seed":42,"network_sizes":[100,300]},"results":[{"b":1,"a":2}]}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	root := v.(*Object)
	cfg, _ := root.Get("config")
	if got := cfg.(*Object).Keys(); !cmp.Equal(got, []string{"seed", "network_sizes"}) {
		t.Errorf("config keys = %v", got)
	}
	res, _ := root.Get("results")
	arr := res.([]any)
	if len(arr) != 1 {
		t.Fatalf("len(results) = %d", len(arr))
	}
	if got := arr[0].(*Object).Keys(); !cmp.Equal(got, []string{"b", "a"}) {
		t.Errorf("result keys = %v, want [b a]", got)
	}
}

func TestDecode_Errors(t *testing.T) {
	for _, in := range []string{``, `{"a":`, `{"a":1} {"b":2}`, `[1,2`} {
		if _, err := Decode([]byte(in)); err == nil {
			t.Errorf("Decode(%q) should fail", in)
		}
	}
}

func TestObject_SetKeepsPosition(t *testing.T) {
	o := ObjectOf("topology_type", "Grid", "success_rate", 0.9)
	o.Set("network_size", 100)
	o.Set("topology_type", "Random")

	if diff := cmp.Diff([]string{"topology_type", "success_rate", "network_size"}, o.Keys()); diff != "" {
		t.Errorf("keys mismatch:\n%s", diff)
	}
	v, _ := o.Get("topology_type")
	if v != "Random" {
		t.Errorf("topology_type = %v, want Random", v)
	}
}

func TestObject_MarshalRoundTrip(t *testing.T) {
	src := `{"z":1,"a":{"y":"x","b":[true,null]},"m":2.50}`
	var o Object
	if err := json.Unmarshal([]byte(src), &o); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	out, err := json.Marshal(&o)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != src {
		t.Errorf("round trip = %s, want %s", out, src)
	}
}

func TestObject_CloneIsIndependent(t *testing.T) {
	o := ObjectOf("a", 1)
	c := o.Clone()
	c.Set("b", 2)
	if o.Has("b") {
		t.Error("clone mutation leaked into original")
	}
	if c.Len() != 2 {
		t.Errorf("clone Len = %d, want 2", c.Len())
	}
}

func TestObject_NilSafe(t *testing.T) {
	var o *Object
	if o.Len() != 0 || o.Has("x") || o.Keys() != nil {
		t.Error("nil Object should behave as empty")
	}
	b, err := json.Marshal(o)
	if err != nil || string(b) != "null" {
		t.Errorf("Marshal(nil) = %s, %v", b, err)
	}
}
