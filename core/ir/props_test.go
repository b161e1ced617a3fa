package ir

import (
	"encoding/json"
	"testing"
)

func TestPropValueAccessors(t *testing.T) {
	tests := []struct {
		name string
		v    PropValue
		typ  Type
	}{
		{"string", String("hello"), StringType},
		{"int", Int(42), IntType},
		{"float", Float(3.5), FloatType},
		{"bool", Bool(true), BoolType},
		{"list", List(Int(1), String("two")), ListType},
		{"map", MapValue(NewProperties()), MapType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.v.Type() != tt.typ {
				t.Errorf("Type() = %v, want %v", tt.v.Type(), tt.typ)
			}
		})
	}

	if s, ok := String("x").AsString(); !ok || s != "x" {
		t.Error("AsString failed on string value")
	}
	if _, ok := Int(1).AsString(); ok {
		t.Error("AsString should fail on int value")
	}
	if i, ok := Int(7).AsInt(); !ok || i != 7 {
		t.Error("AsInt failed on int value")
	}
	if f, ok := Float(2.5).AsFloat(); !ok || f != 2.5 {
		t.Error("AsFloat failed on float value")
	}
	if b, ok := Bool(true).AsBool(); !ok || !b {
		t.Error("AsBool failed on bool value")
	}
}

func TestPropValueEqual(t *testing.T) {
	nested := NewProperties()
	nested.Set("a", Int(1))

	tests := []struct {
		name string
		a, b PropValue
		want bool
	}{
		{"equal strings", String("x"), String("x"), true},
		{"different strings", String("x"), String("y"), false},
		{"int vs float", Int(1), Float(1), false},
		{"equal lists", List(Int(1), Bool(true)), List(Int(1), Bool(true)), true},
		{"list length mismatch", List(Int(1)), List(Int(1), Int(2)), false},
		{"list order matters", List(Int(1), Int(2)), List(Int(2), Int(1)), false},
		{"equal maps", MapValue(nested), MapValue(nested.Clone()), true},
		{"map vs empty map", MapValue(nested), MapValue(NewProperties()), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPropValueCloneIsDeep(t *testing.T) {
	inner := NewProperties()
	inner.Set("count", Int(1))
	original := List(String("a"), MapValue(inner))

	clone := original.Clone()
	if !clone.Equal(original) {
		t.Fatal("clone should equal original")
	}

	// Mutating the clone's nested map must not affect the original.
	items, _ := clone.AsList()
	m, _ := items[1].AsMap()
	m.Set("count", Int(99))

	origItems, _ := original.AsList()
	origMap, _ := origItems[1].AsMap()
	if origMap.GetInt("count", 0) != 1 {
		t.Error("mutating clone affected original")
	}
}

func TestPropertiesSetGetDelete(t *testing.T) {
	var p Properties // zero value is usable
	p.Set("level", Int(2))
	p.Set("url", String("https://example.com"))
	p.Set("level", Int(3)) // overwrite keeps one key

	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}
	if p.GetInt("level", 0) != 3 {
		t.Errorf("GetInt(level) = %d, want 3", p.GetInt("level", 0))
	}
	if !p.Contains("url") {
		t.Error("Contains(url) = false")
	}

	p.Delete("level")
	if p.Contains("level") {
		t.Error("Delete left key behind")
	}
	p.Delete("missing") // no-op
	if got := p.Keys(); len(got) != 1 || got[0] != "url" {
		t.Errorf("Keys() = %v, want [url]", got)
	}
}

func TestPropertiesKeyOrderPreserved(t *testing.T) {
	p := NewProperties()
	for _, k := range []string{"zeta", "alpha", "mid"} {
		p.Set(k, Int(1))
	}
	want := []string{"zeta", "alpha", "mid"}
	got := p.Keys()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Keys() = %v, want insertion order %v", got, want)
		}
	}
}

func TestPropertiesEqualIgnoresOrder(t *testing.T) {
	a := NewProperties()
	a.Set("x", Int(1))
	a.Set("y", Int(2))

	b := NewProperties()
	b.Set("y", Int(2))
	b.Set("x", Int(1))

	if !a.Equal(b) {
		t.Error("equality should ignore insertion order")
	}
}

func TestPropertiesJSONRoundtrip(t *testing.T) {
	nested := NewProperties()
	nested.Set("inner", String("value"))
	nested.Set("n", Float(0.5))

	p := NewProperties()
	p.Set("title", String("Doc"))
	p.Set("level", Int(3))
	p.Set("ratio", Float(1.0)) // integral float must survive as float
	p.Set("draft", Bool(false))
	p.Set("tags", List(String("a"), String("b"), Int(9)))
	p.Set("style:meta", MapValue(nested))

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var back Properties
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if !back.Equal(p) {
		t.Errorf("roundtrip mismatch:\n  in:  %s\n  out: %s", p.GoString(), back.GoString())
	}

	// Variant tags must survive, not just values.
	if v, _ := back.Get("ratio"); v.Type() != FloatType {
		t.Errorf("ratio decoded as %v, want Float", v.Type())
	}
	if v, _ := back.Get("level"); v.Type() != IntType {
		t.Errorf("level decoded as %v, want Int", v.Type())
	}
}

func TestPropertiesJSONKeyOrder(t *testing.T) {
	p := NewProperties()
	p.Set("b", Int(1))
	p.Set("a", Int(2))

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"b":1,"a":2}` {
		t.Errorf("Marshal = %s, want insertion order preserved", data)
	}
}

func TestPropValueJSONRejectsNull(t *testing.T) {
	var v PropValue
	if err := json.Unmarshal([]byte(`null`), &v); err == nil {
		t.Error("null should not decode into a property value")
	}
	var p Properties
	if err := json.Unmarshal([]byte(`{"k":null}`), &p); err == nil {
		t.Error("null member should not decode into properties")
	}
}

func TestPropertiesUnmarshalRejectsNonObject(t *testing.T) {
	var p Properties
	if err := json.Unmarshal([]byte(`[1,2]`), &p); err == nil {
		t.Error("array should not decode into properties")
	}
}

func TestGetterDefaults(t *testing.T) {
	p := NewProperties()
	p.Set("s", String("text"))

	if p.GetString("missing") != "" {
		t.Error("GetString default should be empty")
	}
	if p.GetInt("s", -1) != -1 {
		t.Error("GetInt on string value should return default")
	}
	if p.GetFloat("missing", 2.5) != 2.5 {
		t.Error("GetFloat default not returned")
	}
	if p.GetBool("missing") {
		t.Error("GetBool default should be false")
	}
}
