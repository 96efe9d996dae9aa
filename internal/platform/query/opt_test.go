package query

import (
	"encoding/json"
	"testing"
)

func TestOpt_AbsentKey(t *testing.T) {
	var dst struct {
		Telefono Opt[string] `json:"telefono"`
	}
	if err := json.Unmarshal([]byte(`{}`), &dst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dst.Telefono.Set {
		t.Error("absent key must not be marked set")
	}
}

func TestOpt_ExplicitNull(t *testing.T) {
	var dst struct {
		Telefono Opt[string] `json:"telefono"`
	}
	if err := json.Unmarshal([]byte(`{"telefono": null}`), &dst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dst.Telefono.Set {
		t.Error("explicit null must be marked set")
	}
	if !dst.Telefono.Null() {
		t.Error("explicit null must report Null()")
	}
}

func TestOpt_Value(t *testing.T) {
	var dst struct {
		Telefono Opt[string] `json:"telefono"`
		Minutos  Opt[int]    `json:"minutos"`
	}
	if err := json.Unmarshal([]byte(`{"telefono": "+56 2 555 0100", "minutos": 45}`), &dst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dst.Telefono.Set || dst.Telefono.Value == nil || *dst.Telefono.Value != "+56 2 555 0100" {
		t.Errorf("unexpected telefono: %+v", dst.Telefono)
	}
	if !dst.Minutos.Set || dst.Minutos.Value == nil || *dst.Minutos.Value != 45 {
		t.Errorf("unexpected minutos: %+v", dst.Minutos)
	}
}

func TestOpt_TypeMismatch(t *testing.T) {
	var dst struct {
		Minutos Opt[int] `json:"minutos"`
	}
	if err := json.Unmarshal([]byte(`{"minutos": "soon"}`), &dst); err == nil {
		t.Error("expected error for mismatched value type")
	}
}

func TestSome(t *testing.T) {
	o := Some("hola")
	if !o.Set || o.Null() || *o.Value != "hola" {
		t.Errorf("unexpected opt: %+v", o)
	}
}
