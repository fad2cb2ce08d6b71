package validation

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
)

type phoneIn struct {
	Number   *string `json:"numero" validate:"omitempty,fone"`
	AreaCode *string `json:"ddd" validate:"omitempty,ddd"`
}

type addressIn struct {
	State *string `json:"estado" validate:"omitempty,uf"`
	CEP   *string `json:"cep" validate:"omitempty,cep"`
}

type userIn struct {
	Name      string      `json:"nome" validate:"max=10"`
	Email     string      `json:"email" validate:"required,email"`
	Addresses []addressIn `json:"enderecos" validate:"dive"`
	Phones    []phoneIn   `json:"telefones" validate:"dive"`
}

func str(s string) *string { return &s }

func newValidate() *validator.Validate {
	v := validator.New()
	Configure(v)
	return v
}

func TestToDetailsUsesJSONPaths(t *testing.T) {
	err := newValidate().Struct(userIn{
		Name:      "a very long name",
		Email:     "not-an-email",
		Addresses: []addressIn{{State: str("SP")}, {State: str("SPO"), CEP: str("0100100000")}},
		Phones:    []phoneIn{{Number: str("12345678901"), AreaCode: str("1a")}},
	})
	if err == nil {
		t.Fatal("expected validation errors")
	}
	got := ToDetails(err)
	want := map[string]string{
		"nome":                "must be at most 10 characters long",
		"email":               "must be a valid email",
		"enderecos[1].estado": "must be exactly 2 characters long",
		"enderecos[1].cep":    "must be at most 9 characters long",
		"telefones[0].numero": "must be at most 10 characters long",
		"telefones[0].ddd":    "must be numeric",
	}
	if len(got) != len(want) {
		t.Fatalf("ToDetails = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("ToDetails[%q] = %q, want %q (all: %v)", k, got[k], v, got)
		}
	}
}

func TestNilPointersAreSkipped(t *testing.T) {
	err := newValidate().Struct(userIn{Email: "a@x.com", Addresses: []addressIn{{}}, Phones: []phoneIn{{}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestToDetailsJSONErrors(t *testing.T) {
	var v userIn
	err := json.Unmarshal([]byte(`{"nome": 5}`), &v)
	if got := ToDetails(err); got["nome"] != "must be a string" {
		t.Fatalf("type error details = %v", got)
	}
	err = json.Unmarshal([]byte(`{"nome":`), &v)
	if got := ToDetails(err); got["payload"] == "" {
		t.Fatalf("syntax error details = %v", got)
	}
	if ToDetails(nil) != nil {
		t.Fatal("nil error should have no details")
	}
}
