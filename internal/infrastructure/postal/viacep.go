// Package postal resolves Brazilian postal codes (CEP) through ViaCEP.
package postal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/oksasatya/go-user-identity/internal/domain/entity"
	domerrors "github.com/oksasatya/go-user-identity/internal/domain/errors"
)

const op = "postal.Lookup"

// ViaCEP implements the postal lookup against {BaseURL}/ws/{cep}/json/.
type ViaCEP struct {
	BaseURL string
	Client  *http.Client
}

func NewViaCEP(baseURL string) ViaCEP {
	return ViaCEP{BaseURL: strings.TrimRight(baseURL, "/"), Client: &http.Client{Timeout: 3 * time.Second}}
}

// Normalize strips the optional hyphen and surrounding blanks. Anything that
// is not exactly eight digits afterwards is rejected.
func Normalize(cep string) (string, error) {
	cep = strings.ReplaceAll(strings.TrimSpace(cep), "-", "")
	if len(cep) != 8 {
		return "", domerrors.OpError{Op: op, Kind: domerrors.ErrInvalidInput, Msg: "postal code must have 8 digits"}
	}
	for _, r := range cep {
		if r < '0' || r > '9' {
			return "", domerrors.OpError{Op: op, Kind: domerrors.ErrInvalidInput, Msg: "postal code must have 8 digits"}
		}
	}
	return cep, nil
}

func (v ViaCEP) Lookup(ctx context.Context, cep string) (entity.PostalAddress, error) {
	cep, err := Normalize(cep)
	if err != nil {
		return entity.PostalAddress{}, err
	}
	if v.Client == nil {
		v.Client = &http.Client{Timeout: 3 * time.Second}
	}

	url := fmt.Sprintf("%s/ws/%s/json/", v.BaseURL, cep)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return entity.PostalAddress{}, err
	}
	resp, err := v.Client.Do(req)
	if err != nil {
		return entity.PostalAddress{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		return entity.PostalAddress{}, domerrors.OpError{Op: op, Kind: domerrors.ErrInvalidInput, Msg: "rejected by upstream"}
	}
	if resp.StatusCode != http.StatusOK {
		return entity.PostalAddress{}, fmt.Errorf("%s: upstream status %d", op, resp.StatusCode)
	}

	var body struct {
		CEP         string `json:"cep"`
		Logradouro  string `json:"logradouro"`
		Complemento string `json:"complemento"`
		Bairro      string `json:"bairro"`
		Localidade  string `json:"localidade"`
		UF          string `json:"uf"`
		// true on older deployments, "true" on newer ones
		Erro any `json:"erro"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return entity.PostalAddress{}, err
	}
	if body.Erro == true || body.Erro == "true" {
		return entity.PostalAddress{}, domerrors.NotFoundError{Op: op, Resource: "postal code"}
	}
	return entity.PostalAddress{
		PostalCode:   body.CEP,
		Street:       body.Logradouro,
		Complement:   body.Complemento,
		Neighborhood: body.Bairro,
		City:         body.Localidade,
		State:        body.UF,
	}, nil
}
