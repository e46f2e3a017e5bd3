package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/steadifi/contract-harness/internal/domain/models"
	"github.com/steadifi/contract-harness/internal/usecase"
)

// InstantiateView is the structured form of an instantiation
type InstantiateView struct {
	Contract ContractView     `json:"contract"`
	Code     CodeView         `json:"code"`
	Tx       *models.TxResult `json:"tx"`
}

// InstantiateRenderer renders instantiation results
type InstantiateRenderer struct {
	out    io.Writer
	format Format
}

// NewInstantiateRenderer creates a new instantiate renderer
func NewInstantiateRenderer(out io.Writer, format Format) *InstantiateRenderer {
	return &InstantiateRenderer{out: out, format: format}
}

// Render renders the instantiated contract and its transaction
func (r *InstantiateRenderer) Render(result *usecase.InstantiateContractResult) error {
	view := InstantiateView{
		Contract: contractView(result.Contract),
		Code:     codeView(result.Code),
		Tx:       result.Tx,
	}
	if done, err := writeStructured(r.out, r.format, view); done {
		return err
	}

	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Instantiated %s", nameStyle.Sprint(view.Contract.Identifier))))
	fmt.Fprintf(r.out, "  Address: %s\n", addressStyle.Sprint(view.Contract.Address))
	fmt.Fprintf(r.out, "  Code:    %s (%s)\n", view.Code.Name, view.Code.CodeID)
	if view.Tx != nil {
		fmt.Fprintf(r.out, "  Tx:      %s (block %d, gas %d)\n", view.Tx.Hash.Hex(), view.Tx.BlockNumber, view.Tx.GasUsed)
		for _, ev := range view.Tx.Events {
			attrs := make([]string, 0, len(ev.Attributes))
			for _, a := range ev.Attributes {
				attrs = append(attrs, a.Key+"="+a.Value)
			}
			faintStyle.Fprintf(r.out, "    %s %s\n", ev.Type, strings.Join(attrs, " "))
		}
	}
	return nil
}
