package render

import (
	"fmt"
	"io"

	"github.com/steadifi/contract-harness/internal/usecase"
)

// WalletView is the structured form of a test wallet
type WalletView struct {
	Name    string `json:"name" yaml:"name"`
	Address string `json:"address" yaml:"address"`
	Balance string `json:"balance,omitempty" yaml:"balance,omitempty"`
}

// WalletsRenderer renders the test wallet list
type WalletsRenderer struct {
	out    io.Writer
	format Format
}

// NewWalletsRenderer creates a new wallets renderer
func NewWalletsRenderer(out io.Writer, format Format) *WalletsRenderer {
	return &WalletsRenderer{out: out, format: format}
}

// Render renders every wallet, with balances when they were queried
func (r *WalletsRenderer) Render(result *usecase.ListWalletsResult) error {
	views := make([]WalletView, 0, len(result.Wallets))
	withBalances := false
	for _, w := range result.Wallets {
		v := WalletView{Name: w.Name, Address: w.Address.Hex()}
		if w.Balance != nil {
			v.Balance = w.Balance.String()
			withBalances = true
		}
		views = append(views, v)
	}
	if done, err := writeStructured(r.out, r.format, views); done {
		return err
	}

	headers := []string{"NAME", "ADDRESS"}
	if withBalances {
		headers = append(headers, "BALANCE")
	}
	t := newTable(headers...)
	for i, w := range result.Wallets {
		row := []any{nameStyle.Sprint(views[i].Name), addressStyle.Sprint(views[i].Address)}
		if withBalances {
			row = append(row, FormatEther(w.Balance))
		}
		t.AppendRow(row)
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}
