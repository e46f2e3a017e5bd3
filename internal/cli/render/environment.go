package render

import (
	"fmt"
	"io"

	"github.com/samber/lo"
	"github.com/steadifi/contract-harness/internal/domain/models"
	"github.com/steadifi/contract-harness/internal/usecase"
)

// SetupView is the structured form of a setup result
type SetupView struct {
	Network     string     `json:"network"`
	ChainID     uint64     `json:"chainId"`
	NodeStarted bool       `json:"nodeStarted"`
	Funded      []string   `json:"funded,omitempty"`
	Built       bool       `json:"built"`
	Codes       []CodeView `json:"codes"`
	StatePath   string     `json:"statePath"`
}

// EnvironmentRenderer renders setup and teardown results
type EnvironmentRenderer struct {
	out    io.Writer
	format Format
}

// NewEnvironmentRenderer creates a new environment renderer
func NewEnvironmentRenderer(out io.Writer, format Format) *EnvironmentRenderer {
	return &EnvironmentRenderer{out: out, format: format}
}

// Render renders the setup result
func (r *EnvironmentRenderer) Render(result *usecase.SetupEnvironmentResult) error {
	view := SetupView{
		Network:     result.Network,
		ChainID:     result.ChainID,
		NodeStarted: result.NodeStarted,
		Funded:      result.Funded,
		Built:       result.Built,
		Codes:       lo.Map(result.Codes, func(c *models.CodeInfo, _ int) CodeView { return codeView(c) }),
		StatePath:   result.StatePath,
	}
	if done, err := writeStructured(r.out, r.format, view); done {
		return err
	}

	headerStyle.Fprintf(r.out, "🌐 %s (chain %d)\n", titleCaser.String(view.Network), view.ChainID)
	if view.NodeStarted {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Local node started, %d wallets funded", len(view.Funded))))
	}
	if view.Built {
		fmt.Fprintln(r.out, FormatSuccess("Artifacts rebuilt"))
	}

	if len(view.Codes) == 0 {
		fmt.Fprintln(r.out, FormatWarning("No artifacts with bytecode were found"))
	} else {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Uploaded %d codes", len(view.Codes))))
		t := newTable("NAME", "CODE ID")
		for _, c := range view.Codes {
			t.AppendRow([]any{nameStyle.Sprint(c.Name), addressStyle.Sprint(c.CodeID)})
		}
		fmt.Fprintln(r.out, t.Render())
	}

	faintStyle.Fprintf(r.out, "State written to %s\n", view.StatePath)
	return nil
}

// RenderTeardown renders the teardown result
func (r *EnvironmentRenderer) RenderTeardown(result *usecase.TeardownEnvironmentResult) error {
	if done, err := writeStructured(r.out, r.format, result); done {
		return err
	}

	if result.NodeStopped {
		fmt.Fprintln(r.out, FormatSuccess("Local node stopped"))
	}
	if result.Purged {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Removed %s", result.StatePath)))
	} else {
		faintStyle.Fprintf(r.out, "State kept at %s\n", result.StatePath)
	}
	return nil
}
