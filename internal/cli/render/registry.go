package render

import (
	"fmt"
	"io"

	"github.com/samber/lo"
	"github.com/steadifi/contract-harness/internal/domain/models"
	"github.com/steadifi/contract-harness/internal/usecase"
)

// CodeView is the structured form of a code entry
type CodeView struct {
	Name         string `json:"name" yaml:"name"`
	CodeID       string `json:"codeId" yaml:"code_id"`
	ArtifactPath string `json:"artifactPath" yaml:"artifact_path"`
}

// ContractView is the structured form of a contract entry
type ContractView struct {
	Identifier string `json:"identifier" yaml:"identifier"`
	CodeID     string `json:"codeId" yaml:"code_id"`
	Address    string `json:"address" yaml:"address"`
}

// RegistryView is the structured form of a registry listing
type RegistryView struct {
	StatePath string         `json:"statePath" yaml:"state_path"`
	Codes     []CodeView     `json:"codes" yaml:"codes"`
	Contracts []ContractView `json:"contracts" yaml:"contracts"`
}

// EntryView is the structured form of a single resolved entry
type EntryView struct {
	Code      *CodeView      `json:"code,omitempty" yaml:"code,omitempty"`
	Contract  *ContractView  `json:"contract,omitempty" yaml:"contract,omitempty"`
	Instances []ContractView `json:"instances,omitempty" yaml:"instances,omitempty"`
}

func codeView(c *models.CodeInfo) CodeView {
	return CodeView{Name: c.Name(), CodeID: c.CodeID(), ArtifactPath: c.ArtifactPath()}
}

func contractView(c *models.ContractInfo) ContractView {
	return ContractView{Identifier: c.Identifier(), CodeID: c.CodeID(), Address: c.Address()}
}

func contractViews(contracts []*models.ContractInfo) []ContractView {
	return lo.Map(contracts, func(c *models.ContractInfo, _ int) ContractView { return contractView(c) })
}

// RegistryRenderer renders registry listings and entries
type RegistryRenderer struct {
	out    io.Writer
	format Format
}

// NewRegistryRenderer creates a new registry renderer
func NewRegistryRenderer(out io.Writer, format Format) *RegistryRenderer {
	return &RegistryRenderer{out: out, format: format}
}

// Render renders a registry listing
func (r *RegistryRenderer) Render(result *usecase.RegistryListResult) error {
	view := RegistryView{
		StatePath: result.StatePath,
		Codes:     lo.Map(result.Codes, func(c *models.CodeInfo, _ int) CodeView { return codeView(c) }),
		Contracts: contractViews(result.Contracts),
	}
	if done, err := writeStructured(r.out, r.format, view); done {
		return err
	}

	if result.Empty {
		fmt.Fprintf(r.out, "Registry is empty (%s)\n", result.StatePath)
		return nil
	}
	if len(view.Codes) == 0 && len(view.Contracts) == 0 {
		fmt.Fprintln(r.out, "No entries match the filter")
		return nil
	}

	faintStyle.Fprintf(r.out, "State file: %s\n\n", result.StatePath)

	headerStyle.Fprintf(r.out, "Codes (%d)\n", len(view.Codes))
	codes := newTable("NAME", "CODE ID", "ARTIFACT")
	for _, c := range view.Codes {
		codes.AppendRow([]any{nameStyle.Sprint(c.Name), addressStyle.Sprint(c.CodeID), faintStyle.Sprint(c.ArtifactPath)})
	}
	fmt.Fprintln(r.out, codes.Render())
	fmt.Fprintln(r.out)

	headerStyle.Fprintf(r.out, "Contracts (%d)\n", len(view.Contracts))
	if len(view.Contracts) == 0 {
		faintStyle.Fprintln(r.out, "  none instantiated")
		return nil
	}
	contracts := newTable("IDENTIFIER", "ADDRESS", "CODE ID")
	for _, c := range view.Contracts {
		contracts.AppendRow([]any{nameStyle.Sprint(c.Identifier), addressStyle.Sprint(c.Address), faintStyle.Sprint(c.CodeID)})
	}
	fmt.Fprintln(r.out, contracts.Render())
	return nil
}

// RenderEntry renders a single code or contract
func (r *RegistryRenderer) RenderEntry(result *usecase.ShowEntryResult) error {
	var view EntryView
	if result.Code != nil {
		cv := codeView(result.Code)
		view.Code = &cv
	}
	if result.Contract != nil {
		cv := contractView(result.Contract)
		view.Contract = &cv
	} else {
		view.Instances = contractViews(result.Contracts)
	}
	if done, err := writeStructured(r.out, r.format, view); done {
		return err
	}

	if view.Contract != nil {
		nameStyle.Fprintf(r.out, "Contract %s\n", view.Contract.Identifier)
		fmt.Fprintf(r.out, "  Address:  %s\n", addressStyle.Sprint(view.Contract.Address))
		fmt.Fprintf(r.out, "  Code ID:  %s\n", view.Contract.CodeID)
		if view.Code != nil {
			fmt.Fprintf(r.out, "  Code:     %s\n", view.Code.Name)
			fmt.Fprintf(r.out, "  Artifact: %s\n", faintStyle.Sprint(view.Code.ArtifactPath))
		} else {
			fmt.Fprintln(r.out, FormatWarning("code id is not in the registry"))
		}
		return nil
	}

	nameStyle.Fprintf(r.out, "Code %s\n", view.Code.Name)
	fmt.Fprintf(r.out, "  Code ID:  %s\n", addressStyle.Sprint(view.Code.CodeID))
	fmt.Fprintf(r.out, "  Artifact: %s\n", faintStyle.Sprint(view.Code.ArtifactPath))
	if len(view.Instances) == 0 {
		faintStyle.Fprintln(r.out, "  No instances")
		return nil
	}
	fmt.Fprintf(r.out, "  Instances (%d):\n", len(view.Instances))
	for _, c := range view.Instances {
		fmt.Fprintf(r.out, "    %s  %s\n", c.Identifier, addressStyle.Sprint(c.Address))
	}
	return nil
}
