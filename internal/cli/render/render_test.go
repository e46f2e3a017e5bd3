package render

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/fatih/color"
	"github.com/steadifi/contract-harness/internal/domain/models"
	"github.com/steadifi/contract-harness/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestFormatError(t *testing.T) {
	assert.Equal(t, "❌ Entry \"x\" not found", FormatError(`show: entry "x" not found`))
}

func TestFormatEther(t *testing.T) {
	wei, ok := new(big.Int).SetString("1500000000000000000", 10)
	require.True(t, ok)
	assert.Equal(t, "1.5000 ETH", FormatEther(wei))
	assert.Equal(t, "-", FormatEther(nil))
}

func TestRegistryRenderer_Text(t *testing.T) {
	var out bytes.Buffer
	result := &usecase.RegistryListResult{
		StatePath: "/p/.tmp_context",
		Codes:     []*models.CodeInfo{models.NewCodeInfo("0xc0de", "/p/out/Token.sol/Token.json")},
		Contracts: []*models.ContractInfo{models.NewContractInfo("Token_0", "0xc0de", "0x00000000000000000000000000000000000000aa")},
	}

	require.NoError(t, NewRegistryRenderer(&out, FormatText).Render(result))
	assert.Contains(t, out.String(), "Codes (1)")
	assert.Contains(t, out.String(), "Token_0")
	assert.Contains(t, out.String(), "0x00000000000000000000000000000000000000aa")
}

func TestRegistryRenderer_EntryWithoutInstances(t *testing.T) {
	var out bytes.Buffer
	result := &usecase.ShowEntryResult{Code: models.NewCodeInfo("0xc0de", "/p/out/Answer.sol/Answer.json")}

	require.NoError(t, NewRegistryRenderer(&out, FormatText).RenderEntry(result))
	assert.Contains(t, out.String(), "Code Answer")
	assert.Contains(t, out.String(), "No instances")
}

func TestRegistryRenderer_EmptyAndUnmatched(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewRegistryRenderer(&out, FormatText).Render(&usecase.RegistryListResult{StatePath: "/p/.tmp_context", Empty: true}))
	assert.Equal(t, "Registry is empty (/p/.tmp_context)\n", out.String())

	out.Reset()
	require.NoError(t, NewRegistryRenderer(&out, FormatText).Render(&usecase.RegistryListResult{StatePath: "/p/.tmp_context"}))
	assert.Equal(t, "No entries match the filter\n", out.String())
}
