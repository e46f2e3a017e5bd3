package harness_test

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/steadifi/contract-harness/internal/adapters/artifacts"
	"github.com/steadifi/contract-harness/internal/adapters/wallets"
	"github.com/steadifi/contract-harness/internal/domain"
	"github.com/steadifi/contract-harness/internal/domain/models"
	"github.com/steadifi/contract-harness/internal/harness"
	"github.com/steadifi/contract-harness/internal/logging"
	"github.com/steadifi/contract-harness/internal/registry"
	"github.com/steadifi/contract-harness/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokenArtifact only declares the constructor and balanceOf; transfer and
// mint resolve through the built-in token ABI.
const tokenArtifact = `{
	"abi": [
		{"type":"constructor","inputs":[{"name":"name","type":"string"},{"name":"supply","type":"uint256"}]},
		{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"holder","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
	],
	"bytecode": {"object": "0x600a600c600039600a6000f3602a60005260206000f3"}
}`

type fixture struct {
	ctx   *harness.Context
	chain *testutil.FakeChain
	store *testutil.MemoryStore
	path  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "out", "Token.sol")
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, "Token.json")
	require.NoError(t, os.WriteFile(path, []byte(tokenArtifact), 0644))

	chain := testutil.NewFakeChain()
	store := testutil.NewMemoryStore()
	log := logging.Discard()
	hc := harness.New(registry.New(store, log), chain, wallets.NewBook(), artifacts.NewLoader(log), log)
	return &fixture{ctx: hc, chain: chain, store: store, path: path}
}

func (f *fixture) wallet(t *testing.T, name string) *models.Wallet {
	t.Helper()
	w, err := f.ctx.GetTestWallet(name)
	require.NoError(t, err)
	return w
}

// deployToken uploads the token and instantiates it with supply credited to test1
func (f *fixture) deployToken(t *testing.T, suffix string, supply int64) *models.ContractInfo {
	t.Helper()
	ctx := context.Background()
	if _, err := f.ctx.GetCodeInfo("Token"); err != nil {
		_, _, err := f.ctx.StoreCode(ctx, f.wallet(t, "test1"), f.path)
		require.NoError(t, err)
	}
	contract, _, err := f.ctx.Instantiate(ctx, f.wallet(t, "test1"), "Token", suffix, "Harness Token", big.NewInt(supply))
	require.NoError(t, err)
	return contract
}

func TestContext_StoreCode(t *testing.T) {
	f := newFixture(t)

	code, tx, err := f.ctx.StoreCode(context.Background(), f.wallet(t, "test1"), f.path)
	require.NoError(t, err)
	assert.Equal(t, "Token", code.Name())
	assert.Equal(t, tx.ContractAddress.Hex(), code.CodeID())

	found, err := f.ctx.GetCodeInfo("Token")
	require.NoError(t, err)
	assert.True(t, found.Equal(code))
}

func TestContext_StoreCode_MissingArtifact(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.ctx.StoreCode(context.Background(), f.wallet(t, "test1"), filepath.Join(t.TempDir(), "Nope.json"))
	require.Error(t, err)
	assert.Equal(t, 0, f.chain.Calls("StoreCode"))
}

func TestContext_Instantiate(t *testing.T) {
	f := newFixture(t)

	first := f.deployToken(t, "", 1000)
	second := f.deployToken(t, "", 1000)
	named := f.deployToken(t, "_ANDR", 1000)

	assert.Equal(t, "Token_0", first.Identifier())
	assert.Equal(t, "Token_1", second.Identifier())
	assert.Equal(t, "Token_ANDR", named.Identifier())
	assert.NotEqual(t, first.Address(), second.Address())

	_, _, err := f.ctx.Instantiate(context.Background(), f.wallet(t, "test1"), "Tokn", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestContext_TokenFlows(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	token := f.deployToken(t, "", 1000).Identifier()
	test1, test2, test3 := f.wallet(t, "test1"), f.wallet(t, "test2"), f.wallet(t, "test3")

	balance, err := f.ctx.TokenBalance(ctx, test1.Address(), token)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), balance)

	t.Run("send", func(t *testing.T) {
		tx, err := f.ctx.SendTokens(ctx, test1, test2.Address(), big.NewInt(250), token)
		require.NoError(t, err)
		assert.Equal(t, []string{"250"}, tx.AttributeValues("Transfer", "value"))

		balance, err := f.ctx.TokenBalance(ctx, test2.Address(), token)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(250), balance)
	})

	t.Run("mint by minter", func(t *testing.T) {
		_, err := f.ctx.MintTokens(ctx, test1, test3.Address(), big.NewInt(40), token)
		require.NoError(t, err)

		balance, err := f.ctx.TokenBalance(ctx, test3.Address(), token)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(40), balance)
	})

	t.Run("mint by anyone else fails", func(t *testing.T) {
		_, err := f.ctx.MintTokens(ctx, test2, test2.Address(), big.NewInt(1), token)
		assert.ErrorIs(t, err, domain.ErrTxFailed)
	})

	t.Run("by address", func(t *testing.T) {
		contract, err := f.ctx.GetContractInfo(token)
		require.NoError(t, err)
		balance, err := f.ctx.TokenBalance(ctx, test2.Address(), contract.Address())
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(250), balance)
	})
}

func TestContext_UnknownTargets(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.deployToken(t, "", 1)

	_, err := f.ctx.Query(ctx, "Tokn_0", "balanceOf", common.Address{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.ctx.Query(ctx, "Token_0", "allowance", common.Address{}, common.Address{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `method "allowance" not found`)
}

func TestContext_Native(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	test1, test2 := f.wallet(t, "test1"), f.wallet(t, "test2")
	f.chain.SetBalance(test1.Address(), big.NewInt(1_000))

	tx, err := f.ctx.SendNative(ctx, test1, test2.Address(), big.NewInt(300))
	require.NoError(t, err)
	assert.Equal(t, []string{test1.Address().Hex()}, tx.AttributeValues("transfer", "sender"))
	assert.Equal(t, []string{"300"}, tx.AttributeValues("transfer", "amount"))

	balance, err := f.ctx.NativeBalance(ctx, test2.Address())
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(300), balance)

	_, err = f.ctx.SendNative(ctx, test2, test1.Address(), big.NewInt(301))
	assert.ErrorIs(t, err, domain.ErrTxFailed)
}

func TestContext_ClosePersists(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.deployToken(t, "_main", 1)

	require.NoError(t, f.ctx.Close(ctx))
	assert.True(t, f.chain.Closed)

	reloaded, err := registry.Open(ctx, f.store, logging.Discard())
	require.NoError(t, err)
	_, err = reloaded.GetContractInfo("Token_main")
	assert.NoError(t, err)
}

func TestInstance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": "0x7a69"})
	}))
	defer server.Close()

	t.Setenv("USE_LOCAL_DEFAULT", "FALSE")
	t.Setenv("CLIENT_URL", server.URL)
	t.Setenv("CHAIN_ID", "31337")
	t.Setenv("HARNESS_STATE_FILE", filepath.Join(t.TempDir(), ".tmp_context"))

	first, err := harness.Instance()
	require.NoError(t, err)
	second, err := harness.Instance()
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Empty(t, first.Codes())
}
