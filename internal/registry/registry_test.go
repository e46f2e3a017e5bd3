package registry

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/steadifi/contract-harness/internal/domain"
	"github.com/steadifi/contract-harness/internal/domain/models"
	"github.com/steadifi/contract-harness/internal/logging"
	"github.com/steadifi/contract-harness/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (*Registry, *testutil.MemoryStore) {
	t.Helper()
	store := testutil.NewMemoryStore()
	return New(store, logging.Discard()), store
}

func TestRegistry_AddCodeInfo(t *testing.T) {
	t.Run("derives name and stores entry", func(t *testing.T) {
		reg, _ := newTestRegistry(t)

		info, err := reg.AddCodeInfo("1", "/artifacts/token.wasm")
		require.NoError(t, err)
		assert.Equal(t, "token", info.Name())

		got, err := reg.GetCodeInfo("token")
		require.NoError(t, err)
		assert.Equal(t, "1", got.CodeID())
		assert.Equal(t, info.ArtifactPath(), got.ArtifactPath())
	})

	t.Run("identical re-add is idempotent", func(t *testing.T) {
		reg, _ := newTestRegistry(t)

		first, err := reg.AddCodeInfo("1", "/artifacts/token.wasm")
		require.NoError(t, err)
		second, err := reg.AddCodeInfo("1", "/artifacts/./token.wasm")
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Len(t, reg.Codes(), 1)
	})

	t.Run("different code id conflicts", func(t *testing.T) {
		reg, _ := newTestRegistry(t)

		_, err := reg.AddCodeInfo("1", "/artifacts/token.wasm")
		require.NoError(t, err)
		_, err = reg.AddCodeInfo("2", "/artifacts/token.wasm")
		assert.ErrorIs(t, err, domain.ErrConflict)

		got, err := reg.GetCodeInfo("token")
		require.NoError(t, err)
		assert.Equal(t, "1", got.CodeID())
	})

	t.Run("different path with same name conflicts", func(t *testing.T) {
		reg, _ := newTestRegistry(t)

		_, err := reg.AddCodeInfo("1", "/artifacts/token.wasm")
		require.NoError(t, err)
		_, err = reg.AddCodeInfo("1", "/release/token.wasm")
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Len(t, reg.Codes(), 1)
	})
}

func TestRegistry_GetCodeInfo_NotFound(t *testing.T) {
	reg, _ := newTestRegistry(t)
	_, err := reg.AddCodeInfo("1", "/artifacts/token.wasm")
	require.NoError(t, err)

	_, err = reg.GetCodeInfo("tokn")
	require.ErrorIs(t, err, domain.ErrNotFound)

	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, []string{"token"}, nf.Suggestions)
	assert.Len(t, reg.Codes(), 1)
}

func TestRegistry_GetCodeInfoByID(t *testing.T) {
	reg, _ := newTestRegistry(t)
	_, err := reg.AddCodeInfo("0xc0de", "/artifacts/token.wasm")
	require.NoError(t, err)

	info, err := reg.GetCodeInfoByID("0xc0de")
	require.NoError(t, err)
	assert.Equal(t, "token", info.Name())

	_, err = reg.GetCodeInfoByID("0xbad")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegistry_GetCodeInfoByIDSharedID(t *testing.T) {
	reg, _ := newTestRegistry(t)
	for _, path := range []string{"/artifacts/zeta.wasm", "/artifacts/alpha.wasm", "/artifacts/mid.wasm"} {
		_, err := reg.AddCodeInfo("0xc0de", path)
		require.NoError(t, err)
	}

	for i := 0; i < 20; i++ {
		info, err := reg.GetCodeInfoByID("0xc0de")
		require.NoError(t, err)
		assert.Equal(t, "alpha", info.Name())
	}
}

func TestRegistry_AddContractInfo(t *testing.T) {
	t.Run("probes suffixes in order", func(t *testing.T) {
		reg, _ := newTestRegistry(t)
		_, err := reg.AddCodeInfo("1", "/artifacts/token.wasm")
		require.NoError(t, err)

		first, err := reg.AddContractInfo("token", "0xaaa")
		require.NoError(t, err)
		assert.Equal(t, "token_0", first.Identifier())
		assert.Equal(t, "1", first.CodeID())

		second, err := reg.AddContractInfo("token", "0xbbb")
		require.NoError(t, err)
		assert.Equal(t, "token_1", second.Identifier())
	})

	t.Run("fills the lowest gap", func(t *testing.T) {
		reg, _ := newTestRegistry(t)
		_, err := reg.AddCodeInfo("1", "/artifacts/token.wasm")
		require.NoError(t, err)
		_, err = reg.AddContractInfoWithSuffix("token", "0xbbb", "_1")
		require.NoError(t, err)

		info, err := reg.AddContractInfo("token", "0xaaa")
		require.NoError(t, err)
		assert.Equal(t, "token_0", info.Identifier())

		info, err = reg.AddContractInfo("token", "0xccc")
		require.NoError(t, err)
		assert.Equal(t, "token_2", info.Identifier())
	})

	t.Run("other names do not consume suffixes", func(t *testing.T) {
		reg, _ := newTestRegistry(t)
		_, err := reg.AddCodeInfo("1", "/artifacts/token.wasm")
		require.NoError(t, err)
		_, err = reg.AddCodeInfo("2", "/artifacts/market.wasm")
		require.NoError(t, err)

		_, err = reg.AddContractInfo("market", "0x1")
		require.NoError(t, err)
		info, err := reg.AddContractInfo("token", "0x2")
		require.NoError(t, err)
		assert.Equal(t, "token_0", info.Identifier())
	})

	t.Run("unknown code fails without mutation", func(t *testing.T) {
		reg, _ := newTestRegistry(t)

		_, err := reg.AddContractInfo("foo", "0xaaa")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Empty(t, reg.Contracts())
	})
}

func TestRegistry_AddContractInfoWithSuffix(t *testing.T) {
	reg, _ := newTestRegistry(t)
	_, err := reg.AddCodeInfo("1", "/artifacts/cw20_base.wasm")
	require.NoError(t, err)

	info, err := reg.AddContractInfoWithSuffix("cw20_base", "0xaaa", "_ANDR")
	require.NoError(t, err)
	assert.Equal(t, "cw20_base_ANDR", info.Identifier())

	t.Run("identical re-add is idempotent", func(t *testing.T) {
		again, err := reg.AddContractInfoWithSuffix("cw20_base", "0xaaa", "_ANDR")
		require.NoError(t, err)
		assert.Same(t, info, again)
	})

	t.Run("different address conflicts", func(t *testing.T) {
		_, err := reg.AddContractInfoWithSuffix("cw20_base", "0xbbb", "_ANDR")
		assert.ErrorIs(t, err, domain.ErrConflict)

		got, err := reg.GetContractInfo("cw20_base_ANDR")
		require.NoError(t, err)
		assert.Equal(t, "0xaaa", got.Address())
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := reg.AddContractInfoWithSuffix("vault", "0xaaa", "_x")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRegistry_GetContractInfo(t *testing.T) {
	reg, _ := newTestRegistry(t)
	_, err := reg.AddCodeInfo("1", "/artifacts/token.wasm")
	require.NoError(t, err)
	_, err = reg.AddContractInfo("token", "0xAbC")
	require.NoError(t, err)

	_, err = reg.GetContractInfo("token_1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	info, err := reg.GetContractInfoByAddress("0xabc")
	require.NoError(t, err)
	assert.Equal(t, "token_0", info.Identifier())

	_, err = reg.GetContractInfoByAddress("0xdef")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegistry_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	reg, store := newTestRegistry(t)

	_, err := reg.AddCodeInfo("1", "/artifacts/token.wasm")
	require.NoError(t, err)
	_, err = reg.AddContractInfo("token", "0xfirst")
	require.NoError(t, err)
	_, err = reg.AddContractInfo("token", "0xsecond")
	require.NoError(t, err)
	require.NoError(t, reg.Save(ctx))

	reloaded := New(store, logging.Discard())
	require.NoError(t, reloaded.Load(ctx))

	info, err := reloaded.GetContractInfo("token_1")
	require.NoError(t, err)
	assert.Equal(t, "0xsecond", info.Address())
	assert.Equal(t, "1", info.CodeID())

	code, err := reloaded.GetCodeInfo("token")
	require.NoError(t, err)
	assert.Equal(t, "1", code.CodeID())

	assert.Equal(t, reg.Snapshot().Codes(), reloaded.Snapshot().Codes())
	assert.Equal(t, reg.Snapshot().Contracts(), reloaded.Snapshot().Contracts())
}

func TestRegistry_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("missing state", func(t *testing.T) {
		reg, _ := newTestRegistry(t)
		assert.ErrorIs(t, reg.Load(ctx), domain.ErrMalformedState)
	})

	t.Run("malformed state", func(t *testing.T) {
		reg := New(testutil.NewMemoryStoreWith(`{"codes": {`), logging.Discard())
		assert.ErrorIs(t, reg.Load(ctx), domain.ErrMalformedState)
	})

	t.Run("truncated state through Open", func(t *testing.T) {
		store := testutil.NewMemoryStoreWith(`{"codes":{"token":{"codeId":"1","wasmPath":"/a/token.wasm"}},"contracts":{`)
		_, err := Open(ctx, store, logging.Discard())
		assert.ErrorIs(t, err, domain.ErrMalformedState)
	})

	t.Run("contract referencing unknown code", func(t *testing.T) {
		store := testutil.NewMemoryStoreWith(`{"codes": {}, "contracts": {"token_0": {"identifier": "token_0", "codeId": "9", "contractAddress": "0x1"}}}`)
		reg := New(store, logging.Discard())
		assert.ErrorIs(t, reg.Load(ctx), domain.ErrMalformedState)
		assert.Empty(t, reg.Contracts())
	})

	t.Run("conflicting state leaves registry unchanged", func(t *testing.T) {
		store := testutil.NewMemoryStoreWith(`{
			"codes": {
				"token": {"codeId": "2", "wasmPath": "/artifacts/token.wasm"},
				"market": {"codeId": "3", "wasmPath": "/artifacts/market.wasm"}
			},
			"contracts": {}
		}`)
		reg := New(store, logging.Discard())
		_, err := reg.AddCodeInfo("1", "/artifacts/token.wasm")
		require.NoError(t, err)

		assert.ErrorIs(t, reg.Load(ctx), domain.ErrConflict)
		assert.Len(t, reg.Codes(), 1)
		_, err = reg.GetCodeInfo("market")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("merges into existing entries", func(t *testing.T) {
		store := testutil.NewMemoryStoreWith(`{
			"codes": {"market": {"codeId": "3", "wasmPath": "/artifacts/market.wasm"}},
			"contracts": {"market_0": {"identifier": "market_0", "codeId": "3", "contractAddress": "0x3"}}
		}`)
		reg := New(store, logging.Discard())
		_, err := reg.AddCodeInfo("1", "/artifacts/token.wasm")
		require.NoError(t, err)

		require.NoError(t, reg.Load(ctx))
		assert.Len(t, reg.Codes(), 2)
		assert.Len(t, reg.Contracts(), 1)
	})
}

func TestRegistry_Merge(t *testing.T) {
	reg, _ := newTestRegistry(t)
	_, err := reg.AddCodeInfo("1", "/artifacts/token.wasm")
	require.NoError(t, err)

	t.Run("rejects key that does not match path", func(t *testing.T) {
		snap := models.NewRegistrySnapshot(map[string]models.CodeInfoData{
			"other": {CodeID: "5", WasmPath: "/artifacts/vault.wasm"},
		}, nil)
		assert.ErrorIs(t, reg.Merge(snap), domain.ErrMalformedState)
	})

	t.Run("contract may reference existing code", func(t *testing.T) {
		snap := models.NewRegistrySnapshot(nil, map[string]models.ContractInfoData{
			"token_7": {Identifier: "token_7", CodeID: "1", ContractAddress: "0x7"},
		})
		require.NoError(t, reg.Merge(snap))

		info, err := reg.GetContractInfo("token_7")
		require.NoError(t, err)
		assert.Equal(t, "0x7", info.Address())
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store yields empty registry", func(t *testing.T) {
		reg, err := Open(ctx, testutil.NewMemoryStore(), logging.Discard())
		require.NoError(t, err)
		assert.Empty(t, reg.Codes())
	})

	t.Run("loads existing state", func(t *testing.T) {
		store := testutil.NewMemoryStoreWith(`{"codes": {"token": {"codeId": "1", "wasmPath": "/artifacts/token.wasm"}}, "contracts": {}}`)
		reg, err := Open(ctx, store, logging.Discard())
		require.NoError(t, err)
		_, err = reg.GetCodeInfo("token")
		assert.NoError(t, err)
	})

	t.Run("malformed state fails", func(t *testing.T) {
		_, err := Open(ctx, testutil.NewMemoryStoreWith(`[]`), logging.Discard())
		assert.ErrorIs(t, err, domain.ErrMalformedState)
	})
}

func TestRegistry_Close(t *testing.T) {
	ctx := context.Background()
	reg, store := newTestRegistry(t)
	_, err := reg.AddCodeInfo("1", "/artifacts/token.wasm")
	require.NoError(t, err)

	require.NoError(t, reg.Close(ctx))
	assert.Equal(t, 1, store.Saves)
	assert.Contains(t, store.Raw(), `"token"`)

	_, err = reg.GetCodeInfo("token")
	assert.ErrorIs(t, err, domain.ErrRegistryClosed)
	_, err = reg.AddCodeInfo("2", "/artifacts/market.wasm")
	assert.ErrorIs(t, err, domain.ErrRegistryClosed)
	assert.ErrorIs(t, reg.Save(ctx), domain.ErrRegistryClosed)

	require.NoError(t, reg.Close(ctx))
	assert.Equal(t, 1, store.Saves)
}

func TestRegistry_CloseSaveFailureKeepsRegistryOpen(t *testing.T) {
	reg, store := newTestRegistry(t)
	store.SaveErr = errors.New("disk full")

	assert.Error(t, reg.Close(context.Background()))
	_, err := reg.AddCodeInfo("1", "/artifacts/token.wasm")
	assert.NoError(t, err)
}

func TestRegistry_ConcurrentAddContractInfo(t *testing.T) {
	reg, _ := newTestRegistry(t)
	_, err := reg.AddCodeInfo("1", "/artifacts/token.wasm")
	require.NoError(t, err)

	const n = 32
	var wg sync.WaitGroup
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			info, err := reg.AddContractInfo("token", "0x1")
			if assert.NoError(t, err) {
				ids[i] = info.Identifier()
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate identifier %s", id)
		seen[id] = true
	}
	assert.Len(t, reg.Contracts(), n)
}
