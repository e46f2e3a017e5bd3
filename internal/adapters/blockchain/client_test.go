package blockchain

import (
	"context"
	"math/big"
	"strings"
	"testing"
	"time"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/steadifi/contract-harness/internal/domain"
	"github.com/steadifi/contract-harness/internal/domain/models"
	"github.com/steadifi/contract-harness/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// answerCode deploys a runtime that returns 42 for every call
const answerCode = "0x600a600c600039600a6000f3602a60005260206000f3"

const answerABI = `[{"type":"function","name":"answer","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]}]`

type simulatedChain struct {
	client  *Client
	backend *simulated.Backend
	wallet  *models.Wallet
}

func newSimulatedChain(t *testing.T) *simulatedChain {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	wallet := models.NewWallet("test1", key)

	funds, _ := new(big.Int).SetString("1000000000000000000000", 10)
	backend := simulated.NewBackend(types.GenesisAlloc{
		wallet.Address(): {Balance: funds},
	})

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				backend.Commit()
			}
		}
	}()
	t.Cleanup(func() {
		close(done)
		_ = backend.Close()
	})

	client := NewClient(backend.Client(), logging.Discard())
	client.SetPollInterval(5 * time.Millisecond)
	return &simulatedChain{client: client, backend: backend, wallet: wallet}
}

func answerArtifact(t *testing.T) (*models.Artifact, *ethabi.ABI) {
	t.Helper()
	artifact := &models.Artifact{
		ABI:      []byte(answerABI),
		Bytecode: models.BytecodeObject{Object: answerCode},
		Path:     "/project/out/Answer.sol/Answer.json",
	}
	parsed, err := ethabi.JSON(strings.NewReader(answerABI))
	require.NoError(t, err)
	return artifact, &parsed
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestClient_StoreInstantiateQuery(t *testing.T) {
	chain := newSimulatedChain(t)
	ctx := testContext(t)
	artifact, contractABI := answerArtifact(t)

	codeID, stored, err := chain.client.StoreCode(ctx, chain.wallet, artifact)
	require.NoError(t, err)
	require.NotNil(t, stored.ContractAddress)
	assert.Equal(t, stored.ContractAddress.Hex(), codeID)
	assert.NotZero(t, stored.GasUsed)

	code, err := chain.backend.Client().CodeAt(ctx, common.HexToAddress(codeID), nil)
	require.NoError(t, err)
	initcode, err := ParseBlueprint(code)
	require.NoError(t, err)
	want, err := artifact.CreationCode()
	require.NoError(t, err)
	assert.Equal(t, want, initcode)

	instantiated, err := chain.client.Instantiate(ctx, chain.wallet, codeID, contractABI)
	require.NoError(t, err)
	require.NotNil(t, instantiated.ContractAddress)
	assert.NotEqual(t, codeID, instantiated.ContractAddress.Hex())

	out, err := chain.client.Query(ctx, *instantiated.ContractAddress, contractABI, "answer")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, big.NewInt(42), out[0])
}

func TestClient_InstantiateRejectsNonBlueprint(t *testing.T) {
	chain := newSimulatedChain(t)
	ctx := testContext(t)
	_, contractABI := answerArtifact(t)

	_, err := chain.client.Instantiate(ctx, chain.wallet, chain.wallet.Address().Hex(), contractABI)
	assert.ErrorIs(t, err, domain.ErrInvalidBlueprint)

	_, err = chain.client.Instantiate(ctx, chain.wallet, "not-an-address", contractABI)
	assert.ErrorIs(t, err, domain.ErrInvalidBlueprint)
}

func TestClient_SendNative(t *testing.T) {
	chain := newSimulatedChain(t)
	ctx := testContext(t)
	recipient := common.HexToAddress("0x00000000000000000000000000000000000000bb")

	result, err := chain.client.SendNative(ctx, chain.wallet, recipient, big.NewInt(1234))
	require.NoError(t, err)

	balance, err := chain.client.NativeBalance(ctx, recipient)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1234), balance)

	assert.Equal(t, []string{chain.wallet.Address().Hex()}, result.AttributeValues("transfer", "sender"))
	assert.Equal(t, []string{recipient.Hex()}, result.AttributeValues("transfer", "recipient"))
	assert.Equal(t, []string{"1234"}, result.AttributeValues("transfer", "amount"))
}

func TestClient_SendNativeInsufficientFunds(t *testing.T) {
	chain := newSimulatedChain(t)
	ctx := testContext(t)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	broke := models.NewWallet("broke", key)

	_, err = chain.client.SendNative(ctx, broke, chain.wallet.Address(), big.NewInt(1))
	assert.ErrorIs(t, err, domain.ErrTxFailed)
}

func TestClient_ChainID(t *testing.T) {
	chain := newSimulatedChain(t)
	ctx := testContext(t)

	id, err := chain.client.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1337), id.Int64())

	// cached value is a copy
	id.SetInt64(1)
	again, err := chain.client.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1337), again.Int64())
}
