package blockchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/steadifi/contract-harness/internal/adapters/abi"
	"github.com/steadifi/contract-harness/internal/domain"
	"github.com/steadifi/contract-harness/internal/domain/config"
	"github.com/steadifi/contract-harness/internal/domain/models"
	"github.com/steadifi/contract-harness/internal/usecase"
)

// Backend is the subset of ethclient the harness drives. Both ethclient and
// the simulated backend satisfy it.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

const (
	defaultPollInterval = 100 * time.Millisecond
	// gasHeadroomPercent pads estimates, which are exact for the simulated state
	gasHeadroomPercent = 20
)

// Client implements usecase.ChainClient over an EVM JSON-RPC endpoint
type Client struct {
	backend      Backend
	closer       func()
	decoder      *abi.EventDecoder
	log          *slog.Logger
	pollInterval time.Duration

	// sendMu serializes nonce selection and broadcast
	sendMu  sync.Mutex
	chainID *big.Int
}

// NewClient wraps an existing backend
func NewClient(backend Backend, log *slog.Logger) *Client {
	return &Client{
		backend:      backend,
		closer:       func() {},
		decoder:      abi.NewEventDecoder(log),
		log:          log.With("component", "chain"),
		pollInterval: defaultPollInterval,
	}
}

// Dial connects to the configured network and verifies its chain id
func Dial(ctx context.Context, network *config.Network, log *slog.Logger) (*Client, error) {
	ec, err := ethclient.DialContext(ctx, network.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}

	c := NewClient(ec, log)
	c.closer = ec.Close

	chainID, err := c.ChainID(ctx)
	if err != nil {
		ec.Close()
		return nil, fmt.Errorf("failed to get chain ID from %s: %w", network.RPCURL, err)
	}
	if network.ChainID != 0 && chainID.Uint64() != network.ChainID {
		ec.Close()
		return nil, fmt.Errorf("chain ID mismatch: expected %d, got %d", network.ChainID, chainID.Uint64())
	}

	return c, nil
}

// SetPollInterval changes how often receipts are polled
func (c *Client) SetPollInterval(d time.Duration) {
	c.pollInterval = d
}

// ChainID returns the chain id, cached after the first call
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return c.chainIDLocked(ctx)
}

func (c *Client) chainIDLocked(ctx context.Context) (*big.Int, error) {
	if c.chainID != nil {
		return new(big.Int).Set(c.chainID), nil
	}
	id, err := c.backend.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	c.chainID = id
	return new(big.Int).Set(id), nil
}

// StoreCode deploys the artifact's creation code as a blueprint. The
// blueprint address is the code id.
func (c *Client) StoreCode(ctx context.Context, signer *models.Wallet, artifact *models.Artifact) (string, *models.TxResult, error) {
	initcode, err := artifact.CreationCode()
	if err != nil {
		return "", nil, err
	}
	deployCode, err := BlueprintDeployCode(initcode)
	if err != nil {
		return "", nil, err
	}

	receipt, err := c.send(ctx, signer, nil, nil, deployCode)
	if err != nil {
		return "", nil, fmt.Errorf("failed to store %s: %w", artifact.Name(), err)
	}
	if receipt.ContractAddress == (common.Address{}) {
		return "", nil, fmt.Errorf("%w: no blueprint address in receipt %s", domain.ErrTxFailed, receipt.TxHash.Hex())
	}

	result := c.result(receipt, nil)
	result.ContractAddress = &receipt.ContractAddress
	c.log.Debug("stored code", "name", artifact.Name(), "codeId", receipt.ContractAddress.Hex())
	return receipt.ContractAddress.Hex(), result, nil
}

// Instantiate reads the blueprint behind codeID, appends the packed
// constructor arguments and deploys the result.
func (c *Client) Instantiate(ctx context.Context, signer *models.Wallet, codeID string, contractABI *ethabi.ABI, args ...any) (*models.TxResult, error) {
	if !common.IsHexAddress(codeID) {
		return nil, fmt.Errorf("%w: code id %q is not an address", domain.ErrInvalidBlueprint, codeID)
	}

	code, err := c.backend.CodeAt(ctx, common.HexToAddress(codeID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read code %s: %w", codeID, err)
	}
	initcode, err := ParseBlueprint(code)
	if err != nil {
		return nil, fmt.Errorf("code %s: %w", codeID, err)
	}

	data := append([]byte{}, initcode...)
	if len(args) > 0 {
		if contractABI == nil {
			return nil, fmt.Errorf("constructor arguments given without an abi")
		}
		packed, err := contractABI.Pack("", args...)
		if err != nil {
			return nil, fmt.Errorf("failed to pack constructor arguments: %w", err)
		}
		data = append(data, packed...)
	}

	receipt, err := c.send(ctx, signer, nil, nil, data)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate code %s: %w", codeID, err)
	}
	if receipt.ContractAddress == (common.Address{}) {
		return nil, fmt.Errorf("%w: no contract address in receipt %s", domain.ErrTxFailed, receipt.TxHash.Hex())
	}

	result := c.result(receipt, contractABI)
	result.ContractAddress = &receipt.ContractAddress
	return result, nil
}

// Execute sends a state-changing call and decodes the emitted events
func (c *Client) Execute(ctx context.Context, signer *models.Wallet, contract common.Address, contractABI *ethabi.ABI, method string, args ...any) (*models.TxResult, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	receipt, err := c.send(ctx, signer, &contract, nil, data)
	if err != nil {
		return nil, fmt.Errorf("failed to execute %s on %s: %w", method, contract.Hex(), err)
	}
	return c.result(receipt, contractABI), nil
}

// Query performs a read-only call and unpacks the outputs
func (c *Client) Query(ctx context.Context, contract common.Address, contractABI *ethabi.ABI, method string, args ...any) ([]any, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	out, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s on %s: %w", method, contract.Hex(), err)
	}

	values, err := contractABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", method, err)
	}
	return values, nil
}

// NativeBalance returns the account balance in wei
func (c *Client) NativeBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	return c.backend.BalanceAt(ctx, account, nil)
}

// SendNative transfers wei. The result carries a synthetic "transfer" event
// since value transfers emit no logs.
func (c *Client) SendNative(ctx context.Context, signer *models.Wallet, to common.Address, amount *big.Int) (*models.TxResult, error) {
	receipt, err := c.send(ctx, signer, &to, amount, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s wei to %s: %w", amount, to.Hex(), err)
	}

	result := c.result(receipt, nil)
	result.Events = append(result.Events, models.Event{
		Type: "transfer",
		Attributes: []models.Attribute{
			{Key: "sender", Value: signer.Address().Hex()},
			{Key: "recipient", Value: to.Hex()},
			{Key: "amount", Value: amount.String()},
		},
	})
	return result, nil
}

// Close releases the RPC connection
func (c *Client) Close() {
	c.closer()
}

// send signs and broadcasts an EIP-1559 transaction and waits for its receipt.
// A nil to deploys data as creation code.
func (c *Client) send(ctx context.Context, signer *models.Wallet, to *common.Address, value *big.Int, data []byte) (*types.Receipt, error) {
	if value == nil {
		value = new(big.Int)
	}

	tx, err := c.signAndSend(ctx, signer, to, value, data)
	if err != nil {
		return nil, err
	}

	receipt, err := c.waitMined(ctx, tx.Hash())
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: %s reverted in block %s", domain.ErrTxFailed, tx.Hash().Hex(), receipt.BlockNumber)
	}
	return receipt, nil
}

func (c *Client) signAndSend(ctx context.Context, signer *models.Wallet, to *common.Address, value *big.Int, data []byte) (*types.Transaction, error) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	chainID, err := c.chainIDLocked(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	from := signer.Address()
	nonce, err := c.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	tipCap, err := c.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas tip cap: %w", err)
	}
	head, err := c.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest header: %w", err)
	}
	feeCap := new(big.Int).Set(tipCap)
	if head.BaseFee != nil {
		feeCap.Add(feeCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	}

	gas, err := c.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:      from,
		To:        to,
		GasFeeCap: feeCap,
		GasTipCap: tipCap,
		Value:     value,
		Data:      data,
	})
	if err != nil {
		// estimation executes the call, so reverts surface here with their reason
		return nil, fmt.Errorf("%w: %v", domain.ErrTxFailed, err)
	}
	gas += gas * gasHeadroomPercent / 100

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        to,
		Value:     value,
		Data:      data,
	})
	signed, err := signer.SignTx(tx, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := c.backend.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}
	c.log.Debug("sent transaction", "hash", signed.Hash().Hex(), "from", from.Hex(), "nonce", nonce, "gas", gas)
	return signed, nil
}

// waitMined polls for the receipt until it exists or ctx ends
func (c *Client) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.backend.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("failed to get receipt for %s: %w", hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Client) result(receipt *types.Receipt, contractABI *ethabi.ABI) *models.TxResult {
	r := &models.TxResult{
		Hash:    receipt.TxHash,
		GasUsed: receipt.GasUsed,
		Events:  c.decoder.DecodeLogs(receipt.Logs, contractABI),
	}
	if receipt.BlockNumber != nil {
		r.BlockNumber = receipt.BlockNumber.Uint64()
	}
	return r
}

// Ensure Client implements ChainClient
var _ usecase.ChainClient = (*Client)(nil)
