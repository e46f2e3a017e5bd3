package metrics

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/steadifi/contract-harness/internal/domain/models"
	"github.com/steadifi/contract-harness/internal/usecase"
)

// InstrumentedClient records metrics around every call of the wrapped client
type InstrumentedClient struct {
	next    usecase.ChainClient
	metrics *Metrics
}

// NewInstrumentedClient wraps next
func NewInstrumentedClient(next usecase.ChainClient, m *Metrics) *InstrumentedClient {
	return &InstrumentedClient{next: next, metrics: m}
}

func (c *InstrumentedClient) ChainID(ctx context.Context) (id *big.Int, err error) {
	defer c.observe("chain_id", time.Now(), &err)
	return c.next.ChainID(ctx)
}

func (c *InstrumentedClient) StoreCode(ctx context.Context, signer *models.Wallet, artifact *models.Artifact) (codeID string, res *models.TxResult, err error) {
	defer c.observe("store_code", time.Now(), &err)
	codeID, res, err = c.next.StoreCode(ctx, signer, artifact)
	c.gas("store_code", res)
	return codeID, res, err
}

func (c *InstrumentedClient) Instantiate(ctx context.Context, signer *models.Wallet, codeID string, contractABI *abi.ABI, args ...any) (res *models.TxResult, err error) {
	defer c.observe("instantiate", time.Now(), &err)
	res, err = c.next.Instantiate(ctx, signer, codeID, contractABI, args...)
	c.gas("instantiate", res)
	return res, err
}

func (c *InstrumentedClient) Execute(ctx context.Context, signer *models.Wallet, contract common.Address, contractABI *abi.ABI, method string, args ...any) (res *models.TxResult, err error) {
	defer c.observe("execute", time.Now(), &err)
	res, err = c.next.Execute(ctx, signer, contract, contractABI, method, args...)
	c.gas("execute", res)
	return res, err
}

func (c *InstrumentedClient) Query(ctx context.Context, contract common.Address, contractABI *abi.ABI, method string, args ...any) (out []any, err error) {
	defer c.observe("query", time.Now(), &err)
	return c.next.Query(ctx, contract, contractABI, method, args...)
}

func (c *InstrumentedClient) NativeBalance(ctx context.Context, account common.Address) (bal *big.Int, err error) {
	defer c.observe("native_balance", time.Now(), &err)
	return c.next.NativeBalance(ctx, account)
}

func (c *InstrumentedClient) SendNative(ctx context.Context, signer *models.Wallet, to common.Address, amount *big.Int) (res *models.TxResult, err error) {
	defer c.observe("send_native", time.Now(), &err)
	res, err = c.next.SendNative(ctx, signer, to, amount)
	c.gas("send_native", res)
	return res, err
}

func (c *InstrumentedClient) Close() {
	c.next.Close()
}

func (c *InstrumentedClient) observe(op string, start time.Time, err *error) {
	c.metrics.Observe(op, start, *err)
}

func (c *InstrumentedClient) gas(op string, res *models.TxResult) {
	if res != nil {
		c.metrics.RecordGas(op, res.GasUsed)
	}
}

var _ usecase.ChainClient = (*InstrumentedClient)(nil)
