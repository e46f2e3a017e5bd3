package usecase

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ListWalletsParams contains parameters for listing test wallets
type ListWalletsParams struct {
	// Balances queries each wallet's native balance, which needs a node
	Balances bool
}

// WalletEntry is one test wallet
type WalletEntry struct {
	Name    string
	Address common.Address
	Balance *big.Int
}

// ListWalletsResult contains every test wallet, sorted by name
type ListWalletsResult struct {
	Wallets []WalletEntry
}

// ListWallets is the use case for listing test wallets
type ListWallets struct {
	wallets   WalletBook
	connector ChainConnector
}

// NewListWallets creates a new ListWallets use case
func NewListWallets(wallets WalletBook, connector ChainConnector) *ListWallets {
	return &ListWallets{wallets: wallets, connector: connector}
}

// Run executes the list wallets use case
func (uc *ListWallets) Run(ctx context.Context, params ListWalletsParams) (*ListWalletsResult, error) {
	var client ChainClient
	if params.Balances {
		c, err := uc.connector.Connect(ctx)
		if err != nil {
			return nil, err
		}
		defer c.Close()
		client = c
	}

	names := uc.wallets.Names()
	result := &ListWalletsResult{Wallets: make([]WalletEntry, 0, len(names))}
	for _, name := range names {
		wallet, err := uc.wallets.Get(name)
		if err != nil {
			return nil, err
		}
		entry := WalletEntry{Name: name, Address: wallet.Address()}
		if client != nil {
			if entry.Balance, err = client.NativeBalance(ctx, wallet.Address()); err != nil {
				return nil, err
			}
		}
		result.Wallets = append(result.Wallets, entry)
	}
	return result, nil
}
