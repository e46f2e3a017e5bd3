package models

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet is a named signing identity used by tests.
type Wallet struct {
	Name    string
	address common.Address
	key     *ecdsa.PrivateKey
}

// NewWallet wraps a private key under a fixture name.
func NewWallet(name string, key *ecdsa.PrivateKey) *Wallet {
	return &Wallet{
		Name:    name,
		address: crypto.PubkeyToAddress(key.PublicKey),
		key:     key,
	}
}

func (w *Wallet) Address() common.Address       { return w.address }
func (w *Wallet) PrivateKey() *ecdsa.PrivateKey { return w.key }

// SignTx signs tx for the given chain with the latest signer rules.
func (w *Wallet) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), w.key)
}
