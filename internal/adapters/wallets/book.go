package wallets

import (
	"fmt"
	"sort"
	"sync"

	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"
	"github.com/steadifi/contract-harness/internal/domain"
	"github.com/steadifi/contract-harness/internal/domain/models"
	"github.com/steadifi/contract-harness/internal/usecase"
)

// DerivationPath is the account every fixture mnemonic is derived at.
const DerivationPath = "m/44'/60'/0'/0/0"

// Book resolves fixture test wallets by name, deriving each key once.
type Book struct {
	mu        sync.Mutex
	mnemonics map[string]string
	cache     map[string]*models.Wallet
}

// NewBook creates a wallet book over the fixture accounts
func NewBook() *Book {
	return newBook(testAccounts)
}

func newBook(mnemonics map[string]string) *Book {
	return &Book{
		mnemonics: mnemonics,
		cache:     make(map[string]*models.Wallet),
	}
}

// Get returns the wallet for a fixture account name such as "test1".
func (b *Book) Get(name string) (*models.Wallet, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if w, ok := b.cache[name]; ok {
		return w, nil
	}

	mnemonic, ok := b.mnemonics[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", domain.ErrUnknownAccount, name, b.namesLocked())
	}

	w, err := derive(name, mnemonic)
	if err != nil {
		return nil, err
	}
	b.cache[name] = w
	return w, nil
}

// Names lists the fixture account names, sorted.
func (b *Book) Names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.namesLocked()
}

// All returns every fixture wallet in name order.
func (b *Book) All() ([]*models.Wallet, error) {
	names := b.Names()
	out := make([]*models.Wallet, 0, len(names))
	for _, name := range names {
		w, err := b.Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func (b *Book) namesLocked() []string {
	names := make([]string, 0, len(b.mnemonics))
	for name := range b.mnemonics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func derive(name, mnemonic string) (*models.Wallet, error) {
	wallet, err := hdwallet.NewFromMnemonic(mnemonic)
	if err != nil {
		return nil, fmt.Errorf("failed to load mnemonic for %s: %w", name, err)
	}

	account, err := wallet.Derive(hdwallet.MustParseDerivationPath(DerivationPath), false)
	if err != nil {
		return nil, fmt.Errorf("failed to derive account for %s: %w", name, err)
	}

	key, err := wallet.PrivateKey(account)
	if err != nil {
		return nil, fmt.Errorf("failed to get private key for %s: %w", name, err)
	}

	return models.NewWallet(name, key), nil
}

// Ensure Book implements WalletBook
var _ usecase.WalletBook = (*Book)(nil)
