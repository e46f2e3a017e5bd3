package abi

import (
	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/steadifi/contract-harness/internal/usecase"
)

// ArgParser exposes ParseArgs to use cases
type ArgParser struct{}

// NewArgParser creates a new argument parser
func NewArgParser() *ArgParser {
	return &ArgParser{}
}

func (p *ArgParser) ParseArgs(inputs ethabi.Arguments, raw []string) ([]any, error) {
	return ParseArgs(inputs, raw)
}

var _ usecase.ArgumentParser = (*ArgParser)(nil)
