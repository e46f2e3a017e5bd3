package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/steadifi/contract-harness/internal/domain"
)

// BytecodeObject represents bytecode information in a Foundry artifact
type BytecodeObject struct {
	Object         string         `json:"object"`
	LinkReferences map[string]any `json:"linkReferences,omitempty"`
}

// Artifact represents a compiled contract ready for upload
type Artifact struct {
	ABI              json.RawMessage `json:"abi"`
	Bytecode         BytecodeObject  `json:"bytecode"`
	DeployedBytecode BytecodeObject  `json:"deployedBytecode"`

	// Path is the normalized location the artifact was read from.
	Path string `json:"-"`
}

// ParseArtifact decodes a Foundry artifact document read from path.
func ParseArtifact(path string, data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidArtifact, path, err)
	}
	a.Path = NormalizePath(path)
	return &a, nil
}

// Name is the code name the artifact registers under.
func (a *Artifact) Name() string {
	return NameFromPath(a.Path)
}

// HasBytecode reports whether the artifact carries creation code, which
// interfaces and abstract contracts do not.
func (a *Artifact) HasBytecode() bool {
	obj := strings.TrimPrefix(a.Bytecode.Object, "0x")
	return obj != ""
}

// CreationCode returns the decoded creation bytecode.
func (a *Artifact) CreationCode() ([]byte, error) {
	if !a.HasBytecode() {
		return nil, fmt.Errorf("%w: %s has no creation bytecode", domain.ErrInvalidArtifact, a.Path)
	}
	if len(a.Bytecode.LinkReferences) > 0 {
		return nil, fmt.Errorf("%w: %s requires library linking", domain.ErrInvalidArtifact, a.Path)
	}
	obj := a.Bytecode.Object
	if !strings.HasPrefix(obj, "0x") {
		obj = "0x" + obj
	}
	code, err := hexutil.Decode(obj)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidArtifact, a.Path, err)
	}
	return code, nil
}

// ParsedABI decodes the artifact ABI.
func (a *Artifact) ParsedABI() (*abi.ABI, error) {
	if len(a.ABI) == 0 {
		return &abi.ABI{}, nil
	}
	parsed, err := abi.JSON(bytes.NewReader(a.ABI))
	if err != nil {
		return nil, fmt.Errorf("%w: %s abi: %v", domain.ErrInvalidArtifact, a.Path, err)
	}
	return &parsed, nil
}
