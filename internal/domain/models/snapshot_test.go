package models

import (
	"encoding/json"
	"testing"

	"github.com/steadifi/contract-harness/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrySnapshot_IsImmutable(t *testing.T) {
	codes := map[string]CodeInfoData{"token": {CodeID: "1", WasmPath: "/a/token.wasm"}}
	snap := NewRegistrySnapshot(codes, nil)

	codes["other"] = CodeInfoData{CodeID: "2", WasmPath: "/a/other.wasm"}
	assert.Len(t, snap.Codes(), 1)

	got := snap.Codes()
	delete(got, "token")
	assert.Len(t, snap.Codes(), 1)
	assert.Empty(t, snap.Contracts())
}

func TestRegistrySnapshot_JSONLayout(t *testing.T) {
	snap := NewRegistrySnapshot(
		map[string]CodeInfoData{"token": {CodeID: "1", WasmPath: "/a/token.wasm"}},
		map[string]ContractInfoData{"token_0": {Identifier: "token_0", CodeID: "1", ContractAddress: "0xdead"}},
	)

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"codes": {"token": {"codeId": "1", "wasmPath": "/a/token.wasm"}},
		"contracts": {"token_0": {"identifier": "token_0", "codeId": "1", "contractAddress": "0xdead"}}
	}`, string(data))

	var back RegistrySnapshot
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, snap.Codes(), back.Codes())
	assert.Equal(t, snap.Contracts(), back.Contracts())
}

func TestRegistrySnapshot_EmptyLayout(t *testing.T) {
	data, err := json.Marshal(NewRegistrySnapshot(nil, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"codes": {}, "contracts": {}}`, string(data))
}

func TestRegistrySnapshot_UnmarshalRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{"codes":`},
		{"wrong shape", `{"codes": [], "contracts": {}}`},
		{"missing contracts", `{"codes": {}}`},
		{"code key mismatch", `{"codes": {"other": {"codeId": "1", "wasmPath": "/a/token.wasm"}}, "contracts": {}}`},
		{"code without id", `{"codes": {"token": {"codeId": "", "wasmPath": "/a/token.wasm"}}, "contracts": {}}`},
		{"contract key mismatch", `{"codes": {}, "contracts": {"a_0": {"identifier": "b_0", "codeId": "1", "contractAddress": "0x1"}}}`},
		{"contract without address", `{"codes": {}, "contracts": {"a_0": {"identifier": "a_0", "codeId": "1"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var snap RegistrySnapshot
			err := json.Unmarshal([]byte(tt.doc), &snap)
			assert.ErrorIs(t, err, domain.ErrMalformedState)
		})
	}
}
