package artifacts

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/steadifi/contract-harness/internal/domain"
	"github.com/steadifi/contract-harness/internal/domain/config"
	"github.com/steadifi/contract-harness/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deployableArtifact = `{
	"abi": [],
	"bytecode": {"object": "0x600a600c600039600a6000f3602a60005260206000f3"}
}`

const interfaceArtifact = `{"abi": [], "bytecode": {"object": "0x"}}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoader_Discover(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Token.sol", "Token.json"), deployableArtifact)
	writeFile(t, filepath.Join(root, "Answer.sol", "Answer.json"), deployableArtifact)
	writeFile(t, filepath.Join(root, "IToken.sol", "IToken.json"), interfaceArtifact)
	writeFile(t, filepath.Join(root, "build-info", "abc123.json"), deployableArtifact)
	writeFile(t, filepath.Join(root, "Broken.sol", "Broken.json"), `{"abi": `)
	writeFile(t, filepath.Join(root, "README.md"), "not an artifact")

	found, err := NewLoader(logging.Discard()).Discover(context.Background(), root)
	require.NoError(t, err)

	names := make([]string, 0, len(found))
	for _, a := range found {
		names = append(names, a.Name())
	}
	assert.Equal(t, []string{"Answer", "Token"}, names)
	assert.True(t, filepath.IsAbs(found[0].Path))
}

func TestLoader_DiscoverMissingRoot(t *testing.T) {
	_, err := NewLoader(logging.Discard()).Discover(context.Background(), filepath.Join(t.TempDir(), "out"))
	assert.ErrorIs(t, err, domain.ErrInvalidArtifact)
}

func TestLoader_DiscoverCancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Token.sol", "Token.json"), deployableArtifact)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(logging.Discard()).Discover(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoader_Load(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Token.sol", "Token.json")
	writeFile(t, path, deployableArtifact)

	loader := NewLoader(logging.Discard())
	a, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Token", a.Name())

	_, err = loader.Load(filepath.Join(root, "missing.json"))
	assert.ErrorIs(t, err, domain.ErrInvalidArtifact)
}

func TestScriptBuilder_Build(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "scripts", BuildScriptName), "#!/bin/sh\necho compiling\nmkdir -p out\n")
	require.NoError(t, os.Chmod(filepath.Join(root, "scripts", BuildScriptName), 0755))

	builder := NewScriptBuilder(&config.RuntimeConfig{ProjectRoot: root, ScriptsPath: "scripts"}, logging.Discard())
	assert.Equal(t, filepath.Join(root, "scripts", BuildScriptName), builder.Script())

	require.NoError(t, builder.Build(context.Background()))
	assert.DirExists(t, filepath.Join(root, "out"))
}

func TestScriptBuilder_BuildFailure(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "scripts", BuildScriptName), "#!/bin/sh\necho 'compiler error: missing semicolon'\nexit 3\n")
	require.NoError(t, os.Chmod(filepath.Join(root, "scripts", BuildScriptName), 0755))

	builder := NewScriptBuilder(&config.RuntimeConfig{ProjectRoot: root, ScriptsPath: "scripts"}, logging.Discard())
	err := builder.Build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing semicolon")
}

func TestScriptBuilder_MissingScript(t *testing.T) {
	builder := NewScriptBuilder(&config.RuntimeConfig{ProjectRoot: t.TempDir(), ScriptsPath: "scripts"}, logging.Discard())
	err := builder.Build(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
