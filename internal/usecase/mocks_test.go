package usecase_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/steadifi/contract-harness/internal/domain/models"
	"github.com/steadifi/contract-harness/internal/usecase"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockNodeManager is a mock implementation of NodeManager
type MockNodeManager struct {
	mock.Mock
}

func (m *MockNodeManager) Start(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockNodeManager) Stop(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockNodeManager) Reset(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockNodeManager) Status(ctx context.Context) (*usecase.NodeStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.NodeStatus), args.Error(1)
}

func (m *MockNodeManager) WaitReady(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockNodeManager) Fund(ctx context.Context, account common.Address, wei *big.Int) error {
	return m.Called(ctx, account, wei).Error(0)
}

// MockArtifactBuilder is a mock implementation of ArtifactBuilder
type MockArtifactBuilder struct {
	mock.Mock
}

func (m *MockArtifactBuilder) Build(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockArtifactSource is a mock implementation of ArtifactSource
type MockArtifactSource struct {
	mock.Mock
}

func (m *MockArtifactSource) Discover(ctx context.Context, root string) ([]*models.Artifact, error) {
	args := m.Called(ctx, root)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Artifact), args.Error(1)
}

func (m *MockArtifactSource) Load(path string) (*models.Artifact, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Artifact), args.Error(1)
}

// staticConnector hands out one client
type staticConnector struct {
	client usecase.ChainClient
	err    error
	dials  int
}

func (c *staticConnector) Connect(ctx context.Context) (usecase.ChainClient, error) {
	c.dials++
	if c.err != nil {
		return nil, c.err
	}
	return c.client, nil
}

// recordingSink collects progress events
type recordingSink struct {
	events []usecase.ProgressEvent
}

func (s *recordingSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	s.events = append(s.events, event)
}

func (s *recordingSink) Info(string)  {}
func (s *recordingSink) Error(string) {}

func (s *recordingSink) stages() []string {
	var out []string
	for _, e := range s.events {
		if len(out) == 0 || out[len(out)-1] != e.Stage {
			out = append(out, e.Stage)
		}
	}
	return out
}

const tokenArtifact = `{
	"abi": [
		{"type":"constructor","inputs":[{"name":"name","type":"string"},{"name":"supply","type":"uint256"}]},
		{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"holder","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
	],
	"bytecode": {"object": "0x600a600c600039600a6000f3602a60005260206000f3"}
}`

const answerArtifact = `{
	"abi": [{"type":"function","name":"answer","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]}],
	"bytecode": {"object": "0x600a600c600039600a6000f3602a60005260206000f3"}
}`

func parseArtifact(t *testing.T, path, doc string) *models.Artifact {
	t.Helper()
	a, err := models.ParseArtifact(path, []byte(doc))
	require.NoError(t, err)
	return a
}
