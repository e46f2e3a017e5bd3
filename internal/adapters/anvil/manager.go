package anvil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/steadifi/contract-harness/internal/domain/config"
	"github.com/steadifi/contract-harness/internal/usecase"
)

const (
	stopTimeout      = 5 * time.Second
	readyPollEvery   = 100 * time.Millisecond
	rpcClientTimeout = 5 * time.Second
)

// Manager runs a local anvil node described by the node config
type Manager struct {
	node   config.NodeConfig
	log    *slog.Logger
	client *http.Client
	host   string
}

// NewManager creates a manager for the configured node
func NewManager(cfg *config.RuntimeConfig, log *slog.Logger) *Manager {
	return newManager(cfg.Node, log)
}

func newManager(node config.NodeConfig, log *slog.Logger) *Manager {
	return &Manager{
		node:   node,
		log:    log.With("component", "anvil"),
		client: &http.Client{Timeout: rpcClientTimeout},
		host:   "localhost",
	}
}

// RPCURL is the endpoint the managed node listens on
func (m *Manager) RPCURL() string {
	return fmt.Sprintf("http://%s:%s", m.host, m.node.Port)
}

// Start launches the node in the background. The process outlives the
// harness command; Stop or Reset ends it.
func (m *Manager) Start(ctx context.Context) error {
	if m.isRunning() {
		return fmt.Errorf("anvil is already running (PID file exists at %s)", m.node.PidFile)
	}

	cmd := exec.Command(m.binary(), buildAnvilArgs(m.node)...)

	logFile, err := os.Create(m.node.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer logFile.Close()

	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", m.binary(), err)
	}

	if err := m.writePidFile(cmd.Process.Pid); err != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	m.log.Info("started anvil", "pid", cmd.Process.Pid, "rpc", m.RPCURL(), "logs", m.node.LogFile)
	return nil
}

// Stop terminates the node. Stopping a node that is not running is a no-op.
func (m *Manager) Stop(ctx context.Context) error {
	if !m.isRunning() {
		m.log.Debug("anvil is not running", "pidFile", m.node.PidFile)
		return m.removePidFile()
	}

	pid, err := m.readPidFile()
	if err != nil {
		return fmt.Errorf("failed to read PID file: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		if err := process.Kill(); err != nil {
			return fmt.Errorf("failed to kill process: %w", err)
		}
	}

	deadline := time.Now().Add(stopTimeout)
	for processAlive(pid) && time.Now().Before(deadline) {
		time.Sleep(readyPollEvery)
	}
	if processAlive(pid) {
		// SIGTERM was ignored
		_ = process.Kill()
	}
	// reap when the node is our own child
	_, _ = process.Wait()

	m.log.Info("stopped anvil", "pid", pid)
	return m.removePidFile()
}

// Reset stops the node and removes its pid and log files so the next
// Start begins from genesis.
func (m *Manager) Reset(ctx context.Context) error {
	if err := m.Stop(ctx); err != nil {
		return err
	}
	if err := os.Remove(m.node.LogFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove log file: %w", err)
	}
	return nil
}

// Status reports the process state and whether the RPC answers
func (m *Manager) Status(ctx context.Context) (*usecase.NodeStatus, error) {
	status := &usecase.NodeStatus{
		RPCURL:  m.RPCURL(),
		LogFile: m.node.LogFile,
	}

	if !m.isRunning() {
		return status, nil
	}
	status.Running = true
	status.PID, _ = m.readPidFile()
	status.RPCHealthy = m.checkRPCHealth(ctx) == nil
	return status, nil
}

// WaitReady polls eth_blockNumber until the node answers or ctx ends
func (m *Manager) WaitReady(ctx context.Context) error {
	ticker := time.NewTicker(readyPollEvery)
	defer ticker.Stop()

	var lastErr error
	for {
		if lastErr = m.checkRPCHealth(ctx); lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("anvil at %s not ready: %w (last error: %v)", m.RPCURL(), ctx.Err(), lastErr)
		case <-ticker.C:
		}
	}
}

// Fund sets the account's balance through anvil_setBalance
func (m *Manager) Fund(ctx context.Context, account common.Address, wei *big.Int) error {
	req := rpcRequest{
		Jsonrpc: "2.0",
		Method:  "anvil_setBalance",
		Params:  []any{account.Hex(), hexutil.EncodeBig(wei)},
		ID:      1,
	}
	if _, err := m.call(ctx, req); err != nil {
		return fmt.Errorf("failed to fund %s: %w", account.Hex(), err)
	}
	return nil
}

func (m *Manager) binary() string {
	if m.node.Binary == "" {
		return "anvil"
	}
	return m.node.Binary
}

// buildAnvilArgs constructs the command-line arguments for anvil
func buildAnvilArgs(node config.NodeConfig) []string {
	args := []string{"--port", node.Port, "--host", "0.0.0.0"}
	if node.ChainID != 0 {
		args = append(args, "--chain-id", strconv.FormatUint(node.ChainID, 10))
	}
	return args
}

// isRunning checks the PID file and whether that process is alive
func (m *Manager) isRunning() bool {
	pid, err := m.readPidFile()
	if err != nil {
		return false
	}
	return processAlive(pid)
}

func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

func (m *Manager) readPidFile() (int, error) {
	data, err := os.ReadFile(m.node.PidFile)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %s", string(data))
	}
	return pid, nil
}

func (m *Manager) writePidFile(pid int) error {
	return os.WriteFile(m.node.PidFile, []byte(strconv.Itoa(pid)), 0644)
}

func (m *Manager) removePidFile() error {
	if err := os.Remove(m.node.PidFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// rpcRequest represents a JSON-RPC request
type rpcRequest struct {
	Jsonrpc string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

// rpcResponse represents a JSON-RPC response
type rpcResponse struct {
	Jsonrpc string    `json:"jsonrpc"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
	ID      int       `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (m *Manager) checkRPCHealth(ctx context.Context) error {
	_, err := m.call(ctx, rpcRequest{
		Jsonrpc: "2.0",
		Method:  "eth_blockNumber",
		Params:  []any{},
		ID:      1,
	})
	return err
}

func (m *Manager) call(ctx context.Context, req rpcRequest) (*rpcResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.RPCURL(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d", httpResp.StatusCode)
	}

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp rpcResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("RPC error: %s", resp.Error.Message)
	}
	return &resp, nil
}

// Ensure Manager implements NodeManager
var _ usecase.NodeManager = (*Manager)(nil)
