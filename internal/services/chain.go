package services

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/monitoring"
)

const gameStateMethod = "getGameState"

// gameStateOutputs is the declared return order of getGameState().
var gameStateOutputs = []string{
	"uint256", // mainJackpot
	"uint256", // miniJackpot
	"uint256", // playCount
	"uint256", // daoAccrued
	"uint256", // devAccrued
	"uint256", // entryPrice
	"bool",    // finalized
}

// ChainBackend is the subset of *ethclient.Client the reader needs.
type ChainBackend interface {
	bind.ContractCaller
	ChainID(ctx context.Context) (*big.Int, error)
}

type ChainConfig struct {
	RPCURL          string
	ContractAddress string
	ABIPath         string
	ABIJSON         string
}

func (c ChainConfig) missing() []string {
	var missing []string
	if strings.TrimSpace(c.RPCURL) == "" {
		missing = append(missing, "RPC_URL")
	}
	if strings.TrimSpace(c.ContractAddress) == "" {
		missing = append(missing, "CONTRACT_ADDRESS")
	}
	if strings.TrimSpace(c.ABIPath) == "" && strings.TrimSpace(c.ABIJSON) == "" {
		missing = append(missing, "CONTRACT_ABI_PATH")
	}
	return missing
}

func (c ChainConfig) loadABI() (abi.ABI, error) {
	source := c.ABIJSON
	if path := strings.TrimSpace(c.ABIPath); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return abi.ABI{}, fmt.Errorf("read abi file: %w", err)
		}
		source = string(data)
	}
	parsed, err := abi.JSON(strings.NewReader(source))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse abi: %w", err)
	}
	return parsed, nil
}

// ChainReader performs the single read-only contract call. A reader is either
// fully bound (backend and contract set) or unconfigured (neither set).
type ChainReader struct {
	backend  ChainBackend
	contract *bind.BoundContract
	address  common.Address
	closer   func()
	logger   *zap.Logger
}

// NewChainReader dials the RPC endpoint and binds the game contract. Any
// missing setting or failure leaves the reader unconfigured; it never returns
// an error so a bad chain config cannot stop the service.
func NewChainReader(ctx context.Context, cfg ChainConfig, logger *zap.Logger) *ChainReader {
	unconfigured := &ChainReader{logger: logger}

	if missing := cfg.missing(); len(missing) > 0 {
		logger.Info("chain reader unconfigured, serving mock game state",
			zap.Strings("missing", missing))
		return unconfigured
	}
	if !common.IsHexAddress(cfg.ContractAddress) {
		logger.Warn("chain reader disabled: invalid contract address",
			zap.String("op", "chain.init"),
			zap.String("address", cfg.ContractAddress))
		return unconfigured
	}

	parsed, err := cfg.loadABI()
	if err != nil {
		logger.Warn("chain reader disabled: abi unavailable",
			zap.String("op", "chain.init"), zap.Error(err))
		return unconfigured
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		logger.Warn("chain reader disabled: dial failed",
			zap.String("op", "chain.init"), zap.Error(err))
		return unconfigured
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		logger.Warn("chain reader disabled: connection check failed",
			zap.String("op", "chain.init"), zap.Error(err))
		return unconfigured
	}

	reader, err := NewBoundChainReader(client, common.HexToAddress(cfg.ContractAddress), parsed, logger)
	if err != nil {
		client.Close()
		logger.Warn("chain reader disabled: abi does not match game contract",
			zap.String("op", "chain.init"), zap.Error(err))
		return unconfigured
	}
	reader.closer = client.Close

	logger.Info("chain reader connected",
		zap.String("contract", reader.address.Hex()),
		zap.String("chain_id", chainID.String()))
	return reader
}

// NewBoundChainReader binds an already connected backend. The ABI must
// declare getGameState with the expected outputs.
func NewBoundChainReader(backend ChainBackend, address common.Address, parsed abi.ABI, logger *zap.Logger) (*ChainReader, error) {
	if backend == nil {
		return nil, fmt.Errorf("chain backend is required")
	}
	if err := validateGameStateABI(parsed); err != nil {
		return nil, err
	}
	return &ChainReader{
		backend:  backend,
		contract: bind.NewBoundContract(address, parsed, backend, nil, nil),
		address:  address,
		logger:   logger,
	}, nil
}

func validateGameStateABI(parsed abi.ABI) error {
	method, ok := parsed.Methods[gameStateMethod]
	if !ok {
		return fmt.Errorf("abi has no %s method", gameStateMethod)
	}
	if len(method.Inputs) != 0 {
		return fmt.Errorf("%s takes %d arguments, want 0", gameStateMethod, len(method.Inputs))
	}
	if len(method.Outputs) != len(gameStateOutputs) {
		return fmt.Errorf("%s returns %d values, want %d", gameStateMethod, len(method.Outputs), len(gameStateOutputs))
	}
	for i, out := range method.Outputs {
		if got := out.Type.String(); got != gameStateOutputs[i] {
			return fmt.Errorf("%s output %d is %s, want %s", gameStateMethod, i, got, gameStateOutputs[i])
		}
	}
	return nil
}

func (r *ChainReader) Configured() bool {
	return r != nil && r.backend != nil && r.contract != nil
}

// ReadState calls getGameState() once and returns the raw tuple.
func (r *ChainReader) ReadState(ctx context.Context) ([]interface{}, error) {
	if !r.Configured() {
		return nil, ErrChainUnconfigured
	}

	var out []interface{}
	if err := r.contract.Call(&bind.CallOpts{Context: ctx}, &out, gameStateMethod); err != nil {
		monitoring.ChainReads.WithLabelValues("error").Inc()
		r.logger.Error("contract call failed",
			zap.String("op", "chain.read_state"),
			zap.String("contract", r.address.Hex()),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrChainRead, err)
	}

	monitoring.ChainReads.WithLabelValues("ok").Inc()
	return out, nil
}

// Connected performs a live round trip to the node.
func (r *ChainReader) Connected(ctx context.Context) bool {
	if !r.Configured() {
		return false
	}
	if _, err := r.backend.ChainID(ctx); err != nil {
		r.logger.Warn("chain connection check failed",
			zap.String("op", "chain.connected"), zap.Error(err))
		return false
	}
	return true
}

func (r *ChainReader) Close() {
	if r != nil && r.closer != nil {
		r.closer()
	}
}
