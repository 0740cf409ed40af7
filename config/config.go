// Package config contains configuration of the ledger tools.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/ft-ledger/common"
	"github.com/nspcc-dev/ft-ledger/contracts/ft/ftconst"
	"github.com/nspcc-dev/ft-ledger/host"
	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Default values.
const (
	DefaultContract = "token"
	DefaultLogLevel = "info"
)

// Config is the root of the configuration file.
type Config struct {
	Ledger Ledger `yaml:"ledger"`
	Token  Token  `yaml:"token"`
	Logger Logger `yaml:"logger"`
}

// Ledger configures the ledger state and its host.
type Ledger struct {
	// Persistent store of the ledger state.
	DB dbconfig.DBConfiguration `yaml:"db"`
	// Account of the token contract.
	Contract string `yaml:"contract"`
	// Price of a storage byte in minimal payment units, decimal.
	StoragePrice string `yaml:"storage_price"`
	// Bytes charged for every storage record.
	RecordOverhead uint64 `yaml:"record_overhead"`
	// Payment consumed by every transfer, decimal.
	MinTransferPayment string `yaml:"min_transfer_payment"`
}

// Token configures token initialization.
type Token struct {
	Owner string `yaml:"owner"`
	// Initial supply in minimal units, decimal.
	TotalSupply string   `yaml:"total_supply"`
	Metadata    Metadata `yaml:"metadata"`
}

// Metadata configures token metadata.
type Metadata struct {
	Name      string `yaml:"name"`
	Symbol    string `yaml:"symbol"`
	Icon      string `yaml:"icon"`
	Reference string `yaml:"reference"`
	// Hex-encoded SHA256 of the reference document.
	ReferenceHash string `yaml:"reference_hash"`
	Decimals      uint8  `yaml:"decimals"`
}

// Logger configures logging.
type Logger struct {
	Level string `yaml:"level"`
}

// Default returns configuration with in-memory store and default values.
func Default() *Config {
	return &Config{
		Ledger: Ledger{
			DB:                 dbconfig.DBConfiguration{Type: dbconfig.InMemoryDB},
			Contract:           DefaultContract,
			StoragePrice:       big.NewInt(host.DefaultStoragePrice).String(),
			RecordOverhead:     host.RecordOverhead,
			MinTransferPayment: big.NewInt(ftconst.DefaultMinTransferPayment).String(),
		},
		Logger: Logger{Level: DefaultLogLevel},
	}
}

// Load reads configuration from the YAML file. Missing values are set to
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("decode YAML config: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration values.
func (c *Config) Validate() error {
	switch c.Ledger.DB.Type {
	case dbconfig.InMemoryDB, dbconfig.LevelDB, dbconfig.BoltDB:
	default:
		return fmt.Errorf("unsupported DB type %q", c.Ledger.DB.Type)
	}

	if c.Ledger.Contract == "" {
		return errors.New("empty contract account")
	}
	if c.Ledger.RecordOverhead == 0 {
		return errors.New("zero record overhead")
	}

	if _, err := c.StoragePrice(); err != nil {
		return err
	}
	if _, err := c.MinTransferPayment(); err != nil {
		return err
	}

	if c.Token.TotalSupply != "" {
		if _, err := c.TotalSupply(); err != nil {
			return err
		}
	}
	if _, err := c.ReferenceHash(); err != nil {
		return err
	}

	if _, err := zapcore.ParseLevel(c.Logger.Level); err != nil {
		return fmt.Errorf("logger level: %w", err)
	}

	return nil
}

func parseAmount(name, s string) (*uint256.Int, error) {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%s: invalid decimal %q", name, s)
	}

	res, err := common.AmountFromBig(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return res, nil
}

// StoragePrice returns parsed price of a storage byte.
func (c *Config) StoragePrice() (*uint256.Int, error) {
	return parseAmount("storage price", c.Ledger.StoragePrice)
}

// MinTransferPayment returns parsed payment consumed by transfers.
func (c *Config) MinTransferPayment() (*uint256.Int, error) {
	return parseAmount("min transfer payment", c.Ledger.MinTransferPayment)
}

// TotalSupply returns parsed initial supply of the token.
func (c *Config) TotalSupply() (*uint256.Int, error) {
	return parseAmount("total supply", c.Token.TotalSupply)
}

// ReferenceHash returns decoded metadata reference hash, nil if not set.
func (c *Config) ReferenceHash() ([]byte, error) {
	if c.Token.Metadata.ReferenceHash == "" {
		return nil, nil
	}

	res, err := hex.DecodeString(c.Token.Metadata.ReferenceHash)
	if err != nil {
		return nil, fmt.Errorf("reference hash: %w", err)
	}

	return res, nil
}

// NewLogger returns logger writing messages of the configured level.
func (c *Config) NewLogger() (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(c.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("logger level: %w", err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zc.Build()
}
