package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/taurusgroup/dilizium/pkg/params"
	"github.com/taurusgroup/dilizium/pkg/pool"
	"github.com/taurusgroup/dilizium/protocols/dilizium"
)

const (
	ParamsKey    = "params"
	LogLevelKey  = "log-level"
	Seed1Key     = "seed1"
	Seed2Key     = "seed2"
	MessageKey   = "message"
	SignatureKey = "signature"
	RunsKey      = "runs"
	WorkersKey   = "workers"

	ParallelSessionsKey = "parallel-sessions"

	seedLength = 32
)

func addGlobalFlags(flags *pflag.FlagSet) {
	flags.String(ParamsKey, "", "Parameter file (yaml, json or toml), the default parameter set otherwise")
	flags.String(LogLevelKey, "warn", "Log level (debug, info, warn, error)")
	flags.Int(WorkersKey, 0, "Number of workers for matrix products, 0 uses every CPU")
}

func addSeedFlags(flags *pflag.FlagSet) {
	flags.String(Seed1Key, "", "Hex encoded key seed of the first party (required)")
	flags.String(Seed2Key, "", "Hex encoded key seed of the second party (required)")
}

var errInvalidSignature = errors.New("invalid signature")

// environment is what every subcommand derives from the global flags.
type environment struct {
	params *params.Params
	log    zerolog.Logger
	pool   *pool.Pool
}

func parseEnvironment(c *cobra.Command) (*environment, error) {
	flags := c.Flags()

	path, err := flags.GetString(ParamsKey)
	if err != nil {
		return nil, err
	}
	pp := params.Default()
	if path != "" {
		if pp, err = params.LoadFile(path); err != nil {
			return nil, err
		}
	}

	levelStr, err := flags.GetString(LogLevelKey)
	if err != nil {
		return nil, err
	}
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: c.ErrOrStderr()}).Level(level).With().Timestamp().Logger()

	workers, err := flags.GetInt(WorkersKey)
	if err != nil {
		return nil, err
	}

	return &environment{params: pp, log: log, pool: pool.NewPool(workers)}, nil
}

func (env *environment) close() {
	env.pool.TearDown()
}

// keys derives both combined key shares from the seed flags.
func (env *environment) keys(flags *pflag.FlagSet) (*dilizium.KeyMaterial, *dilizium.KeyMaterial, error) {
	seed1, err := getSeed(flags, Seed1Key)
	if err != nil {
		return nil, nil, err
	}
	seed2, err := getSeed(flags, Seed2Key)
	if err != nil {
		return nil, nil, err
	}
	return dilizium.Keygen(env.params, seed1, seed2, env.pool)
}

func getSeed(flags *pflag.FlagSet, key string) ([]byte, error) {
	str, err := flags.GetString(key)
	if err != nil {
		return nil, err
	}
	if str == "" {
		return nil, fmt.Errorf("missing --%s", key)
	}
	seed, err := hex.DecodeString(str)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", key, err)
	}
	return seed, nil
}

func randomSeed() (string, error) {
	seed := make([]byte, seedLength)
	if _, err := rand.Read(seed); err != nil {
		return "", err
	}
	return hex.EncodeToString(seed), nil
}

// fillSeeds sets every missing seed flag to a fresh random seed.
func fillSeeds(flags *pflag.FlagSet) error {
	for _, key := range []string{Seed1Key, Seed2Key} {
		if str, _ := flags.GetString(key); str != "" {
			continue
		}
		seed, err := randomSeed()
		if err != nil {
			return err
		}
		if err = flags.Set(key, seed); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
