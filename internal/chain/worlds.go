package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
)

var ErrUnknownChain = errors.New("no world deployed on chain")

// Deploy is the world contract deployment for one chain.
type Deploy struct {
	Address     string `json:"address"`
	BlockNumber uint64 `json:"blockNumber,omitempty"`
}

type WorldResolver interface {
	Resolve(ctx context.Context, chainID uint64) (Deploy, error)
}

// Worlds resolves chain ids from a MUD worlds.json file plus explicit
// overrides, which take precedence.
type Worlds struct {
	deploys map[uint64]Deploy
}

var _ WorldResolver = (*Worlds)(nil)

// LoadWorlds reads path if it exists. A missing file is not an error as long
// as the overrides cover the chains being resolved.
func LoadWorlds(path string, overrides map[uint64]string) (*Worlds, error) {
	w := &Worlds{deploys: make(map[uint64]Deploy)}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("loading worlds: %w", err)
		default:
			if err := w.parse(data); err != nil {
				return nil, fmt.Errorf("loading worlds: %w", err)
			}
		}
	}

	for chainID, address := range overrides {
		if !IsAddress(address) {
			return nil, fmt.Errorf("loading worlds: chain %d: %w: %q", chainID, ErrInvalidAddress, address)
		}
		w.deploys[chainID] = Deploy{Address: address}
	}

	return w, nil
}

func (w *Worlds) parse(data []byte) error {
	var raw map[string]Deploy
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, deploy := range raw {
		chainID, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return fmt.Errorf("chain id %q: %w", key, err)
		}
		if !IsAddress(deploy.Address) {
			return fmt.Errorf("chain %d: %w: %q", chainID, ErrInvalidAddress, deploy.Address)
		}
		w.deploys[chainID] = deploy
	}
	return nil
}

func (w *Worlds) Resolve(ctx context.Context, chainID uint64) (Deploy, error) {
	if err := ctx.Err(); err != nil {
		return Deploy{}, err
	}
	deploy, ok := w.deploys[chainID]
	if !ok {
		return Deploy{}, fmt.Errorf("%w %d", ErrUnknownChain, chainID)
	}
	return deploy, nil
}
