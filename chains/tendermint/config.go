package tendermint

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ChainConfig describes how to reach the RPC endpoint of a source chain.
type ChainConfig struct {
	ChainID string
	RPCAddr string
	// Timeout bounds every RPC call.
	Timeout time.Duration
}

func (c ChainConfig) Build() (*Chain, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return NewChain(c)
}

func (c ChainConfig) Validate() error {
	isEmpty := func(s string) bool {
		return strings.TrimSpace(s) == ""
	}

	var errs []error
	if isEmpty(c.ChainID) {
		errs = append(errs, fmt.Errorf("config attribute \"chain_id\" is empty"))
	}
	if isEmpty(c.RPCAddr) {
		errs = append(errs, fmt.Errorf("config attribute \"rpc_addr\" is empty"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("config attribute \"timeout\" is not positive: %v", c.Timeout))
	}

	// errors.Join returns nil if len(errs) == 0
	return errors.Join(errs...)
}
