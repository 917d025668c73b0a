package cmd

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/prometheus/common/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	ledger "medchain/src"
	"medchain/src/config"
	"medchain/src/web"
)

const clientTimeout = 10 * time.Second

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Fetch the chain from a running node and print it",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadClientConfigFromCLI()
		if err := cfg.Validate(); err != nil {
			return errors.Wrap(err, "invalid client configuration")
		}

		chain, err := fetchChain(cfg)
		if err != nil {
			return err
		}

		renderChain(cmd.OutOrStdout(), chain.Chain)
		renderVerification(cmd.OutOrStdout(), ledger.ValidChain(chain.Chain))
		return nil
	},
}

func fetchChain(cfg config.ClientConfig) (*ledger.ChainDTO, error) {
	client := resty.New().
		SetBaseURL(cfg.Server).
		SetAuthToken(cfg.Token).
		SetTimeout(clientTimeout)

	var chain ledger.ChainDTO
	var apiErr web.ErrorResponse
	resp, err := client.R().
		SetResult(&chain).
		SetError(&apiErr).
		Get("/chain")
	if err != nil {
		return nil, errors.Wrapf(err, "request to %s failed", cfg.Server)
	}
	if resp.IsError() {
		return nil, errors.Errorf("%s returned %s: %s", cfg.Server, resp.Status(), apiErr.Message)
	}

	log.Debugf("Fetched %d blocks from %s", chain.Length, cfg.Server)
	return &chain, nil
}

func init() {
	chainCmd.Flags().String("server", config.DefaultServer, "node to fetch the chain from")
	chainCmd.Flags().String("token", "", "session token returned by /signup or /login")
	if err := viper.BindPFlags(chainCmd.Flags()); err != nil {
		log.Errorf("Failed to bind chain flags: %s", err)
	}
}
