package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mohsinsiddi/w3sale/internal/chain"
	"github.com/Mohsinsiddi/w3sale/internal/server"
	"github.com/Mohsinsiddi/w3sale/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serveListen    string
	serveRateLimit string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chain as a node with an HTTP API",
	Long: `Open the local chain and serve it over HTTP until interrupted:

  POST /rpc                               JSON-RPC (used by --node clients)
  POST /tx                                submit a signed transaction
  GET  /sale/:address[/whitelist]         sale state
  GET  /token/:address[/balance/:account] token state
  GET  /account/:address                  balance and nonce
  GET  /receipt/:hash, /events, /info
  GET  /metrics                           Prometheus metrics

POST requests are rate limited per client IP (rate_limit in config,
"" to disable). Loopback clients are exempt.

While the node runs, the data directory is locked: run other commands
with --node http://<listen>/rpc.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if nodeURL != "" {
			return fmt.Errorf("serve runs the chain itself: drop --node")
		}
		listen := cfg.Listen
		if serveListen != "" {
			listen = serveListen
		}
		rate := cfg.RateLimit
		if cmd.Flags().Changed("rate-limit") {
			rate = serveRateLimit
		}

		log := logger
		if !verbose {
			var err error
			if log, err = zap.NewProduction(); err != nil {
				return err
			}
			logger = log
		}

		c, closers, err := openLocalChain()
		if err != nil {
			return err
		}
		n := &node{closers: closers}
		defer n.Close() //nolint:errcheck

		srv, err := server.New(chain.Local(c), server.Options{
			Logger:    log.Named("http"),
			RateLimit: rate,
			Exempt:    []string{"127.0.0.1", "::1"},
		})
		if err != nil {
			return err
		}
		c.Observe(srv.Metrics())

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Println(ui.Success(fmt.Sprintf("Serving chain %d at block %d on http://%s", cfg.ChainID, c.Height(), listen)))
		fmt.Println(ui.Hint(fmt.Sprintf("Other commands: w3sale --node http://%s/rpc ...", listen)))
		return srv.Run(ctx, listen)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default: config)")
	serveCmd.Flags().StringVar(&serveRateLimit, "rate-limit", "", `POST rate limit per client, e.g. "60-M" (default: config)`)
}
