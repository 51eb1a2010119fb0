package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/voyagent/voyagent/config"
	srv "github.com/voyagent/voyagent/internal/server"
)

func serveCMD() *cobra.Command {
	var addr string
	var cfgPath string

	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = os.Getenv("VOYAGENT_HTTP_ADDR")
			}
			return srv.Run(cfg, addr)
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	serve.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config)")
	return serve
}
