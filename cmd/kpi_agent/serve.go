package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP confirmation boundary",
	Long:  `Start an HTTP server exposing run start/resume/status and KPI listing endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()

	if rt.pg == nil {
		return fmt.Errorf("DATABASE_URL is required for the server: runs must survive process restarts")
	}

	port := rt.cfg.Port
	if servePort != 0 {
		port = servePort
	}

	srv := server.New(server.Config{
		Port:   port,
		Engine: rt.engine,
		Store:  rt.defs,
		Log:    rt.log,
	})
	return srv.Run()
}
