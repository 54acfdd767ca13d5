package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pdiddy/markforge/internal/convert"
	"github.com/pdiddy/markforge/internal/webui"
	"github.com/pdiddy/markforge/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local conversion dashboard",
	Long: `Serve starts a local web dashboard with a conversion form, a live log
pane, and a browser for the converted documents. One conversion runs at a
time; starting another while one is active is rejected.

Directory and backend flags prefill the form. Dashboard runs always
overwrite existing outputs and keep empty results.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := convertConfigFromFlags(cmd)
	if err != nil {
		return err
	}

	addr := configString(cmd, "addr", "serve.addr")
	logLines := configInt(cmd, "log-lines", "serve.log_lines")

	run := func(c types.ConvertConfig, w io.Writer) (convert.BatchResult, error) {
		return runBatch(context.Background(), c, w)
	}
	srv, err := webui.NewServer(cfg, types.ServeConfig{Addr: addr, LogLines: logLines}, run)
	if err != nil {
		return err
	}

	fmt.Printf("markforge dashboard on http://%s\n", addr)
	return http.ListenAndServe(addr, srv.Handler())
}

func init() {
	addConvertFlags(serveCmd)
	serveCmd.Flags().String("addr", "127.0.0.1:8382", "dashboard listen address")
	serveCmd.Flags().Int("log-lines", 500, "log pane buffer size in lines")

	rootCmd.AddCommand(serveCmd)
}
