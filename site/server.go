// Package main serves the Century Old Tunes web frontend from the docs
// directory next to the executable.
package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/f4ah6o/century-old-tunes-web/internal/webserver"
)

// terminationSignals are the signals that stop the server gracefully.
var terminationSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
}

// serveOptions stores the command line flags.
type serveOptions struct {
	host string
	port int
	dir  string
}

func serveMain(options *serveOptions) error {
	base, err := webserver.ExecutableDir()
	if err != nil {
		return err
	}
	if err := os.Chdir(base); err != nil {
		return errors.Wrap(err, "unable to change working directory")
	}

	root, err := webserver.ResolveRoot(base, options.dir)
	if err != nil {
		return err
	}
	cfg := webserver.Config{
		Host:    options.host,
		Port:    options.port,
		RootDir: root,
	}

	server, err := webserver.New(cfg, log.Default())
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return err
	}
	if addr, ok := server.Addr().(*net.TCPAddr); ok {
		cfg.Port = addr.Port
	}
	webserver.PrintBanner(color.Output, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), terminationSignals...)
	defer stop()

	if err := server.Run(ctx); err != nil {
		return err
	}
	webserver.PrintShutdown(color.Output)
	return nil
}

// mainify adapts an error-returning entry point to Cobra's signature so that
// deferred cleanup runs before the process exits.
func mainify(entry func(*cobra.Command, []string) error) func(*cobra.Command, []string) {
	return func(command *cobra.Command, arguments []string) {
		if err := entry(command, arguments); err != nil {
			fatal(err)
		}
	}
}

// fatal prints an error message to standard error and exits with status 1.
func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

func newRootCommand() *cobra.Command {
	options := &serveOptions{}
	command := &cobra.Command{
		Use:   "serve-web",
		Short: "Serve the Century Old Tunes web frontend locally",
		Args:  cobra.NoArgs,
		Run: mainify(func(_ *cobra.Command, _ []string) error {
			return serveMain(options)
		}),
	}

	flags := command.Flags()
	flags.StringVar(&options.host, "host", "", "Interface to listen on (all interfaces if empty)")
	flags.IntVarP(&options.port, "port", "p", webserver.DefaultPort, "Port to serve on")
	flags.StringVarP(&options.dir, "dir", "d", webserver.DefaultDirectory, "Directory to serve, relative to the executable")

	return command
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
