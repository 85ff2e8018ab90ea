package cli

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/rmkfs/rmkfs/internal/config"
	"github.com/rmkfs/rmkfs/internal/fuseadapter"
	"github.com/rmkfs/rmkfs/internal/mountmanager"
	"github.com/rmkfs/rmkfs/internal/querycontext"
	"github.com/rmkfs/rmkfs/internal/renderer"
	"github.com/rmkfs/rmkfs/internal/scanner"
	"github.com/rmkfs/rmkfs/internal/shutdown"
)

const (
	fsName  = "remarkable"
	volName = "Remarkable"
)

func newDaemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon [root] [mountpoint]",
		Short: "Scan, mount, and serve the filesystem until a shutdown signal arrives",
		Args:  cobra.MaximumNArgs(2),
		RunE:  runDaemon,
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	root := cfg.CacheRoot
	if len(args) > 0 {
		root = args[0]
	}
	mountpoint := cfg.MountPoint
	if len(args) > 1 {
		mountpoint = args[1]
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	qc, err := querycontext.New()
	if err != nil {
		return err
	}
	defer qc.Close()

	sc, err := scanner.New(root, qc)
	if err != nil {
		return err
	}
	if err := sc.Scan(ctx); err != nil {
		return err
	}

	pool := renderer.NewPool(root, renderer.DefaultPoolSize, renderer.NewMinimalRenderer())
	mgr := mountmanager.New()

	if _, err := mgr.Mount(mountpoint, fsName, volName); err != nil {
		return err
	}
	defer mgr.Close()

	filesystem := fuseadapter.New(qc, pool, cfg.TTL)

	serveErr := make(chan error, 1)
	go func() { serveErr <- mgr.Serve(filesystem) }()

	sup := shutdown.New()
	shutdown.Wait(ctx, sup, func(context.Context) struct{} {
		mgr.Close()
		return struct{}{}
	})

	if err := <-serveErr; err != nil {
		log.Printf("rmkfs: serve returned: %v", err)
	}
	return nil
}
