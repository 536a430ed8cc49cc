package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	log "github.com/sirupsen/logrus"

	"github.com/bodybybuddha/bbl-shutter-cam/internal/ble"
	"github.com/bodybybuddha/bbl-shutter-cam/internal/cli"
	"github.com/bodybybuddha/bbl-shutter-cam/internal/config"
	"github.com/bodybybuddha/bbl-shutter-cam/internal/logging"
)

func main() {
	var root cli.CLI
	kctx := kong.Parse(&root,
		kong.Name(config.AppName),
		kong.Description("Capture photos with rpicam-still when a BLE shutter remote fires."),
		kong.UsageOnError(),
		kong.Vars{"default_device": ble.DefaultDeviceName},
	)

	level := root.LogLevel
	if root.Verbose {
		level = "debug"
	}
	closeLogs, err := logging.Setup(level, root.LogFormat, root.LogFile)
	if err != nil {
		log.Fatalf("logging setup failed: %v", err)
	}
	defer closeLogs()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	kctx.BindTo(ctx, (*context.Context)(nil))

	kctx.FatalIfErrorf(kctx.Run(&root))
}
