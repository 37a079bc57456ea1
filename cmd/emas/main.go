package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"
)

func main() {
	o := newOptions()
	o.addFlags(pflag.CommandLine)

	klogFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(klogFlags)
	pflag.CommandLine.AddGoFlagSet(klogFlags)
	pflag.Parse()
	defer klog.Flush()

	if err := o.validate(); err != nil {
		fmt.Fprintf(os.Stderr, "emas: %v\n", err)
		pflag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger := klog.Background().WithName("emas")
	ctx = logr.NewContext(ctx, logger)

	if err := run(ctx, logger, o); err != nil {
		logger.Error(err, "Run failed")
		klog.Flush()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger logr.Logger, o *options) error {
	if err := os.MkdirAll(o.outputDir, 0o755); err != nil {
		return err
	}
	if o.compare {
		return compare(ctx, logger, o)
	}
	return single(ctx, logger, o)
}

func outputPath(o *options, name string) string {
	return filepath.Join(o.outputDir, name)
}
