// Command ferry copies files and directory trees between storage backends.
//
// Usage:
//
//	ferry [-config profiles.yaml] [-log-level LEVEL] [-metrics-addr ADDR] COMMAND ...
//
//	ferry cp [-r] SRC DST    copy a file, directory, or glob pattern
//	ferry ls [-r] LOCATION   list entries under a location
//
// SRC, DST and LOCATION are storage URIs: mem://, file://, s3://, badger://
// or profile:// for named profiles from the config file. Glob patterns go
// in the path part: "s3://bucket/logs/**/*.gz".
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marmos91/ferry/internal/logger"
	"github.com/marmos91/ferry/pkg/copy"
	"github.com/marmos91/ferry/pkg/list"
	"github.com/marmos91/ferry/pkg/metrics"
	promMetrics "github.com/marmos91/ferry/pkg/metrics/prometheus"
	"github.com/marmos91/ferry/pkg/registry"
	"github.com/marmos91/ferry/pkg/storage"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := flag.NewFlagSet("ferry", flag.ExitOnError)
	configPath := flags.String("config", "", "Path to the profiles config file")
	logLevel := flags.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	metricsAddr := flags.String("metrics-addr", "", "Expose Prometheus metrics on this address (e.g. :9090)")
	flags.Usage = usage(flags)

	if err := flags.Parse(args); err != nil {
		return 2
	}

	logger.SetLevel(*logLevel)

	rest := flags.Args()
	if len(rest) < 1 {
		flags.Usage()
		return 2
	}

	reg := registry.Default()

	if *configPath != "" {
		profiles, err := registry.LoadProfiles(*configPath)
		if err != nil {
			logger.Error("%v", err)
			return 1
		}

		reg.SetProfiles(profiles)
	}

	collector := metrics.NewNoopCopyMetrics()
	if *metricsAddr != "" {
		collector = promMetrics.NewCopyMetrics(prometheus.DefaultRegisterer)

		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				logger.Warn("metrics server stopped: %v", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error

	switch rest[0] {
	case "cp":
		err = runCopy(ctx, reg, collector, rest[1:])
	case "ls":
		err = runList(ctx, reg, rest[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", rest[0])
		flags.Usage()
		return 2
	}

	if err != nil {
		logger.Error("%v", err)
		return 1
	}

	return 0
}

func usage(flags *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "Usage: ferry [flags] COMMAND ...\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  cp [-r] SRC DST    copy a file, directory, or glob pattern\n")
		fmt.Fprintf(os.Stderr, "  ls [-r] LOCATION   list entries under a location\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flags.PrintDefaults()
	}
}

func runCopy(ctx context.Context, reg *registry.Registry, collector metrics.CopyMetrics, args []string) error {
	flags := flag.NewFlagSet("cp", flag.ExitOnError)
	recursive := flags.Bool("r", false, "Copy directories recursively")

	if err := flags.Parse(args); err != nil {
		return err
	}

	if flags.NArg() != 2 {
		return errors.New("cp needs exactly two arguments: SRC and DST")
	}

	source, sourcePath, err := reg.Open(ctx, flags.Arg(0))
	if err != nil {
		return err
	}
	defer closeStore(source)

	destination, destinationPath, err := reg.Open(ctx, flags.Arg(1))
	if err != nil {
		return err
	}
	defer closeStore(destination)

	copier := copy.New(source, destination, collector)

	return copier.Copy(ctx, sourcePath, destinationPath, copy.Options{Recursive: *recursive})
}

func runList(ctx context.Context, reg *registry.Registry, args []string) error {
	flags := flag.NewFlagSet("ls", flag.ExitOnError)
	recursive := flags.Bool("r", false, "List entries recursively")

	if err := flags.Parse(args); err != nil {
		return err
	}

	if flags.NArg() != 1 {
		return errors.New("ls needs exactly one argument: LOCATION")
	}

	store, path, err := reg.Open(ctx, flags.Arg(0))
	if err != nil {
		return err
	}
	defer closeStore(store)

	entries, err := list.List(ctx, store, path, storage.ListOptions{Recursive: *recursive})
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			fmt.Printf("%12s  %s\n", "-", entry.Path)
			continue
		}

		fmt.Printf("%12d  %s\n", entry.Size, entry.Path)
	}

	return nil
}

// closeStore releases backends that hold external resources (Badger's
// database lock, for one). Stores without a Close are left alone.
func closeStore(store storage.Store) {
	if closer, ok := store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Warn("failed to close store: %v", err)
		}
	}
}
