package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/report"
	"fintrack/internal/seed"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

const usage = `Usage: fintrack-admin <command> [flags]

Commands:
  migrate up|down            apply or roll back schema migrations
  seed -kind KIND -n N       create N fake records (KIND: expense|income)
  list -kind KIND            print all records as a table
`

func main() {
	cli.LoadEnvFile()
	bootLogger := cli.SetupLogger(nil)
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = log.IntoContext(ctx, logger)

	if err := run(ctx, cfg, os.Args[1:], os.Stdout); err != nil {
		logger.Error("Command failed", log.FieldError, err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("missing command")
	}

	switch args[0] {
	case "migrate":
		return runMigrate(ctx, cfg, args[1:])
	case "seed":
		return runSeed(ctx, cfg, args[1:], out)
	case "list":
		return runList(ctx, cfg, args[1:], out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runMigrate(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: migrate up|down")
	}
	logger := log.FromContext(ctx).WithComponent(log.ComponentStorage)
	d, dsn := backend.BackendType(cfg.DataBackend).Dialect(), cfg.DSN()

	var err error
	switch args[0] {
	case "up":
		err = storage.RunMigrations(d, dsn)
	case "down":
		err = storage.MigrateDown(d, dsn)
	default:
		return fmt.Errorf("unknown migrate direction %q", args[0])
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", args[0], err)
	}

	version, dirty, err := storage.MigrationVersion(d, dsn)
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	logger.InfoContext(ctx, "Migrations applied",
		log.FieldOperation, log.OpMigrate,
		"direction", args[0],
		"version", version,
		"dirty", dirty)
	return nil
}

func parseKindFlag(fs *flag.FlagSet, args []string) (core.Kind, error) {
	kindName := fs.String("kind", "expense", "record kind: expense or income")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	return core.ParseKind(*kindName)
}

func openStore(ctx context.Context, cfg *config.Config) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(log.FromContext(ctx)).CreateBackend(ctx, bcfg)
}

func runSeed(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(out)
	n := fs.Int("n", 20, "number of records to create")
	seedValue := fs.Int64("seed", time.Now().UnixNano(), "random seed")
	kind, err := parseKindFlag(fs, args)
	if err != nil {
		return err
	}
	if *n < 1 {
		return fmt.Errorf("-n must be positive, got %d", *n)
	}

	result, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer result.Cleanup()

	sess := result.Store.Session()
	defer sess.Close()

	svc := services.NewRecordService(kind, log.FromContext(ctx))
	created, err := seed.Run(ctx, svc, sess, seed.NewGenerator(*seedValue), *n)
	fmt.Fprintf(out, "created %d %s\n", created, kind.Plural())
	return err
}

func runList(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(out)
	kind, err := parseKindFlag(fs, args)
	if err != nil {
		return err
	}

	result, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer result.Cleanup()

	sess := result.Store.Session()
	defer sess.Close()

	items, err := services.NewRecordService(kind, log.FromContext(ctx)).List(ctx, sess)
	if err != nil {
		return err
	}
	report.Records(out, kind, items)
	return nil
}
