// Command fatura-cli talks to the fatura API and keeps a local snapshot of
// the ledger.
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

	"github.com/joho/godotenv"

	"fatura/internal/config"
	"fatura/internal/log"
)

const usage = `usage: fatura-cli <command> [flags] [args]

commands:
  login          -email E -password P [-register -name N]
  logout
  status         show the local snapshot
  sync           fetch every collection into the local snapshot
  summary        [-year Y] print the monthly summary
  installments   [-account A -desc D -date YYYY-MM-DD -dry-run] <total> <n>
  rm             <account|transaction|bill|category> <id>
  split          <total> <n> split an amount into installments
  invoice-month  <date> <cutoff> resolve the card invoice of a purchase
`

var errUsage = errors.New("bad usage")

func main() {
	// Optional outside local development.
	_ = godotenv.Load()

	logCfg := log.ConfigFromEnv("fatura-cli")
	if os.Getenv("LOG_LEVEL") == "" {
		logCfg.Level = log.ParseLevel("warn")
	}
	logCfg.Output = os.Stderr
	log.SetDefault(log.New(logCfg))

	cfg := config.Load()
	if err := cfg.ValidateClient(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]

	// Offline commands never touch the API or the snapshot.
	switch cmd {
	case "split":
		return runSplit(args, out)
	case "invoice-month":
		return runInvoiceMonth(args, out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	switch cmd {
	case "login":
		return a.login(ctx, args, out)
	case "logout":
		return a.logout(out)
	case "status":
		return a.status(out)
	case "sync":
		return a.sync(ctx, out)
	case "summary":
		return a.summary(ctx, args, out)
	case "installments":
		return a.installments(ctx, args, out)
	case "rm":
		return a.remove(ctx, args, out)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}
