// Command barcodectl runs maintenance tasks against the barcode store:
// stats, search, export, import, cleanup, orphan detection and admin
// token minting.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/atinyakov/barcoder/internal/app"
	"github.com/atinyakov/barcoder/internal/app/service"
	"github.com/atinyakov/barcoder/internal/clock"
	"github.com/atinyakov/barcoder/internal/config"
	"github.com/atinyakov/barcoder/internal/logger"
	"github.com/atinyakov/barcoder/internal/maintenance"
	"github.com/atinyakov/barcoder/internal/storage"
)

const usage = `usage: barcodectl [global flags] <command> [flags]

commands:
  stats                     record totals by type, source and category
  search <query> [--limit]  find records by product name, product id or barcode id
  export [file]             write all records as JSON (".lz4" suffix compresses)
  import <file>             load records from an export, skipping existing ids
  cleanup [--days]          delete records older than N days and their images
  orphans [--remove]        list images without a record, older than --min-age (10m)
  token [--subject]         mint an admin token for the cleanup endpoint
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		fmt.Fprintln(os.Stderr, "barcodectl:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	options, rest, err := config.Parse("barcodectl", args)
	if errors.Is(err, pflag.ErrHelp) {
		fmt.Fprint(stdout, usage)
		return nil
	}
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}

	log := logger.New()
	if err := log.InitConsole(options.LogLevel); err != nil {
		return err
	}
	defer func() {
		_ = log.Log.Sync()
	}()

	cmd, cmdArgs := rest[0], rest[1:]

	if cmd == "token" {
		return runToken(options, cmdArgs, stdout)
	}

	a, err := app.New(options, log.Log)
	if err != nil {
		return err
	}
	defer a.Close()

	tool := maintenance.New(a.Store, a.Artifacts, clock.Real(), log.Log)

	switch cmd {
	case "stats":
		stats, err := tool.Stats(ctx)
		if err != nil {
			return err
		}
		return writeJSON(stdout, stats)

	case "search":
		fs := pflag.NewFlagSet("search", pflag.ContinueOnError)
		limit := fs.Int("limit", 10, "maximum number of results")
		if err := fs.Parse(cmdArgs); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return fmt.Errorf("%w: search takes exactly one query", errUsage)
		}
		records, err := tool.Search(ctx, fs.Arg(0), *limit)
		if err != nil {
			return err
		}
		return printRecords(stdout, records)

	case "export":
		path := maintenance.DefaultExportFile
		if len(cmdArgs) > 0 {
			path = cmdArgs[0]
		}
		n, err := tool.Export(ctx, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "exported %d records to %s\n", n, path)
		return nil

	case "import":
		if len(cmdArgs) != 1 {
			return fmt.Errorf("%w: import takes exactly one file", errUsage)
		}
		res, err := tool.Import(ctx, cmdArgs[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "imported %d records, skipped %d existing\n", res.Imported, res.Skipped)
		return nil

	case "cleanup":
		fs := pflag.NewFlagSet("cleanup", pflag.ContinueOnError)
		days := fs.Int("days", 30, "delete records older than this many days")
		if err := fs.Parse(cmdArgs); err != nil {
			return err
		}
		retention, err := service.RetentionDays(*days)
		if err != nil {
			return err
		}
		res, err := a.Service.Cleanup(ctx, retention)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "deleted %d records older than %d days, removed %d images\n", res.Deleted, *days, res.ArtifactsRemoved)
		return nil

	case "orphans":
		fs := pflag.NewFlagSet("orphans", pflag.ContinueOnError)
		remove := fs.Bool("remove", false, "delete the orphaned images")
		minAge := fs.Duration("min-age", maintenance.DefaultOrphanMinAge, "ignore images modified more recently than this")
		if err := fs.Parse(cmdArgs); err != nil {
			return err
		}
		orphans, err := tool.Orphans(ctx, *minAge, *remove)
		if err != nil {
			return err
		}
		for _, p := range orphans {
			fmt.Fprintln(stdout, p)
		}
		verb := "found"
		if *remove {
			verb = "removed"
		}
		fmt.Fprintf(stdout, "%s %d orphaned images\n", verb, len(orphans))
		return nil

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func runToken(options *config.Options, args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("token", pflag.ContinueOnError)
	subject := fs.String("subject", "barcodectl", "token subject")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if options.AdminSecret == "" {
		return errors.New("admin secret is not configured (-k or ADMIN_SECRET)")
	}

	token, err := service.NewAuth(options.AdminSecret, clock.Real()).BuildJWTString(*subject)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, token)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRecords(w io.Writer, records []storage.BarcodeRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BARCODE ID\tTYPE\tPRODUCT\tCREATED")
	for _, r := range records {
		product := "N/A"
		if r.ProductName != nil {
			product = *r.ProductName
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.BarcodeID, r.Type, strings.TrimSpace(product), r.CreatedAt.Format(time.RFC3339))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d results\n", len(records))
	return nil
}
