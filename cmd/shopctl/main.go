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

	"github.com/spf13/pflag"

	"github.com/samvad-hq/cabbage-miniapp/internal/app"
	"github.com/samvad-hq/cabbage-miniapp/internal/config"
	"github.com/samvad-hq/cabbage-miniapp/internal/logger"
	"github.com/samvad-hq/cabbage-miniapp/pkg/shopapi"
)

const (
	cmdCategoryCreate = "category create"
	cmdCategoryDelete = "category delete"
	cmdOrderCreate    = "order create"
	cmdHistory        = "history"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "shopctl: %v\n", err)
		os.Exit(1)
	}
}

type invocation struct {
	command    string
	file       string
	id         int64
	limit      int
	apiBaseURL string
	logLevel   string
}

func parseArgs(args []string) (invocation, error) {
	var inv invocation

	fs := pflag.NewFlagSet("shopctl", pflag.ContinueOnError)
	fs.StringVarP(&inv.file, "file", "f", "", "payload file (YAML or JSON)")
	fs.Int64Var(&inv.id, "id", 0, "category id")
	fs.IntVar(&inv.limit, "limit", 20, "number of journal entries to show")
	fs.StringVar(&inv.apiBaseURL, "api-base-url", "", "override api_base_url")
	fs.StringVar(&inv.logLevel, "log-level", "", "override log_level")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: shopctl <%s|%s|%s|%s> [flags]\n",
			cmdCategoryCreate, cmdCategoryDelete, cmdOrderCreate, cmdHistory)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return inv, err
	}

	inv.command = strings.Join(fs.Args(), " ")
	switch inv.command {
	case cmdCategoryCreate, cmdOrderCreate:
		if inv.file == "" {
			return inv, fmt.Errorf("%s requires --file", inv.command)
		}
	case cmdCategoryDelete:
		if !fs.Changed("id") {
			return inv, fmt.Errorf("%s requires --id", inv.command)
		}
	case cmdHistory:
		if inv.limit < 0 {
			return inv, fmt.Errorf("--limit must not be negative")
		}
	case "":
		return inv, errors.New("missing command")
	default:
		return inv, fmt.Errorf("unknown command %q", inv.command)
	}
	return inv, nil
}

func run(args []string, stdout io.Writer) error {
	inv, err := parseArgs(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if inv.apiBaseURL != "" {
		cfg.APIBaseURL = inv.apiBaseURL
	}
	if inv.logLevel != "" {
		cfg.LogLevel = inv.logLevel
	}
	if err := cfg.Finalize(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shop, err := app.NewShop(ctx, cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize shop", "error", map[string]any{"error": err.Error()})
		return err
	}
	defer shop.Close()

	result, err := dispatch(ctx, shop, inv)
	if err != nil {
		return err
	}
	return writeJSON(stdout, result)
}

func dispatch(ctx context.Context, shop *app.Shop, inv invocation) (any, error) {
	switch inv.command {
	case cmdCategoryCreate:
		var payload shopapi.CategoryPayload
		if err := app.LoadPayload(inv.file, &payload); err != nil {
			return nil, err
		}
		return shop.CreateCategory(ctx, payload)
	case cmdCategoryDelete:
		return shop.DeleteCategory(ctx, inv.id)
	case cmdOrderCreate:
		var payload shopapi.OrderPayload
		if err := app.LoadPayload(inv.file, &payload); err != nil {
			return nil, err
		}
		return shop.CreateOrder(ctx, payload)
	case cmdHistory:
		return shop.History(inv.limit)
	default:
		return nil, fmt.Errorf("unknown command %q", inv.command)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
