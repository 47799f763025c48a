package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"shoppr/internal/app"
	"shoppr/internal/config"
	"shoppr/internal/database"
	"shoppr/internal/llm"
	"shoppr/internal/metrics"
	"shoppr/internal/organizer"
	"shoppr/internal/shopping"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewDB(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	var provider llm.Provider
	switch cfg.Provider {
	case "gemini":
		provider, err = llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			logger.Fatal("failed to initialize Gemini client", zap.Error(err))
		}
	default:
		provider = llm.NewLiteLLMClient(cfg, logger)
	}
	defer provider.Close()

	metricsStore := metrics.NewStore(db.SQL)
	gateway := llm.NewGateway(provider, cfg, metricsStore, logger)
	org := organizer.New(gateway, logger)
	store := shopping.NewSQLiteStore(db.SQL, logger)
	application := app.NewApp(store, org, cfg.Retention(), logger)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "process":
		cmd := flag.NewFlagSet("process", flag.ExitOnError)
		supermarket := cmd.String("store", "", "Supermarket key (e.g. tesco); empty for generic layout")
		cmd.Parse(os.Args[2:])

		text, err := readInput(cmd.Args())
		if err != nil {
			logger.Fatal("failed to read input", zap.Error(err))
		}
		view, err := application.CreateFromText(ctx, text, *supermarket)
		if err != nil {
			fail(err)
		}
		printList(view)

	case "process-image":
		cmd := flag.NewFlagSet("process-image", flag.ExitOnError)
		supermarket := cmd.String("store", "", "Supermarket key (e.g. tesco); empty for generic layout")
		cmd.Parse(os.Args[2:])
		if cmd.NArg() != 1 {
			log.Fatal("process-image requires an image file argument")
		}

		data, err := os.ReadFile(cmd.Arg(0))
		if err != nil {
			logger.Fatal("failed to read image", zap.Error(err))
		}
		view, err := application.CreateFromImage(ctx, data, *supermarket)
		if err != nil {
			fail(err)
		}
		printList(view)

	case "show":
		if len(os.Args) != 3 {
			log.Fatal("show requires a list id")
		}
		view, err := application.GetList(ctx, os.Args[2])
		if err != nil {
			fail(err)
		}
		printList(view)

	case "edit":
		if len(os.Args) != 4 {
			log.Fatal("edit requires a list id and an instruction")
		}
		result, err := application.ApplyEdit(ctx, os.Args[2], os.Args[3])
		if err != nil {
			fail(err)
		}
		for _, w := range result.Warnings {
			fmt.Printf("warning: %s\n", w)
		}
		printList(result.List)

	case "check":
		if len(os.Args) != 5 {
			log.Fatal("check requires a list id, an item id, and true/false")
		}
		itemID, err := strconv.Atoi(os.Args[3])
		if err != nil {
			log.Fatalf("invalid item id %q", os.Args[3])
		}
		checked, err := strconv.ParseBool(os.Args[4])
		if err != nil {
			log.Fatalf("invalid checked value %q", os.Args[4])
		}
		item, err := application.SetItemChecked(ctx, os.Args[2], itemID, checked)
		if err != nil {
			fail(err)
		}
		fmt.Printf("%s %s\n", checkbox(item.Checked), item.Name)

	case "delete":
		if len(os.Args) != 3 {
			log.Fatal("delete requires a list id")
		}
		if err := application.DeleteList(ctx, os.Args[2]); err != nil {
			fail(err)
		}
		fmt.Println("Deleted.")

	case "progress":
		if len(os.Args) != 3 {
			log.Fatal("progress requires a list id")
		}
		p, err := application.GetProgress(ctx, os.Args[2])
		if err != nil {
			fail(err)
		}
		fmt.Printf("%d of %d items checked\n", p.Checked, p.Total)

	case "cleanup":
		purged, err := application.PurgeExpired(ctx)
		if err != nil {
			fail(err)
		}
		fmt.Printf("Deleted %d expired shopping list(s).\n", purged)

	case "usage":
		cmd := flag.NewFlagSet("usage", flag.ExitOnError)
		days := cmd.Int("days", 7, "Number of days to report")
		cmd.Parse(os.Args[2:])

		usage, err := metricsStore.GetDailyUsage(ctx, *days)
		if err != nil {
			fail(err)
		}
		for _, u := range usage {
			fmt.Printf("%s  calls=%d  prompt=%d  completion=%d  cost=$%.4f\n",
				u.Date, u.Calls, u.TotalPrompt, u.TotalCompletion, u.TotalCostUSD)
		}

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// readInput reads list text from the file argument, or stdin when absent.
func readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(args[0])
	return string(data), err
}

func printList(view *app.ListView) {
	store := view.SupermarketDisplay
	if store == "" {
		store = "Generic layout"
	}
	fmt.Printf("List %s (%s)\n", view.Slug, store)
	for _, group := range view.Groups {
		fmt.Printf("\n%s\n", group.AreaDisplay)
		for _, item := range group.Items {
			line := item.Name
			if item.Quantity != "" {
				line = fmt.Sprintf("%s (%s)", item.Name, item.Quantity)
			}
			fmt.Printf("  %s #%d %s\n", checkbox(item.Checked), item.ID, line)
		}
	}
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

// fail prints the stable error kind and hint when available, then exits.
func fail(err error) {
	var f interface {
		Kind() string
		Hint() string
	}
	if errors.As(err, &f) {
		fmt.Fprintf(os.Stderr, "error (%s): %v\n%s\n", f.Kind(), err, f.Hint())
	} else {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(1)
}

func printUsage() {
	fmt.Println("Usage: shoppr <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  process [-store key] [file]          Turn list text into a categorized list")
	fmt.Println("  process-image [-store key] <file>    Turn a photo of a list into a categorized list")
	fmt.Println("  show <id>                            Print a list")
	fmt.Println("  edit <id> <instruction>              Apply a natural-language edit")
	fmt.Println("  check <id> <item> <true|false>       Toggle an item's checked state")
	fmt.Println("  delete <id>                          Delete a list")
	fmt.Println("  progress <id>                        Show checked/total progress")
	fmt.Println("  cleanup                              Delete lists past their retention window")
	fmt.Println("  usage [-days N]                      Show LLM usage and cost per day")
}
