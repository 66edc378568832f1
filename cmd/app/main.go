package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/oddrun/ansuz/internal"
	"github.com/oddrun/ansuz/internal/distill"
	"github.com/oddrun/ansuz/internal/mcpserver"
	"github.com/oddrun/ansuz/internal/noteservice"
	"github.com/oddrun/ansuz/internal/pack"
	"github.com/oddrun/ansuz/internal/scaffold"
	"github.com/oddrun/ansuz/internal/storage"
	"github.com/oddrun/ansuz/internal/vault"
	pkgconfig "github.com/oddrun/ansuz/pkg/config"
)

// loadConfig reads the optional YAML config; missing files leave the
// defaults in place.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfExists(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// cliLogger logs human-readable lines to stderr so command output stays
// clean on stdout.
func cliLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func openVault(cfg *internal.Config) (*storage.FS, error) {
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	return storage.NewFS(cfg.Vault.Path)
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// MCP talks JSON-RPC on stdout; logs must stay on stderr.
	logger := cliLogger(cfg.App.LogLevel)

	store, db, err := internal.Setup(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := noteservice.NewService(store, db, cfg.Templates.Path, logger)
	return mcpserver.New(svc).ServeStdio()
}

func runPack(ctx context.Context, cmd *cli.Command) error {
	question := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required: ansuz pack \"how do we ...\"")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := cliLogger(cfg.App.LogLevel)

	store, err := openVault(cfg)
	if err != nil {
		return err
	}
	notes, stats, err := vault.Load(store, logger)
	if err != nil {
		return err
	}
	logger.Info("vault loaded", slog.Int("notes", stats.Loaded), slog.Int("skipped", stats.Skipped))

	p := pack.Params{
		Question:   question,
		Seeds:      cmd.StringSlice("seed"),
		Hops:       intFlag(cmd, "hops", cfg.Pack.Hops),
		RecentDays: intFlag(cmd, "recent-days", cfg.Pack.RecentDays),
		TopK:       intFlag(cmd, "topk", cfg.Pack.TopK),
		MaxTokens:  intFlag(cmd, "max-tokens", cfg.Pack.MaxTokens),
		Now:        time.Now(),
	}
	res := pack.Build(notes, p, logger)

	if cmd.Bool("stdout") {
		fmt.Println(res.Document)
		return nil
	}

	outPath := cmd.String("out")
	if outPath == "" {
		outPath = pack.OutputPath(cfg.Pack.OutputDir, question, p.Now)
	}
	if dir := dirOf(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(outPath, []byte(res.Document), 0o644); err != nil {
		return fmt.Errorf("write pack: %w", err)
	}

	fmt.Printf("wrote %s (%d/%d notes, ~%d tokens)\n", outPath, res.Included, res.Candidates, res.EstTokens)
	return nil
}

func runNew(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) < 2 {
		return fmt.Errorf("usage: ansuz new <type> <title> (types: %s)", strings.Join(scaffold.Types(), ", "))
	}
	noteType := args[0]
	title := strings.Join(args[1:], " ")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := openVault(cfg)
	if err != nil {
		return err
	}

	res, err := scaffold.Create(store, cfg.Templates.Path, noteType, title, cmd.String("slug"), time.Now(), cmd.Bool("force"))
	if err != nil {
		return err
	}
	fmt.Printf("created %s (id: %s)\n", res.Path, res.ID)
	return nil
}

func runDistill(ctx context.Context, cmd *cli.Command) error {
	topic := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if topic == "" {
		return fmt.Errorf("a topic is required: ansuz distill \"session topic\"")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := openVault(cfg)
	if err != nil {
		return err
	}

	in := distill.Input{
		Topic:     topic,
		Context:   cmd.String("context"),
		Decisions: cmd.String("decisions"),
		Knowledge: cmd.String("knowledge"),
		Tasks:     cmd.String("tasks"),
		Questions: cmd.String("questions"),
		Links:     cmd.StringSlice("link"),
	}
	res, err := distill.Create(store, in, time.Now(), cmd.Bool("force"))
	if err != nil {
		return err
	}
	fmt.Printf("created %s (id: %s)\n", res.Path, res.ID)
	return nil
}

func intFlag(cmd *cli.Command, name string, def int) int {
	if cmd.IsSet(name) {
		return int(cmd.Int(name))
	}
	return def
}

func dirOf(path string) string {
	if i := strings.LastIndexByte(path, os.PathSeparator); i > 0 {
		return path[:i]
	}
	if i := strings.LastIndexByte(path, '/'); i > 0 {
		return path[:i]
	}
	return ""
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:  "ansuz",
		Usage: "Personal knowledge vault: Markdown notes, link graph, and context packs for LLM sessions",
		Flags: []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:      "pack",
				Usage:     "Assemble a context pack for a question",
				ArgsUsage: "<question>",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringSliceFlag{Name: "seed", Aliases: []string{"s"}, Usage: "Seed note id for link expansion (repeatable)"},
					&cli.IntFlag{Name: "hops", Usage: "Link expansion depth"},
					&cli.IntFlag{Name: "recent-days", Usage: "Recency window in days"},
					&cli.IntFlag{Name: "topk", Usage: "Keyword-ranked candidate slots"},
					&cli.IntFlag{Name: "max-tokens", Usage: "Approximate token budget"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output file path (default: timestamped file in the pack output dir)"},
					&cli.BoolFlag{Name: "stdout", Usage: "Print the document instead of writing a file"},
				},
				Action: runPack,
			},
			{
				Name:      "new",
				Usage:     "Scaffold a new note from a type template",
				ArgsUsage: "<type> <title>",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{Name: "slug", Usage: "File slug (derived from the title when omitted)"},
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Overwrite an existing note"},
				},
				Action: runNew,
			},
			{
				Name:      "distill",
				Usage:     "Write a dated session log note",
				ArgsUsage: "<topic>",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{Name: "context", Usage: "What the session was about"},
					&cli.StringFlag{Name: "decisions", Usage: "Decisions made"},
					&cli.StringFlag{Name: "knowledge", Usage: "New knowledge worth keeping"},
					&cli.StringFlag{Name: "tasks", Usage: "Follow-up tasks"},
					&cli.StringFlag{Name: "questions", Usage: "Open questions"},
					&cli.StringSliceFlag{Name: "link", Usage: "Note id to link (repeatable)"},
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Overwrite an existing log"},
				},
				Action: runDistill,
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP API with file watching and SSE",
				Flags:  []cli.Flag{configFlag},
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdio",
				Flags:  []cli.Flag{configFlag},
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
