package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"sort"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nelsonlabs/morningreport/internal/config"
	"github.com/nelsonlabs/morningreport/internal/jobs"
	"github.com/nelsonlabs/morningreport/internal/logging"
	"github.com/nelsonlabs/morningreport/internal/models/whisper"
	"github.com/nelsonlabs/morningreport/internal/orchestrator"
	"github.com/nelsonlabs/morningreport/internal/pipeline"
	"github.com/nelsonlabs/morningreport/internal/provider"
	"github.com/nelsonlabs/morningreport/internal/pubmed"
	"github.com/nelsonlabs/morningreport/internal/server"
	"github.com/nelsonlabs/morningreport/internal/store"
	"github.com/nelsonlabs/morningreport/internal/transcriber"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "reportd",
	Short: "Clinical case analysis backend for pediatric morning report",
}

func init() {
	rootCmd.AddCommand(
		serveCmd(),
		providersCmd(),
		modelsCmd(),
		versionCmd(),
	)
}

func serveCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Local deployments keep API keys in a .env next to the binary.
			_ = godotenv.Load()

			manager, err := config.NewManager(config.ResolvePath(configPath))
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			cfg := manager.Get()
			logging.Init(cfg.Logging)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := manager.StartWatching(ctx); err != nil {
				return fmt.Errorf("watch configuration: %w", err)
			}
			defer manager.Stop()

			db, err := store.Open(cfg.Storage.Path)
			if err != nil {
				return fmt.Errorf("open case library: %w", err)
			}
			defer db.Close()
			cases := store.NewCaseStore(db)

			factory := orchestrator.NewFactory(
				cfg.Transcription.Providers,
				cfg.LLM.Providers,
				cfg.FactorySettings(),
				cfg.Transcription.AttemptTimeout,
			)
			transcribers, err := factory.TranscriberChain()
			if err != nil {
				return fmt.Errorf("build transcription chain: %w", err)
			}
			llms, err := factory.LLMChain()
			if err != nil {
				return fmt.Errorf("build llm chain: %w", err)
			}

			var enricher pipeline.Enricher
			if cfg.PubMed.Enabled {
				enricher = pubmed.New(
					pubmed.WithRetMax(cfg.PubMed.RetMax),
					pubmed.WithContact(cfg.PubMed.Tool, cfg.PubMed.Email),
				)
			}

			pipe := pipeline.New(transcribers, llms, enricher, cases)
			tracker := jobs.NewTracker(ctx, 0)
			defer tracker.Close()

			dialers := func() (transcriber.StreamDialer, error) {
				return manager.Get().StreamDialer()
			}

			return server.New(manager, pipe, tracker, cases, dialers).Run(ctx)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config.toml")
	return cmd
}

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List known AI providers and their capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			names := provider.List()
			sort.Strings(names)
			for _, name := range names {
				p := provider.Get(name)
				if p == nil {
					continue
				}
				var caps []string
				if p.SupportsTranscription() {
					caps = append(caps, "transcription")
				}
				if p.SupportsStreaming() {
					caps = append(caps, "streaming")
				}
				if p.SupportsLLM() {
					caps = append(caps, "llm")
				}
				status := "no key needed"
				switch {
				case p.RequiresAPIKey():
					status = "key missing"
					if envVar := provider.EnvVarForProvider(name); envVar != "" && os.Getenv(envVar) != "" {
						status = "key set"
					}
				case name == provider.ProviderWhisperCpp:
					if _, err := exec.LookPath("whisper-cli"); err != nil {
						status = "whisper-cli not installed"
					}
				}
				fmt.Printf("%-12s %-22s %s\n", name, fmt.Sprint(caps), status)
			}
			return nil
		},
	}
}

func modelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage local whisper.cpp models",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List known models and their install state",
			RunE: func(cmd *cobra.Command, args []string) error {
				for _, m := range whisper.List() {
					state := "available"
					if whisper.IsInstalled(m.ID) {
						state = "installed"
					}
					kind := "english-only"
					if m.Multilingual {
						kind = "multilingual"
					}
					fmt.Printf("%-10s %-14s %s\n", m.ID, kind, state)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "download <model-id>",
			Short: "Download a model from the whisper.cpp releases",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var lastPct int64 = -1
				err := whisper.Download(cmd.Context(), args[0], func(downloaded, total int64) {
					if total <= 0 {
						return
					}
					pct := downloaded * 100 / total
					if pct != lastPct {
						lastPct = pct
						fmt.Printf("\r%s: %d%%", args[0], pct)
					}
				})
				fmt.Println()
				return err
			},
		},
		&cobra.Command{
			Use:   "remove <model-id>",
			Short: "Delete a downloaded model",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return whisper.Remove(args[0])
			},
		},
	)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}
