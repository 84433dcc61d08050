package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/juridoc/internal/model"
	"github.com/ppiankov/juridoc/internal/pipeline"
	"github.com/ppiankov/juridoc/internal/server"
)

var envFile string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the annotation and summarization HTTP service",
	Long: `Serve starts the HTTP service:

  POST   /annotate-document            submit a document for annotation
  POST   /summarize-document           submit an annotated document for summarization
  GET    /task-status/{task_id}        task status and timestamps
  GET    /annotated-document/{task_id} annotated document once completed
  GET    /summarized-document/{task_id} summary once completed
  DELETE /task/{task_id}               cancel a pending task
  GET    /health                       service and model endpoint status

Example:
  juridoc serve
  juridoc serve --addr :8080 --log-format json
  VLLM_ENDPOINT=http://gpu-host:9020/v1 juridoc serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8000", "listen address")
	serveCmd.Flags().Int("workers", 4, "tasks executed at once")
	serveCmd.Flags().Int("max-concurrency", 6, "concurrent inference calls across all tasks")
	serveCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("tasks.workers", serveCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("llm.max_concurrency", serveCmd.Flags().Lookup("max-concurrency"))
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("env-file") {
			return fmt.Errorf("load env file: %w", err)
		}
	}

	logger := newLogger(os.Stderr)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}

	manager := p.NewTaskManager()
	handler := server.New(manager, p.Provider(), logger)
	srv := server.NewServer(cfg.Server, server.NewRouter(handler, cfg.Server.CORSOrigins, logger), logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting juridoc",
		"version", version,
		"provider", p.Provider().Name(),
		"model_endpoint", cfg.LLM.BaseURL,
		"workers", cfg.Tasks.Workers,
		"max_concurrency", cfg.LLM.MaxConcurrency,
		"admission", cfg.Tasks.Admission)

	serveErr := srv.Run(ctx)

	// Queued and running tasks get the same grace period as open requests
	shutdownCtx, cancel := context.WithTimeout(context.Background(), model.Seconds(cfg.Server.ShutdownTimeout))
	defer cancel()
	manager.Shutdown(shutdownCtx)

	return serveErr
}
