package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/theimaginaryfoundation/journal-coach/journal"
	"github.com/theimaginaryfoundation/journal-coach/journal/backend"
	"github.com/theimaginaryfoundation/journal-coach/journal/config"
	"github.com/theimaginaryfoundation/journal-coach/journal/fileutils"
	"github.com/theimaginaryfoundation/journal-coach/journal/httpapi"
	"github.com/theimaginaryfoundation/journal-coach/journal/logging"
	"github.com/theimaginaryfoundation/journal-coach/journal/provider"
)

// errOperationFailed marks a command whose envelope reported success=false. The envelope has
// already been printed, so main only sets the exit code.
var errOperationFailed = errors.New("operation failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: defaultConfig(), stdin: os.Stdin}
	root := newRootCmd(a)
	err := root.ExecuteContext(ctx)
	a.syncLogger()
	if err != nil {
		if !errors.Is(err, errOperationFailed) {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(2)
		}
		os.Exit(1)
	}
}

type app struct {
	cfg   Config
	stdin io.Reader

	logger   *zap.Logger
	settings *config.Config
	gateway  *journal.Gateway
	probe    *backend.Probe
}

func (a *app) syncLogger() {
	if a.logger != nil {
		// Sync on stderr returns EINVAL on some platforms.
		_ = a.logger.Sync()
	}
}

// setup builds the logger and vendor clients once. Anything already set (tests) is kept.
func (a *app) setup() error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	if a.logger == nil {
		l, err := logging.New(a.cfg.Debug)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		a.logger = l
	}
	if a.settings == nil {
		var envFiles []string
		if a.cfg.EnvFile != "" {
			envFiles = append(envFiles, a.cfg.EnvFile)
		}
		a.settings = config.Load(a.logger, envFiles...)
		if a.settings.Debug && !a.cfg.Debug {
			l, err := logging.New(true)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			a.logger = l
		}
	}
	if a.gateway == nil {
		completer := provider.NewOpenAI(provider.Options{
			APIKey:  a.settings.OpenAIAPIKey,
			BaseURL: a.settings.OpenAIBaseURL,
		})
		a.gateway = journal.NewGateway(completer,
			journal.WithModels(a.settings.StandardModel, a.settings.HighAccuracyModel),
			journal.WithLogger(a.logger))
	}
	if a.probe == nil {
		client := backend.NewGoTrueClient(a.settings.SupabaseURL, a.settings.SupabaseAnonKey, a.settings.SupabaseAccessToken)
		a.probe = backend.NewProbe(client, a.settings.SupabaseAccessToken, a.logger)
	}
	return nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "journal-coach",
		Short:         "Organize journals, classify fatigue stage and suggest active rest",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	fs := root.PersistentFlags()
	fs.BoolVar(&a.cfg.Pretty, "pretty", a.cfg.Pretty, "Pretty-print JSON output")
	fs.StringVar(&a.cfg.OutPath, "out", a.cfg.OutPath, "Also write the result envelope to this .json file")
	fs.BoolVar(&a.cfg.Debug, "debug", a.cfg.Debug, "Debug logging")
	fs.StringVar(&a.cfg.EnvFile, "env-file", a.cfg.EnvFile, "Path to a .env file (default: ./.env if present)")

	root.AddCommand(
		newOrganizeCmd(a),
		newAnalyzeCmd(a),
		newRecommendCmd(a),
		newPingCmd(a),
		newProbeCmd(a),
		newServeCmd(a),
	)
	return root
}

func newOrganizeCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "organize [text...]",
		Short: "Clean up raw journal text (from args, -f file, or stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(a.stdin, file, args)
			if err != nil {
				return err
			}
			res := a.gateway.OrganizeJournalText(cmd.Context(), text)
			return a.emit(cmd, res, res.Success)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read journal text from file")
	return cmd
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		file         string
		highAccuracy bool
	)
	cmd := &cobra.Command{
		Use:   "analyze -f entries.yaml",
		Short: "Classify the fatigue stage of a set of journal entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("missing -f")
			}
			entries, err := loadEntries(file)
			if err != nil {
				return err
			}
			res := a.gateway.AnalyzeJournalForStage(cmd.Context(), entries, highAccuracy)
			return a.emit(cmd, res, res.Success)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML or JSON file with journal entries (title, content)")
	cmd.Flags().BoolVar(&highAccuracy, "high-accuracy", false, "Use the high-accuracy model from the start")
	return cmd
}

func newRecommendCmd(a *app) *cobra.Command {
	var (
		stage     int
		timeOfDay string
	)
	cmd := &cobra.Command{
		Use:   "recommend --stage N",
		Short: "Suggest three active-rest activities for a stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.gateway.GenerateActiveRestRecommendations(cmd.Context(), journal.Stage(stage), timeOfDay)
			return a.emit(cmd, res, res.Success)
		},
	}
	cmd.Flags().IntVar(&stage, "stage", 0, "Stage 0-4")
	cmd.Flags().StringVar(&timeOfDay, "time-of-day", journal.DefaultTimeOfDay, "Time of day (morning, noon, evening, night)")
	_ = cmd.MarkFlagRequired("stage")
	return cmd
}

func newPingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the LLM endpoint answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.gateway.TestOpenAIConnection(cmd.Context())
			return a.emit(cmd, res, res.Success)
		},
	}
}

func newProbeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check the auth backend and report the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.probe.TestConnection(cmd.Context())
			return a.emit(cmd, res, res.Success)
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the operations as a JSON HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.settings.HTTPAddr
			}
			standard, highAccuracy := a.gateway.Models()
			a.logger.Info("starting api",
				zap.String("standard_model", standard),
				zap.String("high_accuracy_model", highAccuracy))
			h := httpapi.NewHandler(a.gateway, a.probe, a.logger)
			return httpapi.Serve(cmd.Context(), addr, h.Router(), a.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: JOURNAL_HTTP_ADDR or :8080)")
	return cmd
}

// emit prints v as JSON to the command's stdout and, with -out, writes it to a file.
func (a *app) emit(cmd *cobra.Command, v any, success bool) error {
	b, err := fileutils.MarshalJSON(v, a.cfg.Pretty)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	if a.cfg.OutPath != "" {
		if err := fileutils.WriteJSONFileAtomic(a.cfg.OutPath, v, a.cfg.Pretty); err != nil {
			return err
		}
	}
	if !success {
		return errOperationFailed
	}
	return nil
}

func readText(stdin io.Reader, file string, args []string) (string, error) {
	switch {
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read -f: %w", err)
		}
		return string(b), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case isTerminal(stdin):
		return "", errors.New("no journal text: pass it as arguments, with -f, or on stdin")
	case stdin != nil:
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	default:
		return "", nil
	}
}

// isTerminal reports whether r is an interactive terminal, where reading would block on the user.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
