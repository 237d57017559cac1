// Package cli implements the erd command line editor. Every command loads
// one diagram into a diagram.Store backed by the REST API, applies an edit
// operation and prints the result.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"erdiagram/internal/client"
	"erdiagram/internal/diagram"
	"erdiagram/internal/logger"
)

const (
	defaultAPIURL = "http://localhost:8080"

	envAPIURL  = "ERD_API_URL"
	envToken   = "ERD_TOKEN"
	envDiagram = "ERD_DIAGRAM"
)

// BackendFactory builds the backend a command talks to.
type BackendFactory func(apiURL, token string) diagram.Backend

func httpBackend(apiURL, token string) diagram.Backend {
	return client.New(apiURL, client.WithToken(token))
}

type app struct {
	in         io.Reader
	out        io.Writer
	errOut     io.Writer
	newBackend BackendFactory

	apiURL    string
	token     string
	diagramID string
	format    string
	yes       bool
	logLevel  string

	log *slog.Logger
}

type Option func(*app)

func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(a *app) { a.in, a.out, a.errOut = in, out, errOut }
}

func WithBackend(f BackendFactory) Option {
	return func(a *app) { a.newBackend = f }
}

// NewRootCommand assembles the command tree.
func NewRootCommand(opts ...Option) *cobra.Command {
	a := &app{
		in:         os.Stdin,
		out:        os.Stdout,
		errOut:     os.Stderr,
		newBackend: httpBackend,
	}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:           "erd",
		Short:         "Edit entity-relationship diagrams",
		Long:          `erd edits ER diagrams stored by the diagram API: entities, attributes, relationships, layout and the generated schema.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.apiURL, "api-url", "", "Diagram API base URL (env "+envAPIURL+")")
	flags.StringVar(&a.token, "token", "", "API bearer token (env "+envToken+")")
	flags.StringVarP(&a.diagramID, "diagram", "d", "", "Diagram id (env "+envDiagram+")")
	flags.StringVarP(&a.format, "format", "f", formatText, "Output format: text, json or yaml")
	flags.BoolVarP(&a.yes, "yes", "y", false, "Confirm deletions without prompting")
	flags.StringVar(&a.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")

	root.AddCommand(
		a.diagramCommand(),
		a.entityCommand(),
		a.attributeCommand(),
		a.relationshipCommand(),
		a.schemaCommand(),
		a.previewCommand(),
		a.tokenCommand(),
	)
	return root
}

// Execute runs the command tree against the real API.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (a *app) setup() error {
	_ = godotenv.Load()

	if a.apiURL == "" {
		a.apiURL = envOr(envAPIURL, defaultAPIURL)
	}
	if a.token == "" {
		a.token = os.Getenv(envToken)
	}
	if a.diagramID == "" {
		a.diagramID = os.Getenv(envDiagram)
	}
	if err := checkFormat(a.format); err != nil {
		return err
	}

	log, err := logger.New(a.errOut, a.logLevel, "text")
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// openStore loads the selected diagram. The caller must Close the store.
func (a *app) openStore(ctx context.Context) (*diagram.Store, error) {
	if a.diagramID == "" {
		return nil, fmt.Errorf("no diagram selected: pass --diagram or set %s", envDiagram)
	}
	store := diagram.NewStore(a.diagramID, a.newBackend(a.apiURL, a.token),
		diagram.WithLogger(a.log),
		diagram.WithNotifier(notifier{w: a.errOut}),
		diagram.WithConfirmer(a.confirmer()),
	)
	if err := store.Load(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// withStore opens the store, runs fn and closes the store.
func (a *app) withStore(cmd *cobra.Command, fn func(ctx context.Context, s *diagram.Store) error) error {
	ctx := cmd.Context()
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, store)
}
