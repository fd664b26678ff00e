package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/joho/godotenv"
	"github.com/voyago/voyago-client/internal/auth"
	"github.com/voyago/voyago-client/pkg/config"
	"github.com/voyago/voyago-client/pkg/gateway"
	"github.com/voyago/voyago-client/pkg/logger"
	"github.com/voyago/voyago-client/pkg/tokenstore"
)

// app is the composition root shared by every command: one gateway, one
// token store, one auth service.
type app struct {
	cfg     *config.Config
	logg    *logger.Logger
	tokens  tokenstore.Store
	gateway *gateway.Gateway
	auth    *auth.Service
}

func buildApp(baseURL string) (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}

	logg := logger.New(logger.Options{
		ServiceName: "voyago",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	tokens, err := tokenstore.NewFileStore(cfg.Tokens.Path, logg)
	if err != nil {
		return nil, fmt.Errorf("opening token store: %w", err)
	}

	metrics := gateway.NewClientMetrics(prometheus.DefaultRegisterer)

	gw := gateway.New(cfg.API,
		gateway.WithLogger(logg),
		gateway.WithNotifier(gateway.NewLogNotifier(logg)),
		gateway.WithMetrics(metrics),
		gateway.WithInterceptor(gateway.RequestIDInterceptor{}),
		gateway.WithInterceptor(gateway.NewAuthInterceptor(tokens)),
	)

	authService, err := auth.NewService(auth.ServiceParams{
		Gateway: gw,
		Tokens:  tokens,
		Logger:  logg,
		Metrics: metrics,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		logg:    logg,
		tokens:  tokens,
		gateway: gw,
		auth:    authService,
	}, nil
}

// Execute runs the CLI.
func Execute(version string) error {
	root := &cobra.Command{
		Use:           "voyago",
		Short:         "Voyago backend client (auth, profile)",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if showVersion {
				return PrintSuccess(map[string]string{"version": version})
			}
			return cmd.Help()
		},
	}

	root.PersistentFlags().String("base-url", "", "Override the backend base URL (default: $VOYAGO_API_BASE_URL)")
	root.Flags().BoolP("version", "v", false, "version for voyago")

	root.AddCommand(newLoginCmd())
	root.AddCommand(newRegisterCmd())
	root.AddCommand(newForgotPasswordCmd())
	root.AddCommand(newWhoamiCmd())
	root.AddCommand(newProfileCmd())
	root.AddCommand(newLogoutCmd())

	err := root.Execute()
	if err != nil {
		_ = PrintError(err)
	}
	return err
}

func appFromCmd(cmd *cobra.Command) (*app, context.Context, error) {
	baseURL, _ := cmd.Flags().GetString("base-url")
	a, err := buildApp(baseURL)
	if err != nil {
		return nil, nil, err
	}
	return a, cmd.Context(), nil
}
