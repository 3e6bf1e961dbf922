package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/hradmin/internal/cryptox"
	"github.com/dmitrijs2005/hradmin/internal/flagx"
	"github.com/dmitrijs2005/hradmin/internal/logging"
	"github.com/dmitrijs2005/hradmin/internal/server"
	"github.com/dmitrijs2005/hradmin/internal/server/config"
	"github.com/dmitrijs2005/hradmin/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hradmin/internal/server/services"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Set at build time with -ldflags "-X main.buildVersion=...".
var (
	buildVersion = "N/A"
	buildDate    = "N/A"
	buildCommit  = "N/A"
)

const configFlagsHelp = `Flags (Go style, shared by serve, migrate and create-admin):
  -c, -config string   config file (.json, .yaml, .yml)
  -a string            HTTP bind address
  -d string            PostgreSQL DSN
  -s string            credential signing secret
  -i string            credential issuer
  -l string            log level (debug, info, warn, error)
  -f string            log format (json, text)
`

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hradmin",
		Short: "HR admin API server",
		Long: `hradmin serves the HR admin API.

Without a subcommand it behaves like "serve".

` + configFlagsHelp,
		Args:               cobra.ArbitraryArgs,
		SilenceUsage:       true,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if wantsHelp(args) {
				return cmd.Help()
			}
			return runServe(contextOf(cmd), args)
		},
	}

	cmd.AddCommand(serveCmd(), migrateCmd(), createAdminCmd(), hashPasswordCmd(), versionCmd())
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "serve [flags]",
		Short:              "Run the HTTP API server",
		Long:               "Run the HTTP API server.\n\n" + configFlagsHelp,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if wantsHelp(args) {
				return cmd.Help()
			}
			return runServe(contextOf(cmd), args)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "migrate [flags]",
		Short:              "Apply database migrations and exit",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if wantsHelp(args) {
				return cmd.Help()
			}
			ctx := contextOf(cmd)
			cfg, logger, err := setup(args, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			db, err := server.OpenDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := repomanager.NewPostgresRepositoryManager().RunMigrations(ctx, db); err != nil {
				return err
			}
			logger.Info(ctx, "migrations applied")
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-admin -login NAME [-name REALNAME] [flags]",
		Short: "Create an employee account bound to the admin role",
		Long: `Create an employee account bound to the admin role.

The password is read from the terminal, or from the first line of stdin
when stdin is not a terminal.

` + configFlagsHelp,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if wantsHelp(args) {
				return cmd.Help()
			}
			ctx := contextOf(cmd)

			login, realName, err := parseAdminFlags(args)
			if err != nil {
				return err
			}

			cfg, logger, err := setup(args, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: ")
			if err != nil {
				return err
			}

			db, err := server.OpenDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			rm := repomanager.NewPostgresRepositoryManager()
			if err := rm.RunMigrations(ctx, db); err != nil {
				return err
			}

			e, err := services.NewEmployeeService(db, rm, cfg.DBQueryTimeout).CreateAdmin(ctx, login, realName, password)
			if err != nil {
				return err
			}
			logger.Info(ctx, "admin created", "employee_id", e.ID, "login_name", e.LoginName)
			return nil
		},
	}
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Print the bcrypt hash of a password read from the terminal or stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: ")
			if err != nil {
				return err
			}
			hash, err := cryptox.HashPassword(password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Build version: %s\n", buildVersion)
			fmt.Fprintf(out, "Build date: %s\n", buildDate)
			fmt.Fprintf(out, "Build commit: %s\n", buildCommit)
		},
	}
}

func runServe(ctx context.Context, args []string) error {
	cfg, logger, err := setup(args, os.Stdout)
	if err != nil {
		return err
	}

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}

	app.Run(ctx)
	return nil
}

// setup loads the configuration from args and builds the logger it asks for.
func setup(args []string, logOut io.Writer) (*config.Config, logging.Logger, error) {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, logOut)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, logger, nil
}

func parseAdminFlags(args []string) (login, realName string, err error) {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&login, "login", "", "login name")
	fs.StringVar(&realName, "name", "", "real name")

	if err := fs.Parse(flagx.FilterArgs(args, []string{"-login", "--login", "-name", "--name"})); err != nil {
		return "", "", err
	}
	if strings.TrimSpace(login) == "" {
		return "", "", errors.New("-login is required")
	}
	if realName == "" {
		realName = login
	}
	return login, realName, nil
}

// readPassword prompts on a terminal without echo. Non-terminal input is read
// up to the first newline.
func readPassword(in io.Reader, prompt io.Writer, label string) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("empty password")
	}
	return line, nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// wantsHelp reports a help flag among args of commands that parse their own
// flags.
func wantsHelp(args []string) bool {
	for _, a := range args {
		if a == "-h" || a == "--help" || a == "-help" {
			return true
		}
	}
	return false
}
