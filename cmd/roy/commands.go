package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samvad-hq/roy/internal/app"
	"github.com/samvad-hq/roy/internal/config"
	"github.com/samvad-hq/roy/internal/logger"
	"github.com/samvad-hq/roy/pkg/roy"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errNoResponse = errors.New("no response (transport failure)")

// cli carries state shared between the root command and its subcommands.
type cli struct {
	out    io.Writer
	v      *viper.Viper
	root   *cobra.Command
	runner *app.Runner
}

func newCLI(out io.Writer) (*cli, error) {
	c := &cli{out: out, v: config.New()}

	root := &cobra.Command{
		Use:           "roy",
		Short:         "Send REST requests relative to a base URL",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return c.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.String("base-url", "", "API base URL (overrides ROY_BASE_URL)")
	flags.String("token", "", "Authorization header value sent verbatim")
	flags.String("profile", "", "profile id from the profiles file")
	flags.String("profiles-file", "", "path to a YAML/JSON profiles file")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.Int64("timeout", 0, "request timeout in seconds (0 keeps the configured value)")
	for key, flag := range map[string]string{
		"base_url":                "base-url",
		"auth_token":              "token",
		"profile":                 "profile",
		"profiles_file":           "profiles-file",
		"log_level":               "log-level",
		"request_timeout_seconds": "timeout",
	} {
		if err := c.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("bind flag %q: %w", flag, err)
		}
	}

	for _, m := range []roy.RequestMethod{roy.GET, roy.POST, roy.PUT, roy.PATCH, roy.DELETE} {
		root.AddCommand(c.verbCmd(m))
	}
	root.AddCommand(c.historyCmd())
	c.root = root
	return c, nil
}

// execute runs the command tree and always releases the runner afterwards,
// including when a subcommand fails.
func (c *cli) execute(ctx context.Context, args []string) error {
	c.root.SetArgs(args)
	err := c.root.ExecuteContext(ctx)
	if c.runner != nil {
		if cerr := c.runner.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close runner: %w", cerr))
		}
		c.runner = nil
	}
	return err
}

func (c *cli) setup() error {
	cfg, err := config.FromViper(c.v)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if _, err := logger.InitWriter(cfg, os.Stderr); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	runner, err := app.NewRunner(cfg, logger.Default())
	if err != nil {
		logger.ErrorObj("failed to initialize runner", "error", err.Error())
		return err
	}
	c.runner = runner
	return nil
}

func (c *cli) verbCmd(m roy.RequestMethod) *cobra.Command {
	var (
		single   bool
		absolute bool
		data     string
	)

	cmd := &cobra.Command{
		Use:   strings.ToLower(m.String()) + " <endpoint>",
		Short: fmt.Sprintf("Send a %s request to base URL + endpoint", m),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			call := app.Call{
				Method:   m,
				Endpoint: args[0],
				Single:   single,
				Absolute: absolute,
			}
			if cmd.Flags().Changed("data") {
				call.Data = parseData(data)
			}

			res, err := c.runner.Do(cmd.Context(), call)
			if err != nil {
				return err
			}
			if !res.Present {
				return errNoResponse
			}
			_, err = c.out.Write(res.Body)
			return err
		},
	}

	switch {
	case m == roy.GET:
		cmd.Flags().BoolVar(&single, "single", false, "request a single object (application/vnd.pgrst.object+json)")
		cmd.Flags().BoolVar(&absolute, "abs", false, "treat the endpoint as an absolute URL")
	case m.HasBody():
		cmd.Flags().StringVarP(&data, "data", "d", "", "JSON payload; anything that is not valid JSON is sent as a JSON string")
	}
	return cmd
}

func (c *cli) historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently sent requests, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := c.runner.History(limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			enc := json.NewEncoder(c.out)
			for _, e := range entries {
				if err := enc.Encode(e); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum entries to show (0 for all)")
	return cmd
}

// parseData keeps valid JSON as-is and wraps anything else as a JSON string.
func parseData(s string) any {
	if json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}
	return s
}
