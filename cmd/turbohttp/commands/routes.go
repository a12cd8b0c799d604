package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yshengliao/turbohttp/app"
)

func newRoutesCmd(flags *globalFlags) *cobra.Command {
	var match []string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the demo application's routes",
		Long: `List every registered route in matching order. With --match METHOD PATH,
report which route would serve the request instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			a, err := buildApp(cfg, zap.NewNop(), prometheus.NewRegistry())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(match) > 0 {
				return printMatch(out, a, match)
			}
			return printRoutes(out, a.Routes())
		},
	}

	cmd.Flags().StringSliceVarP(&match, "match", "m", nil, "METHOD,PATH to resolve")

	return cmd
}

func printRoutes(w io.Writer, routes []app.RouteInfo) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATTERN\tKIND\tMETHODS")
	for _, r := range routes {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Pattern, r.Kind, strings.Join(r.Methods, ","))
	}
	return tw.Flush()
}

func printMatch(w io.Writer, a *app.App, match []string) error {
	if len(match) != 2 {
		return fmt.Errorf("--match takes METHOD,PATH")
	}
	info, params, err := a.Match(match[0], match[1])
	if info.Pattern == "" {
		fmt.Fprintf(w, "%s %s: %v\n", strings.ToUpper(match[0]), match[1], err)
		return nil
	}
	if err != nil {
		fmt.Fprintf(w, "%s %s -> %s: %v\n", strings.ToUpper(match[0]), match[1], info.Pattern, err)
		return nil
	}
	fmt.Fprintf(w, "%s %s -> %s (%s)\n", strings.ToUpper(match[0]), match[1], info.Pattern, info.Kind)
	for name, value := range params {
		fmt.Fprintf(w, "  %s = %s\n", name, value)
	}
	return nil
}
