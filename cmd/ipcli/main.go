package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"ipcli/internal/app"
	"ipcli/internal/logger"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

const (
	flagOperation = "operation"
	flagImage     = "image"
	flagValue     = "value"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log := logger.NewConsoleLogger(zerolog.ErrorLevel)
		log.Error("Main", err, nil)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var operation, imagePath, value string

	cmd := &cobra.Command{
		Use:           app.AppName,
		Short:         "Apply one image operation to a file",
		Long:          "ipcli applies a single operation (canny, blur, histogram, ...) to an image and writes the result next to it.",
		Version:       app.AppVersion,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.ResolveConfig(cmd.Flags(), os.Getenv)
			if err != nil {
				return err
			}

			application, err := app.NewApplication(cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer application.Shutdown()

			return application.Run(operation, imagePath, value)
		},
	}

	cmd.Flags().StringVarP(&operation, flagOperation, "o", "", "operation to apply (see 'ipcli operations')")
	cmd.Flags().StringVarP(&imagePath, flagImage, "i", "", "path to the input image")
	cmd.Flags().StringVarP(&value, flagValue, "v", "", "operation value, required by some operations")
	_ = cmd.MarkFlagRequired(flagOperation)
	_ = cmd.MarkFlagRequired(flagImage)

	app.RegisterFlags(cmd.Flags())

	cmd.AddCommand(newOperationsCommand())
	return cmd
}

func newOperationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "operations",
		Short: "List the available operations and their default parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := app.NewApplication(app.DefaultConfig(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer application.Shutdown()

			out := cmd.OutOrStdout()
			for _, op := range application.Operations() {
				line := op.Name
				if op.ValueHint != "" {
					line += " -v <" + op.ValueHint + ">"
				}
				fmt.Fprintln(out, line)

				if len(op.Parameters) > 0 {
					fmt.Fprintf(out, "    %s\n", formatParameters(op.Parameters))
				}
			}
			return nil
		},
	}
}

func formatParameters(p map[string]interface{}) string {
	keys := lo.Keys(p)
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, p[k]))
	}
	return strings.Join(parts, " ")
}
