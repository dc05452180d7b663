// Command diagnose runs one diagnosis from command line flags.
//
//	diagnose --Glucose 148 --BMI 33 --Age 50
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"diabetesdx/config"
	"diabetesdx/diagnosis"
	"diabetesdx/logging"
	"diabetesdx/ml"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var (
		configPath string
		modelPath  string
		asJSON     bool
		strict     bool
	)
	schema := ml.DefaultSchema()
	values := make(map[string]*float64, schema.Len())

	cmd := &cobra.Command{
		Use:           "diagnose",
		Short:         "Classify one set of measurements as Diabetic or Healthy",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if modelPath != "" {
				cfg.Model.Path = modelPath
			}
			logger, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			defer logger.Sync()

			model, err := ml.LoadModel(cfg.Model.Path, schema)
			if err != nil {
				return err
			}
			pipeline := diagnosis.NewPipeline(schema, model, logger)

			inputs := make(ml.Inputs, len(values))
			for name, v := range values {
				inputs[name] = *v
			}
			if strict {
				if err := pipeline.Validate(inputs); err != nil {
					return err
				}
			}
			result, err := pipeline.Run(cmd.Context(), inputs)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			_, err = fmt.Fprintln(out, result.Label)
			return err
		},
	}
	cmd.SetOut(out)

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "config.yaml", "config file")
	flags.StringVar(&modelPath, "model", "", "model artifact, overrides model.path")
	flags.BoolVar(&asJSON, "json", false, "print the full result as JSON")
	flags.BoolVar(&strict, "strict", false, "reject values outside the field ranges")
	for _, f := range schema.Fields() {
		values[f.Name] = flags.Float64(f.Name, f.Default,
			fmt.Sprintf("%s (%s, %g to %g)", f.Name, f.Kind, f.Min, f.Max))
	}
	return cmd
}
