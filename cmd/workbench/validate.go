package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rflorenc/scm-migration-workbench/internal/api"
	"github.com/rflorenc/scm-migration-workbench/internal/logging"
	"github.com/rflorenc/scm-migration-workbench/internal/migration"
	"github.com/rflorenc/scm-migration-workbench/internal/models"
)

type validateOptions struct {
	tenant    string
	selection string
	full      string
	filtered  string
	output    string
	strategy  string
}

func newValidateCmd(root *rootOptions) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a selection against a destination tenant",
		Long: `Reads the destination state the selection needs, reports what a push
would create, skip, overwrite or rename, and optionally writes the
selection pruned to the items that need pushing.`,
		Example: `  workbench validate -c workbench.yaml --tenant dst --selection sel.yaml --full full.yaml
  workbench validate --tenant dst --selection sel.json --filtered push.yaml -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.tenant, "tenant", "", "destination tenant name from the config file")
	cmd.Flags().StringVar(&opts.selection, "selection", "", "selected-items file (JSON or YAML)")
	cmd.Flags().StringVar(&opts.full, "full", "", "full source configuration file used to locate dependencies")
	cmd.Flags().StringVar(&opts.filtered, "filtered", "", "write the push-ready selection to this file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "report format: text, json or yaml")
	cmd.Flags().StringVar(&opts.strategy, "default-strategy", "", "strategy for items without an override")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("selection")
	return cmd
}

func runValidate(cmd *cobra.Command, root *rootOptions, opts *validateOptions) error {
	cfg := root.cfg
	switch opts.output {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("--output %q must be one of text, json, yaml", opts.output)
	}

	var tenant *models.Tenant
	for _, t := range cfg.TenantModels() {
		if t.Name == opts.tenant {
			tenant = t
			break
		}
	}
	if tenant == nil {
		return fmt.Errorf("tenant %q is not configured", opts.tenant)
	}

	var sel models.Selection
	if err := loadArtifact(opts.selection, &sel); err != nil {
		return err
	}
	var full *models.ConfigSet
	if opts.full != "" {
		full = &models.ConfigSet{}
		if err := loadArtifact(opts.full, full); err != nil {
			return err
		}
	}

	strategy := cfg.Strategy()
	if opts.strategy != "" {
		strategy = models.Strategy(opts.strategy)
		if !strategy.Valid() {
			return fmt.Errorf("--default-strategy %q must be one of skip, overwrite, rename", opts.strategy)
		}
	}

	reader, err := api.PlatformAPI(tenant)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stderr := cmd.ErrOrStderr()
	result, err := migration.Validate(ctx, reader, &sel, full, migration.Options{
		DefaultStrategy: strategy,
		SystemFolders:   cfg.SystemFolders,
		Progress: func(message string, percent int) {
			fmt.Fprintf(stderr, "[%3d%%] %s\n", percent, message)
		},
		Detail: func(line string) {
			logger := logging.GetLogger("validate")
			logger.Info().Msg(line)
		},
	})
	if errors.Is(err, migration.ErrCancelled) {
		return fmt.Errorf("validation cancelled")
	}
	if err != nil {
		return err
	}

	if err := writeReport(cmd.OutOrStdout(), result.Report, opts.output); err != nil {
		return err
	}

	outcome, msg := result.Report.Outcome()
	if opts.filtered != "" && outcome == models.OutcomeReady {
		data, err := marshalArtifact(opts.filtered, result.Filtered)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.filtered, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", opts.filtered, err)
		}
		fmt.Fprintf(stderr, "Push-ready selection written to %s\n", opts.filtered)
	}

	switch outcome {
	case models.OutcomeReady, models.OutcomeNothingToDo:
		fmt.Fprintln(stderr, msg)
		return nil
	}
	return errors.New(msg)
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// loadArtifact decodes a JSON or YAML file, chosen by extension.
func loadArtifact(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if isJSON(path) {
		err = json.Unmarshal(data, v)
	} else {
		err = yaml.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func marshalArtifact(path string, v interface{}) ([]byte, error) {
	if isJSON(path) {
		return json.MarshalIndent(v, "", "  ")
	}
	return yaml.Marshal(v)
}

func writeReport(w io.Writer, report *models.ValidationReport, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(report)
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "%d item(s): %d new, %d conflict(s), %d skipped\n",
		report.TotalItems, report.NewItems, report.Conflicts, report.SkippedItems)
	for _, d := range report.ItemDetails {
		fmt.Fprintf(&b, "  %-22s %-40s %s\n", d.Type, d.Name, d.Action)
	}
	for _, e := range report.Errors {
		fmt.Fprintf(&b, "ERROR: %s\n", e)
	}
	for _, warn := range report.Warnings {
		fmt.Fprintf(&b, "WARNING: %s\n", warn)
	}
	_, err := w.Write(b.Bytes())
	return err
}
