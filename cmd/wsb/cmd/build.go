package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/wsb/internal/model"
	"github.com/tormodhaugland/wsb/internal/popover"
	"github.com/tormodhaugland/wsb/internal/tui"
)

var (
	buildOptions     []string
	buildInteractive bool
)

var buildCmd = &cobra.Command{
	Use:   "build <workspace>",
	Short: "Start a workspace build with build options",
	Long: `Starts a workspace with ephemeral build parameters. Values from the
active build are reused unless overridden with --build-option.

  wsb build alice/dev --build-option region=eu-west
  wsb build dev -i          # edit the options in a popover

Templates using dynamic parameters are configured in workspace settings;
wsb prints the settings URL and exits with an error.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if buildInteractive && len(buildOptions) > 0 {
			return errors.New("--build-option cannot be combined with --interactive")
		}
		overrides, err := parseBuildOptions(buildOptions)
		if err != nil {
			return err
		}

		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		ws, err := e.findWorkspace(args[0])
		if err != nil {
			return err
		}

		if buildInteractive {
			return buildInteractively(e, ws)
		}

		build, err := buildWithOptions(e.ctx, e, ws, overrides)
		if err != nil {
			return err
		}
		return printBuild(ws, build)
	},
}

// parseBuildOptions splits name=value pairs, keeping their order.
func parseBuildOptions(raw []string) ([]model.WorkspaceBuildParameter, error) {
	var out []model.WorkspaceBuildParameter
	for _, r := range raw {
		name, value, ok := strings.Cut(r, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid build option %q, expected name=value", r)
		}
		out = append(out, model.WorkspaceBuildParameter{Name: name, Value: value})
	}
	return out, nil
}

// buildWithOptions drives a build options workflow without a terminal UI:
// load, apply overrides, validate, submit.
func buildWithOptions(ctx context.Context, e *env, ws model.Workspace, overrides []model.WorkspaceBuildParameter) (model.WorkspaceBuild, error) {
	w := popover.Open(ws, e.popoverOptions()...)
	if err := popover.Load(ctx, e.src, w); err != nil {
		return model.WorkspaceBuild{}, err
	}

	switch st := w.State().(type) {
	case popover.RedirectEligible:
		return model.WorkspaceBuild{}, fmt.Errorf("%s uses dynamic parameters, configure them at %s",
			ws.FullName(), e.cfg.SiteLink(st.SettingsPath))

	case popover.NoEphemeralParameters:
		if len(overrides) > 0 {
			return model.WorkspaceBuild{}, fmt.Errorf("%s has no ephemeral build options (see %s)", ws.FullName(), st.DocsURL)
		}
		w.Dismiss()
		e.log.Info("starting build without build options", "workspace", ws.FullName())
		return e.builder.StartBuild(ctx, ws, nil)

	case popover.FormReady:
		for _, o := range overrides {
			i := st.Form.IndexOf(o.Name)
			if i < 0 {
				return model.WorkspaceBuild{}, fmt.Errorf("unknown build option %q, ephemeral parameters are: %s",
					o.Name, strings.Join(parameterNames(st.Parameters), ", "))
			}
			w.SetValue(i, o.Value)
		}

		var errs []error
		for i := 0; i < st.Form.Len(); i++ {
			h, _ := st.Form.Helpers(i)
			if err := h.Validate(h.Value.Value); err != nil {
				errs = append(errs, err)
			}
		}
		if err := errors.Join(errs...); err != nil {
			return model.WorkspaceBuild{}, err
		}

		params, err := w.Submit()
		if err != nil {
			return model.WorkspaceBuild{}, err
		}
		return e.builder.StartBuild(ctx, ws, params)
	}

	return model.WorkspaceBuild{}, fmt.Errorf("unexpected build options state %s", w.Kind())
}

func buildInteractively(e *env, ws model.Workspace) error {
	res, err := tui.RunBuildOptions(e.ctx, e.src, e.builder, ws, e.popoverOptions()...)
	if errors.Is(err, tui.ErrDismissed) {
		fmt.Println("Dismissed, no build started")
		return nil
	}
	if errors.Is(err, tui.ErrBuildPending) {
		return fmt.Errorf("build of %s was submitted but not confirmed, check 'wsb history': %w", ws.FullName(), err)
	}
	if err != nil {
		return err
	}

	if res.SettingsPath != "" {
		fmt.Printf("Configure parameters at %s\n", e.cfg.SiteLink(res.SettingsPath))
		return nil
	}
	if res.BuildErr != nil {
		return res.BuildErr
	}
	return printBuild(ws, res.Build)
}

func printBuild(ws model.Workspace, build model.WorkspaceBuild) error {
	if jsonOut {
		return outputJSON(build)
	}
	fmt.Printf("Build #%d started for %s (%s)\n", build.BuildNumber, ws.FullName(), build.ID)
	return nil
}

func parameterNames(params []model.TemplateVersionParameter) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}

func init() {
	buildCmd.Flags().StringArrayVar(&buildOptions, "build-option", nil, "ephemeral parameter as name=value (repeatable)")
	buildCmd.Flags().BoolVarP(&buildInteractive, "interactive", "i", false, "edit build options in a popover")
	rootCmd.AddCommand(buildCmd)
}
