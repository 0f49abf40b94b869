package cli

import (
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/kind"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/lifecycle"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/validate"
)

func newAppsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "apps",
		Aliases: []string{"app"},
		Short:   "Manage apps",
	}

	reg := func() *registry.Registry[types.App] { return a.apps.Registry }
	cmd.AddCommand(resourceCommands(a, "app", reg, (*printer).Apps)...)
	if kind.MustLookup(kind.Apps).Has(kind.CapDeploy) {
		cmd.AddCommand(newDeployCmd(a))
	}
	cmd.AddCommand(newAppSessionsCmd(a), newFilesCmd(a))
	return cmd
}

func newNotebooksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notebooks",
		Aliases: []string{"notebook", "nb"},
		Short:   "Manage notebooks",
	}

	reg := func() *registry.Registry[types.Notebook] { return a.notebooks.Registry }
	cmd.AddCommand(resourceCommands(a, "notebook", reg, (*printer).Notebooks)...)
	cmd.AddCommand(newNotebookSessionsCmd(a))
	return cmd
}

// resourceCommands builds list, get, create, update and delete for one
// registry. reg is resolved at run time because components are wired after
// flag parsing.
func resourceCommands[R types.Resource](
	a *app,
	singular string,
	reg func() *registry.Registry[R],
	render func(*printer, []R) error,
) []*cobra.Command {
	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List " + singular + "s",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := reg().FetchAll(cmd.Context())
			if err != nil {
				return err
			}
			return render(a.out, items)
		},
	}

	get := &cobra.Command{
		Use:   "get <" + singular + "-id>",
		Short: "Show one " + singular,
		Args:  cobra.MatchAll(cobra.ExactArgs(1), ids(singular+" id")),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := reg().Fetch(cmd.Context(), types.ResourceID(args[0]))
			if err != nil {
				return err
			}
			return render(a.out, []R{item})
		},
	}

	var createReq types.CreateRequest
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a " + singular,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			item, err := reg().Create(cmd.Context(), createReq)
			if err != nil {
				return err
			}
			return render(a.out, []R{item})
		},
	}
	create.Flags().StringVar(&createReq.Name, "name", "", singular+" name")
	create.Flags().StringVar(&createReq.Description, "description", "", singular+" description")
	_ = create.MarkFlagRequired("name")

	var name, description string
	update := &cobra.Command{
		Use:   "update <" + singular + "-id>",
		Short: "Rename or re-describe a " + singular,
		Args:  cobra.MatchAll(cobra.ExactArgs(1), ids(singular+" id")),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req types.UpdateRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			item, err := reg().Update(cmd.Context(), types.ResourceID(args[0]), req)
			if err != nil {
				return err
			}
			return render(a.out, []R{item})
		},
	}
	update.Flags().StringVar(&name, "name", "", "new name")
	update.Flags().StringVar(&description, "description", "", "new description")
	update.MarkFlagsOneRequired("name", "description")

	del := &cobra.Command{
		Use:     "delete <" + singular + "-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a " + singular,
		Args:    cobra.MatchAll(cobra.ExactArgs(1), ids(singular+" id")),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := reg().Delete(cmd.Context(), types.ResourceID(args[0])); err != nil {
				return err
			}
			return a.out.Message("Deleted %s %s", singular, args[0])
		},
	}

	return []*cobra.Command{list, get, create, update, del}
}

func newDeployCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deploy <app-id>",
		Short: "Deploy an app and print its deployment port",
		Args:  cobra.MatchAll(cobra.ExactArgs(1), ids("app id")),
		RunE: func(cmd *cobra.Command, args []string) error {
			deployed, err := a.apps.Deploy(cmd.Context(), types.ResourceID(args[0]))
			if err != nil {
				return err
			}
			return a.out.Apps([]types.App{deployed})
		},
	}
}

func newAppSessionsCmd(a *app) *cobra.Command {
	engine := func() *lifecycle.Engine[lifecycle.Apps] { return a.appSessions.Engine }
	cmd := sessionsCmd(a, engine)
	if !kind.MustLookup(kind.Apps).Has(kind.CapDeleteSession) {
		return cmd
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "delete <app-id> <session-id>",
		Aliases: []string{"rm"},
		Short:   "Delete an app session",
		Args:    cobra.MatchAll(cobra.ExactArgs(2), ids("app id", "session id")),
		RunE: func(cmd *cobra.Command, args []string) error {
			sid, err := a.appSessions.DeleteSession(cmd.Context(), refArgs(args))
			if err != nil {
				return err
			}
			return a.out.Message("Deleted session %s", sid)
		},
	})
	return cmd
}

func newNotebookSessionsCmd(a *app) *cobra.Command {
	engine := func() *lifecycle.Engine[lifecycle.Notebooks] { return a.notebookSessions.Engine }
	cmd := sessionsCmd(a, engine)
	if !kind.MustLookup(kind.Notebooks).Has(kind.CapSaveWorkspace) {
		return cmd
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "save <notebook-id> <session-id>",
		Short: "Save the workspace of a notebook session",
		Args:  cobra.MatchAll(cobra.ExactArgs(2), ids("notebook id", "session id")),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.notebookSessions.SaveWorkspace(cmd.Context(), refArgs(args))
			if err != nil {
				return err
			}
			return a.out.Message("%s", msg)
		},
	})
	return cmd
}

// ids checks that the leading positional args are safe ids
func ids(names ...string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		for i, name := range names {
			if i >= len(args) {
				break
			}
			if err := validate.ID(args[i], name); err != nil {
				return err
			}
		}
		return nil
	}
}

func refArgs(args []string) types.SessionRef {
	return types.SessionRef{ResourceID: types.ResourceID(args[0]), SessionID: types.SessionID(args[1])}
}
