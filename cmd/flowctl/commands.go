package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"

	"github.com/rmorandeira/flowctl/pkg/client"
	"github.com/rmorandeira/flowctl/pkg/workflow"
)

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "modify_parameter",
			Usage:     "Set a node parameter addressed by dotted path",
			ArgsUsage: "<workflow_name> <node_name> <parameter_path> <new_value>",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				if err := requireArgs(cmd, 4); err != nil {
					return err
				}

				manager, err := newManager(cmd)
				if err != nil {
					return err
				}

				args := cmd.Args()

				updated, err := manager.ModifyNodeParameter(ctx,
					args.Get(0), args.Get(1), args.Get(2), parseValue(args.Get(3)))
				if err != nil {
					return err
				}

				fmt.Printf("Modified parameter %q on node %q in workflow %q\n",
					args.Get(2), args.Get(1), updated.Name)

				return nil
			},
		},
		{
			Name:      "rename_workflow",
			Usage:     "Change a workflow's display name",
			ArgsUsage: "<old_name> <new_name>",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				if err := requireArgs(cmd, 2); err != nil {
					return err
				}

				manager, err := newManager(cmd)
				if err != nil {
					return err
				}

				updated, err := manager.Rename(ctx, cmd.Args().Get(0), cmd.Args().Get(1))
				if err != nil {
					return err
				}

				fmt.Printf("Renamed workflow %q to %q\n", cmd.Args().Get(0), updated.Name)

				return nil
			},
		},
		{
			Name:      "activate_workflow",
			Usage:     "Activate a workflow",
			ArgsUsage: "<workflow_name>",
			Action:    setActiveAction(true),
		},
		{
			Name:      "deactivate_workflow",
			Usage:     "Deactivate a workflow",
			ArgsUsage: "<workflow_name>",
			Action:    setActiveAction(false),
		},
		{
			Name:      "duplicate_workflow",
			Usage:     "Copy a workflow under a new name",
			ArgsUsage: "<workflow_name> <new_name>",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				if err := requireArgs(cmd, 2); err != nil {
					return err
				}

				manager, err := newManager(cmd)
				if err != nil {
					return err
				}

				created, err := manager.Duplicate(ctx, cmd.Args().Get(0), cmd.Args().Get(1))
				if err != nil {
					return err
				}

				fmt.Printf("Duplicated workflow %q to %q (ID: %s)\n",
					cmd.Args().Get(0), created.Name, created.ID)

				return nil
			},
		},
		{
			Name:      "export_workflow",
			Usage:     "Fetch a workflow by name and write it to a JSON file",
			ArgsUsage: "<workflow_name>",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "dir",
					Usage: "Directory to write the export into",
					Value: "workflows",
				},
				&cli.StringFlag{
					Name:  "output",
					Usage: "Explicit output filename (derived from the workflow name when empty)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				if err := requireArgs(cmd, 1); err != nil {
					return err
				}

				manager, err := newManager(cmd)
				if err != nil {
					return err
				}

				path, err := manager.Export(ctx, cmd.Args().Get(0), cmd.String("dir"), cmd.String("output"))
				if err != nil {
					return err
				}

				fmt.Printf("Exported workflow %q to %s\n", cmd.Args().Get(0), path)

				return nil
			},
		},
		{
			Name:      "import_workflow",
			Usage:     "Create a new workflow from a local JSON document",
			ArgsUsage: "<file>",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				if err := requireArgs(cmd, 1); err != nil {
					return err
				}

				manager, err := newManager(cmd)
				if err != nil {
					return err
				}

				created, err := manager.ImportFile(ctx, cmd.Args().Get(0))
				if err != nil {
					return err
				}

				fmt.Printf("Imported workflow %q (ID: %s)\n", created.Name, created.ID)

				return nil
			},
		},
		{
			Name:  "list_workflows",
			Usage: "List all workflows with their active state",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				manager, err := newManager(cmd)
				if err != nil {
					return err
				}

				workflows, err := manager.List(ctx)
				if err != nil {
					return err
				}

				for _, wf := range workflows {
					fmt.Printf("%s (%s)\n", wf.Name, workflowState(wf.Active, wf.IsArchived))
				}

				return nil
			},
		},
		{
			Name:  "list_archived",
			Usage: "List only archived workflows",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				manager, err := newManager(cmd)
				if err != nil {
					return err
				}

				archived, err := manager.ListArchived(ctx)
				if err != nil {
					return err
				}

				for _, wf := range archived {
					fmt.Printf("%s (ID: %s)\n", wf.Name, wf.ID)
				}

				fmt.Printf("%d archived workflow(s)\n", len(archived))

				return nil
			},
		},
		{
			Name:  "delete_archived",
			Usage: "Delete every archived workflow",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "yes",
					Usage: "Skip the confirmation prompt",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				manager, err := newManager(cmd)
				if err != nil {
					return err
				}

				if !cmd.Bool("yes") && !confirm("Delete ALL archived workflows?") {
					fmt.Println("Deletion cancelled")

					return nil
				}

				result, err := manager.DeleteArchived(ctx)
				if err != nil {
					return err
				}

				for _, name := range result.Deleted {
					fmt.Printf("Deleted: %s\n", name)
				}

				for name, failure := range result.Failed {
					fmt.Printf("Failed to delete %s: %v\n", name, failure)
				}

				fmt.Printf("Deleted %d, failed %d\n", len(result.Deleted), len(result.Failed))

				return nil
			},
		},
	}
}

func setActiveAction(active bool) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if err := requireArgs(cmd, 1); err != nil {
			return err
		}

		manager, err := newManager(cmd)
		if err != nil {
			return err
		}

		updated, err := manager.SetActive(ctx, cmd.Args().Get(0), active)
		if err != nil {
			return err
		}

		state := "deactivated"
		if active {
			state = "activated"
		}

		fmt.Printf("Workflow %q %s\n", updated.Name, state)

		return nil
	}
}

// newManager builds the remote-store client from the global flags. The
// API key is checked here so argument errors surface before any remote
// call is attempted.
func newManager(cmd *cli.Command) (*workflow.Manager, error) {
	store, err := client.New(client.Config{
		BaseURL: cmd.String("base-url"),
		APIKey:  cmd.String("api-key"),
	})
	if err != nil {
		return nil, err
	}

	return workflow.NewManager(store), nil
}

// requireArgs prints the subcommand usage when positional arguments are
// missing, so no mutation is attempted.
func requireArgs(cmd *cli.Command, n int) error {
	if cmd.Args().Len() >= n {
		return nil
	}

	if err := cli.ShowSubcommandHelp(cmd); err != nil {
		return err
	}

	return fmt.Errorf("expected %d argument(s), got %d", n, cmd.Args().Len())
}

// parseValue interprets the raw CLI value as JSON when it is
// well-formed (numbers, booleans, null, quoted strings, arrays,
// objects) and falls back to the literal string otherwise.
func parseValue(raw string) any {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err == nil {
		return value
	}

	return raw
}

func workflowState(active, archived bool) string {
	switch {
	case archived:
		return "ARCHIVED"
	case active:
		return "ACTIVE"
	default:
		return "INACTIVE"
	}
}

func confirm(prompt string) bool {
	fmt.Printf("%s (yes/no): ", prompt)

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}

	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))

	return answer == "yes" || answer == "y"
}
