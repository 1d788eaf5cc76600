package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/patterns"
)

func listCmd(configFile *string) *cobra.Command {
	var examples bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List user patterns (or the stock examples)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, *configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			out := cmd.OutOrStdout()
			if examples {
				for _, id := range e.library.Examples.IDs() {
					fmt.Fprintf(out, "%s\t%s\n", id, e.library.Examples.Name(id))
				}
				return nil
			}

			pats, err := e.library.User.GetAll()
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(pats))
			for id := range pats {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			cursor := e.session.Current()
			for _, id := range ids {
				mark := " "
				if id == cursor.Active {
					mark = "*"
				}
				fmt.Fprintf(out, "%s %s\t%d bytes\n", mark, id, len(pats[id].Code))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&examples, "examples", false, "List the stock examples instead")
	return cmd
}

func exportCmd(configFile *string) *cobra.Command {
	var stdout bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all user patterns to a date-stamped JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, *configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			if stdout {
				f, err := e.library.Export()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(append(f.Data, '\n'))
				return err
			}

			path, err := e.library.ExportTo(e.cfg.ExportDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Write the JSON document to stdout instead of a file")
	return cmd
}

func importCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Import JSON exports or plain-text pattern files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, *configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			files := make([]patterns.File, len(args))
			for i, a := range args {
				files[i] = patterns.DiskFile{Path: a}
			}
			res, importErr := e.library.Import(cmd.Context(), files, e.cfg.ImportConcurrency)
			if err := printJSON(cmd, res); err != nil {
				return err
			}
			return importErr
		},
	}
	cmd.Flags().Int("import-concurrency", 4, "Files read in parallel")
	return cmd
}

func renameCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rename ID",
		Short: "Rename a user pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, *configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			d := patterns.NewTerminalDialog(cmd.InOrStdin(), cmd.OutOrStdout())
			entry, err := e.library.User.Rename(args[0], d)
			if err != nil {
				return err
			}
			return printJSON(cmd, entry)
		},
	}
}

func clearCmd(configFile *string) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every user pattern",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, *configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			var d patterns.Dialog = patterns.NewTerminalDialog(cmd.InOrStdin(), cmd.OutOrStdout())
			if yes {
				d = &patterns.ScriptedDialog{Confirmed: true}
			}
			entry, err := e.library.User.ClearAll(d)
			if errors.Is(err, patterns.ErrCancelled) {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing deleted.")
				return nil
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, entry)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
