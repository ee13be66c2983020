package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type themeJSON struct {
	Name         string            `json:"name"`
	Builtin      bool              `json:"builtin,omitempty"`
	Roles        map[string]string `json:"roles,omitempty"`
	Vars         map[string]string `json:"vars,omitempty"`
	MissingRoles []string          `json:"missing_roles,omitempty"`
}

func (a *app) themesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "themes [name]",
		Short: "List daisyUI themes or show one theme's resolved colors",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.validateOptions()
			if err != nil {
				return err
			}
			doc, err := a.loadValid(cmd.Context(), a.documentPath(nil), opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				if !asJSON {
					printThemesHuman(out, doc)
					return nil
				}
				var list []themeJSON
				if doc.DaisyUI != nil {
					for _, t := range doc.DaisyUI.Themes {
						list = append(list, themeJSON{Name: t.Name, Builtin: t.Builtin, MissingRoles: t.MissingRoles()})
					}
				}
				return json.NewEncoder(out).Encode(list)
			}

			t, ok := doc.ThemeByName(args[0])
			if !ok {
				return fmt.Errorf("theme %q not found", args[0])
			}
			if t.Builtin {
				return fmt.Errorf("theme %q is built into daisyUI; its colors are not part of this configuration", t.Name)
			}
			if !asJSON {
				return printThemeHuman(out, t, opts.Palette)
			}
			roles, err := t.Resolve(opts.Palette)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(themeJSON{Name: t.Name, Roles: roles, Vars: t.Vars, MissingRoles: t.MissingRoles()})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
