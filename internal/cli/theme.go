package cli

import (
	"github.com/ppiankov/veritas/internal/model"
	"github.com/ppiankov/veritas/internal/prefs"
	"github.com/ppiankov/veritas/internal/render"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// themeCmd shows or changes the display theme
var themeCmd = &cobra.Command{
	Use:       "theme [light|dark|toggle]",
	Short:     "Show or change the display theme",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"light", "dark", "toggle"},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		p, err := openPipeline()
		if err != nil {
			return err
		}
		defer closePipeline(p, &err)

		if len(args) == 1 {
			var serr error
			if args[0] == "toggle" {
				_, serr = p.Prefs.Toggle()
			} else {
				theme, perr := prefs.ParseTheme(args[0])
				if perr != nil {
					return perr
				}
				serr = p.Prefs.SetTheme(theme)
			}
			if serr != nil {
				zap.L().Warn("theme not saved", zap.Error(serr))
			}
		}

		theme := p.Prefs.Theme()
		if jsonOut {
			return render.JSON(cmd.OutOrStdout(), map[string]model.Theme{"theme": theme})
		}
		cmd.Printf("Theme: %s\n", theme)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(themeCmd)
}
