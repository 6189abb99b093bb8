package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/sitemole/internal/browser"
	"github.com/lakshaymaurya-felt/sitemole/internal/config"
	"github.com/lakshaymaurya-felt/sitemole/internal/proc"
	"github.com/lakshaymaurya-felt/sitemole/internal/ui"
)

var killWait int

var killCmd = &cobra.Command{
	Use:   "kill",
	Short: "Force-close the browser",
	Long: `Force-closes every process of the selected browser, including
background and child processes, then waits for them to exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		id := browserFlag
		if id == "" {
			if settings, err := config.Load(); err == nil && settings.DefaultBrowser != "" {
				id = settings.DefaultBrowser
			}
		}
		if id == "" {
			id = "chrome"
		}
		b, err := browser.Lookup(id)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if !proc.Running(ctx, b) {
			fmt.Printf("%s is not running\n", b.Name)
			return nil
		}

		killed, err := proc.EnsureClosed(ctx, b, time.Duration(killWait)*time.Second)
		if err != nil {
			return err
		}
		fmt.Printf("%s closed %d %s process(es)\n", ui.IconCheck, killed, b.Name)
		return nil
	},
}

func init() {
	killCmd.Flags().IntVar(&killWait, "wait", 10, "Seconds to wait for processes to exit")
}
