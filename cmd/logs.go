package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/sitemole/internal/audit"
	"github.com/lakshaymaurya-felt/sitemole/internal/config"
	"github.com/lakshaymaurya-felt/sitemole/internal/core"
)

var logsLast int

var logsCmd = &cobra.Command{
	Use:   "logs [FILE]",
	Short: "List session logs, or print one",
	Long: `Without arguments, lists recent session logs newest first. With a file
name or path, prints that log. --last N prints the N most recent logs
in full.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load()
		if err != nil {
			return err
		}
		dir := settings.ResolvedLogDir()

		if len(args) == 1 {
			return printLog(dir, args[0])
		}

		sessions, err := audit.Sessions(dir)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Printf("No session logs under %s\n", dir)
			return nil
		}

		if logsLast > 0 {
			if logsLast < len(sessions) {
				sessions = sessions[:logsLast]
			}
			for i, s := range sessions {
				if i > 0 {
					fmt.Println()
				}
				fmt.Printf("=== %s ===\n", s.Name)
				content, err := audit.Read(s.Path)
				if err != nil {
					return err
				}
				fmt.Print(content)
			}
			return nil
		}

		for _, s := range sessions {
			fmt.Printf("  %s  %8s  %s\n",
				s.ModTime.Format("2006-01-02 15:04:05"),
				core.FormatSize(s.Size), s.Name)
		}
		return nil
	},
}

func init() {
	logsCmd.Flags().IntVar(&logsLast, "last", 0, "Print the N most recent logs in full")
}

// printLog accepts either a bare session file name or a full path.
func printLog(dir, name string) error {
	content, err := audit.Read(name)
	if err != nil {
		sessions, serr := audit.Sessions(dir)
		if serr != nil {
			return err
		}
		for _, s := range sessions {
			if s.Name == name {
				content, err = audit.Read(s.Path)
				break
			}
		}
		if err != nil {
			return err
		}
	}
	fmt.Print(content)
	return nil
}
