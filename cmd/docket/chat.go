package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/docket/internal/cli"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant in the terminal",
	Long: `Starts an interactive console session. Generated documents are written to
the output directory. Use /menu, /cancel and /help at any time; Ctrl+D exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if dir, _ := cmd.Flags().GetString("output"); dir != "" {
			app.Config.OutputDir = dir
		}
		sessionID, _ := cmd.Flags().GetString("session")
		plain, _ := cmd.Flags().GetBool("plain")
		exitOnCancel, _ := cmd.Flags().GetBool("exit-on-cancel")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return cli.RunChat(sigCtx, app, os.Stdin, os.Stdout, cli.ChatOptions{
			SessionID:    sessionID,
			Plain:        plain,
			ExitOnCancel: exitOnCancel,
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("session", "s", "", "Session ID to create or resume (default \"console\")")
	chatCmd.Flags().StringP("output", "o", "", "Directory for generated documents")
	chatCmd.Flags().Bool("plain", false, "Disable the banner and markdown rendering")
	chatCmd.Flags().Bool("exit-on-cancel", false, "Exit after /cancel")
}
