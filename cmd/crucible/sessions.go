package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"crucible/internal/conversation/persist"
	"crucible/internal/provider"
	"crucible/internal/tool/pathutil"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := sessionFiles()
		if err != nil {
			return err
		}
		summaries, err := files.List()
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Println("No saved sessions.")
			return nil
		}
		for _, s := range summaries {
			fmt.Printf("%s  %-24s %s  %d messages\n", s.ShortID, s.Name, s.Updated, s.Messages)
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <prefix>",
	Short: "Print the transcript of the session matching the prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := sessionFiles()
		if err != nil {
			return err
		}
		session, err := files.LoadByPrefix(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s (%s), %d messages\n\n", session.Name, session.ID, len(session.Messages))
		for _, msg := range session.Messages {
			printMessage(msg)
		}
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <prefix>",
	Short: "Delete the session matching the prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := sessionFiles()
		if err != nil {
			return err
		}
		name, err := files.DeleteByPrefix(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Deleted session %q.\n", name)
		return nil
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
}

func sessionFiles() (*persist.FileStore, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determine working directory: %w", err)
	}
	root, err := pathutil.CanonicaliseRoot(cwd)
	if err != nil {
		return nil, fmt.Errorf("canonicalise project root: %w", err)
	}
	dir := cfg.Sessions.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	return persist.NewFileStore(dir)
}

func printMessage(msg provider.Message) {
	switch msg.Role {
	case provider.RoleTool:
		for _, result := range msg.ToolResults {
			status := "ok"
			if result.Error != "" {
				status = "error"
			}
			fmt.Printf("[tool %s: %s]\n", result.Name, status)
		}
	default:
		if msg.Content != "" {
			fmt.Printf("%s: %s\n", msg.Role, msg.Content)
		}
		for _, call := range msg.ToolCalls {
			fmt.Printf("%s: -> %s\n", msg.Role, call.Name)
		}
	}
	if msg.Content != "" || len(msg.ToolCalls) > 0 || len(msg.ToolResults) > 0 {
		fmt.Println(strings.Repeat("-", 40))
	}
}
