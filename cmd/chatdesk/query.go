package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/HendryAvila/chatdesk/internal/store"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

const (
	outputTable = "table"
	outputJSON  = "json"

	previewWidth = 60
)

func newQueryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Inspect stored users and messages",
	}
	cmd.AddCommand(newQueryUsersCmd(a), newQueryMessagesCmd(a))
	return cmd
}

func newQueryUsersCmd(a *app) *cobra.Command {
	var (
		status string
		limit  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := a.openStore()
			if err != nil {
				return err
			}
			defer cleanup()

			users, err := st.ListUsers(cmd.Context(), store.UserListOptions{Status: status, Limit: limit})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output == outputJSON {
				return writeJSON(out, users)
			}

			rows := [][]string{}
			for _, u := range users {
				rows = append(rows, []string{
					strconv.FormatInt(u.ID, 10),
					u.Email,
					u.FullName(),
					u.Status,
					u.CreatedAt.Format("2006-01-02 15:04"),
				})
			}
			writeTable(out, []string{"ID", "Email", "Name", "Status", "Created"}, rows)
			fmt.Fprintf(out, "\n%d users\n", len(users))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only users with this status")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum number of users (0 for all)")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	return cmd
}

func newQueryMessagesCmd(a *app) *cobra.Command {
	var (
		userID int64
		limit  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "messages",
		Short: "List a user's messages, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := a.openStore()
			if err != nil {
				return err
			}
			defer cleanup()

			msgs, err := st.UserMessages(cmd.Context(), userID, store.Page{Limit: limit})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output == outputJSON {
				return writeJSON(out, msgs)
			}

			rows := [][]string{}
			for _, m := range msgs {
				session := "-"
				if m.SessionID != nil {
					session = *m.SessionID
				}
				rows = append(rows, []string{
					strconv.FormatInt(m.ID, 10),
					m.Timestamp.Format("2006-01-02 15:04:05"),
					m.SenderType,
					session,
					preview(m.Message),
				})
			}
			writeTable(out, []string{"ID", "Time", "Sender", "Session", "Message"}, rows)
			fmt.Fprintf(out, "\n%d messages\n", len(msgs))
			return nil
		},
	}

	cmd.Flags().Int64VarP(&userID, "user", "u", 0, "user id")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "maximum number of messages")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t)
}

// preview shortens s to one table cell.
func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewWidth {
		return s
	}
	return string(r[:previewWidth-3]) + "..."
}
