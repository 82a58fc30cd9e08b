package main

import (
	"fmt"

	"github.com/HendryAvila/chatdesk/internal/factory"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := a.openStore()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := st.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema is up to date (%s)\n", a.cfg.Database.Driver)
			return nil
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	var (
		users    int
		messages int
		seed     uint64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with fake users and messages",
		Long: `Create fake users, each with a number of chat messages.

A non-zero --seed makes the generated data reproducible.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if users < 0 || messages < 0 {
				return fmt.Errorf("--users and --messages must not be negative")
			}
			st, cleanup, err := a.openStore()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			f := factory.New(st, gofakeit.New(seed))

			created, err := f.Users(ctx, users, factory.UserAttrs{})
			if err != nil {
				return fmt.Errorf("seeding users: %w", err)
			}
			total := 0
			for _, u := range created {
				msgs, err := f.Messages(ctx, messages, factory.MessageAttrs{UserID: u.ID})
				if err != nil {
					return fmt.Errorf("seeding messages for user %d: %w", u.ID, err)
				}
				total += len(msgs)
			}

			a.log.Info().Int("users", len(created)).Int("messages", total).Msg("seed complete")
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users and %d messages\n", len(created), total)
			return nil
		},
	}

	cmd.Flags().IntVarP(&users, "users", "u", 10, "number of users to create")
	cmd.Flags().IntVarP(&messages, "messages", "m", 5, "messages per user")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 picks one)")
	return cmd
}
