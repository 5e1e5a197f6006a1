package commands

import (
	"fmt"

	"github.com/gosimple/slug"
	"github.com/spf13/cobra"

	"github.com/dkorchagin/plume/internal/models"
)

func GroupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Administer post groups",
	}
	cmd.AddCommand(groupsCreateCmd(), groupsListCmd())
	return cmd
}

func groupsCreateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a group; the slug is derived from the title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage()
			if err != nil {
				return err
			}
			defer store.Close()

			group := models.Group{
				Title:       args[0],
				Slug:        slug.Make(args[0]),
				Description: description,
			}
			if err := store.CreateGroup(&group); err != nil {
				return fmt.Errorf("failed to create group: %w", err)
			}
			fmt.Printf("Created group %q at /group/%s/\n", group.Title, group.Slug)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Group description")
	return cmd
}

func groupsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage()
			if err != nil {
				return err
			}
			defer store.Close()

			groups, err := store.Groups()
			if err != nil {
				return err
			}
			for _, g := range groups {
				fmt.Printf("%-20s  /group/%s/\n", g.Title, g.Slug)
			}
			return nil
		},
	}
}
