package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiaot623/ledcontent/internal/service"
)

func newImageCommand(ctx *commandContext) *cobra.Command {
	imageCmd := &cobra.Command{
		Use:   "image",
		Short: "Manage the animation image registry",
	}

	imageCmd.AddCommand(newImageAddCommand(ctx))
	imageCmd.AddCommand(newImageListCommand(ctx))
	imageCmd.AddCommand(newImageRemoveCommand(ctx))

	return imageCmd
}

func newImageAddCommand(ctx *commandContext) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Register an image name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd.Context(), func(svc *service.Service) error {
				img, err := svc.RegisterImage(cmd.Context(), args[0], description)
				if err != nil {
					return describeValidation(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Registered image %s\n", img.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Free-form description")
	return cmd
}

func newImageListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd.Context(), func(svc *service.Service) error {
				images, err := svc.ListImages(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(images) == 0 {
					fmt.Fprintln(out, "No images")
					return nil
				}
				rows := make([][]string, 0, len(images))
				for _, img := range images {
					rows = append(rows, []string{img.Name, img.Description, img.CreatedAt.Local().Format(stampLayout)})
				}
				fmt.Fprintln(out, renderTable([]string{"Name", "Description", "Registered"}, rows, nil))
				return nil
			})
		},
	}
}

func newImageRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "rm NAME",
		Aliases: []string{"remove"},
		Short:   "Remove an image that no animation uses",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd.Context(), func(svc *service.Service) error {
				if err := svc.RemoveImage(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed image %s\n", args[0])
				return nil
			})
		},
	}
}
