package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xiaot623/ledcontent/internal/domain"
	"github.com/xiaot623/ledcontent/internal/importer"
	"github.com/xiaot623/ledcontent/internal/render"
	"github.com/xiaot623/ledcontent/internal/service"
)

const stampLayout = "2006-01-02 15:04"

func newImportCommand(ctx *commandContext) *cobra.Command {
	var activate, noActivate, test bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a TOML content document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if activate && noActivate {
				return errors.New("--activate and --no-activate are mutually exclusive")
			}
			doc, err := importer.LoadFile(args[0])
			if err != nil {
				return err
			}
			if activate {
				doc.IsActive = true
			}
			if noActivate {
				doc.IsActive = false
			}
			if test {
				doc.IsTest = true
			}

			return ctx.withService(cmd.Context(), func(svc *service.Service) error {
				if err := svc.SaveDocument(cmd.Context(), doc); err != nil {
					return describeValidation(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%d sessions)%s\n", doc.DocumentID, len(doc.Sessions), flagSuffix(doc.IsActive, doc.IsTest))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&activate, "activate", false, "Make the document live")
	cmd.Flags().BoolVar(&noActivate, "no-activate", false, "Import without making the document live")
	cmd.Flags().BoolVar(&test, "test", false, "Make the document the test document")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd.Context(), func(svc *service.Service) error {
				docs, err := svc.ListDocuments(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(docs) == 0 {
					fmt.Fprintln(out, "No documents")
					return nil
				}
				rows := make([][]string, 0, len(docs))
				for _, d := range docs {
					rows = append(rows, []string{
						d.DocumentID,
						d.Title,
						strconv.Itoa(d.SessionCount),
						yesNo(d.IsActive),
						yesNo(d.IsTest),
						d.CreatedAt.Local().Format(stampLayout),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Title", "Sessions", "Live", "Test", "Created"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Print a document as the display would receive it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "def" && format != "json" {
				return fmt.Errorf("unknown format %q (want def or json)", format)
			}
			return ctx.withService(cmd.Context(), func(svc *service.Service) error {
				doc, err := svc.GetDocument(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if doc == nil {
					return fmt.Errorf("%s: %w", args[0], domain.ErrDocumentNotFound)
				}

				out := cmd.OutOrStdout()
				if format == "json" {
					data, err := json.MarshalIndent(render.Project(doc), "", "  ")
					if err != nil {
						return err
					}
					fmt.Fprintln(out, string(data))
					return nil
				}
				fmt.Fprintln(out, render.Definition(doc))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "def", "Output format: def or json")
	return cmd
}

func newActivateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "activate ID",
		Short: "Make a document live",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd.Context(), func(svc *service.Service) error {
				if err := svc.Activate(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Activated %s\n", args[0])
				return nil
			})
		},
	}
}

func newTestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test ID",
		Short: "Make a document the test document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd.Context(), func(svc *service.Service) error {
				if err := svc.MarkTest(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Marked %s as test\n", args[0])
				return nil
			})
		},
	}
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a document and its sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd.Context(), func(svc *service.Service) error {
				if err := svc.DeleteDocument(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func describeValidation(err error) error {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	msg := "content rejected:"
	for _, v := range verr.Violations {
		msg += "\n  - " + v
	}
	return errors.New(msg)
}

func flagSuffix(active, test bool) string {
	switch {
	case active && test:
		return " [live, test]"
	case active:
		return " [live]"
	case test:
		return " [test]"
	}
	return ""
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
