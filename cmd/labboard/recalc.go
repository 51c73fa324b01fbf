package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"labboard/internal/repository"
	"labboard/internal/service"
)

func recalcCmd(opts *rootOptions) *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:     "recalc",
		Short:   "Recompute and store a project's overall progress",
		Example: `  labboard recalc --project 6f1c2a9e-0c43-4c8e-9a55-3b1d2f7e8a10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(projectID)
			if err != nil {
				return fmt.Errorf("invalid --project: %w", err)
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, opts, "cli")
			if err != nil {
				return err
			}
			defer a.close()

			svc := service.NewProgressService(
				repository.NewProjectRepository(a.db, a.logger),
				repository.NewMilestoneRepository(a.db, a.logger),
				a.logger,
			)
			overall, err := svc.Recalculate(ctx, id, "cli")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s overall_progress=%.1f\n", id, overall)
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project ID")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}
