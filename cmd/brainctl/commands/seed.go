package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/benvon/second-brain/internal/bootstrap"
	"github.com/benvon/second-brain/internal/database"
	"github.com/benvon/second-brain/internal/models"
	"github.com/spf13/cobra"
)

func newSeedCmd(opts *options) *cobra.Command {
	var clearFirst bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(ctx context.Context, app *bootstrap.Container) error {
				n, err := seedNotes(ctx, app.Notes, clearFirst, time.Now(), cmd.OutOrStdout())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d notes\n", n)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearFirst, "clear", false, "Delete every existing note first")
	return cmd
}

// seedNotes inserts the sample notes, dating each one relative to now
func seedNotes(ctx context.Context, repo database.NoteRepositoryInterface, clearFirst bool, now time.Time, out io.Writer) (int, error) {
	if clearFirst {
		deleted, err := repo.DeleteAll(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to clear notes: %w", err)
		}
		fmt.Fprintf(out, "Deleted %d notes\n", deleted)
	}

	for i, s := range samples {
		note := &models.Note{
			Title:     s.title,
			Content:   s.content,
			Type:      s.kind,
			Tags:      append([]string(nil), s.tags...),
			CreatedAt: now.AddDate(0, 0, -s.ageDays),
		}
		if err := repo.Create(ctx, note); err != nil {
			return i, fmt.Errorf("failed to insert %q: %w", s.title, err)
		}
		fmt.Fprintf(out, "  + %s\n", note.Title)
	}
	return len(samples), nil
}
