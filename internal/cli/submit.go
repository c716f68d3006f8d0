package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/nilayanand/fluxbot/internal/app"
	"github.com/nilayanand/fluxbot/internal/usecase"
	"github.com/spf13/cobra"
)

// newSubmitCommand creates the submit command.
func newSubmitCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Content string
		Proof   string
	}

	cmd := &cobra.Command{
		Use:     "submit [TASK_ID]",
		Short:   "Submit completed work for the claimed task",
		GroupID: groupTask,
		Long: `Submit the finished comment for a task.

Without an argument the currently tracked claim is submitted. The
content comes from --content, or from stdin when the flag is omitted.
Submission clears the claim and starts the post-submission cooldown
immediately.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := login(ctx, c); err != nil {
				return err
			}

			content := opts.Content
			if content == "" {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read content from stdin: %w", err)
				}
				content = strings.TrimSpace(string(raw))
			}
			if content == "" {
				return fmt.Errorf("nothing to submit: pass --content or pipe it on stdin")
			}

			in := usecase.SubmitTaskInput{
				Content:  content,
				ProofURL: opts.Proof,
				Quiet:    !c.HasNotifier(),
			}
			if len(args) == 1 {
				in.TaskID = args[0]
			}

			out, err := c.SubmitTaskUseCase().Execute(ctx, in)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s %s\n", styleOK.Render("submitted"), styleEmphasis.Render(out.TaskID))
			fmt.Fprintln(w, renderKV("Cooldown", fmt.Sprintf("until %s",
				renderClock(out.CooldownEnd, c.Config.Notify.Location))))
			if out.Summary != nil {
				fmt.Fprintln(w, renderKV("Earned", fmt.Sprintf("$%.2f total, $%.2f pending",
					out.Summary.TotalAmount, out.Summary.RemainingPayout)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Content, "content", "c", "", "The completed comment text")
	cmd.Flags().StringVar(&opts.Proof, "proof", "", "Link to the published comment")
	return cmd
}
