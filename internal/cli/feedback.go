package cli

import (
	"time"

	"github.com/ppiankov/veritas/internal/feedback"
	"github.com/ppiankov/veritas/internal/model"
	"github.com/ppiankov/veritas/internal/render"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fbRating   int
	fbName     string
	fbEmail    string
	fbComments string
	fbOpen     bool
)

// feedbackCmd prepares a feedback mail
var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Rate Veritas and send comments by mail",
	Long: `Builds a mailto link with your rating and comments. With --open the link
is handed to your default mail client.

Example:
  veritas feedback --rating 5 --comments "Fast and clear"
  veritas feedback -r 3 --name Ana --email ana@example.com --open`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fb := model.Feedback{
			Rating:    fbRating,
			Name:      fbName,
			Email:     fbEmail,
			Comments:  fbComments,
			Timestamp: time.Now(),
		}

		link, err := feedback.MailtoURL(appConfig.Feedback.Recipient, appConfig.Feedback.Subject, fb)
		if err != nil {
			return err
		}

		if jsonOut {
			return render.JSON(cmd.OutOrStdout(), map[string]string{"mailto": link})
		}
		cmd.Println(link)

		if fbOpen {
			if err := feedback.Open(cmd.Context(), link); err != nil {
				zap.L().Warn("could not open mail client", zap.Error(err))
				cmd.PrintErrln("Could not open a mail client; copy the link above.")
				return nil
			}
			cmd.Println("✓ Thank you for your feedback!")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(feedbackCmd)

	feedbackCmd.Flags().IntVarP(&fbRating, "rating", "r", 0, "rating from 1 to 5 (required)")
	feedbackCmd.Flags().StringVar(&fbName, "name", "", "your name")
	feedbackCmd.Flags().StringVar(&fbEmail, "email", "", "your email address")
	feedbackCmd.Flags().StringVarP(&fbComments, "comments", "m", "", "comments")
	feedbackCmd.Flags().BoolVar(&fbOpen, "open", false, "open the link in the default mail client")
	_ = feedbackCmd.MarkFlagRequired("rating")
}
