package cli

import (
	"github.com/ppiankov/veritas/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API for a web front end",
	Long: `Serve exposes checks, history, theme and feedback over HTTP.

Routes:
  GET    /health
  POST   /api/analyze               JSON {query, mode, file} or multipart form
  GET    /api/state
  POST   /api/reset
  GET    /api/history
  DELETE /api/history
  GET    /api/history/{id}
  POST   /api/history/{id}/select
  GET    /api/theme
  PUT    /api/theme                 {theme: light|dark|toggle}
  POST   /api/feedback              returns a mailto link`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		p, err := openPipeline()
		if err != nil {
			return err
		}
		defer closePipeline(p, &err)

		addr := appConfig.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		srv := server.New(p.Session, p.History, p.Prefs, server.Options{
			AllowedOrigins:    appConfig.Server.AllowedOrigins,
			MaxUploadBytes:    appConfig.Server.MaxUploadBytes,
			FeedbackRecipient: appConfig.Feedback.Recipient,
			FeedbackSubject:   appConfig.Feedback.Subject,
		})
		return srv.Run(cmd.Context(), addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
}
