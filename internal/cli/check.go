package cli

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/veritas/internal/model"
	"github.com/ppiankov/veritas/internal/pipeline"
	"github.com/ppiankov/veritas/internal/render"
	"github.com/ppiankov/veritas/internal/session"
	"github.com/spf13/cobra"
)

var (
	checkTimeout time.Duration
	legalFile    string
)

// checkCmd groups the analysis commands
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a fact or legal check",
}

var checkFactCmd = &cobra.Command{
	Use:   "fact <claim or link...>",
	Short: "Verify a claim, statement or link",
	Long: `Fact checks a claim and reports a verdict (True, Fake or Insufficient data),
a confidence level, an accuracy score and an explanation.

Example:
  veritas check fact "The Great Wall of China is visible from space"
  veritas check fact https://example.com/article --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd, model.Submission{Query: strings.Join(args, " "), Mode: model.ModeFact})
	},
}

var checkLegalCmd = &cobra.Command{
	Use:   "legal [text...]",
	Short: "Check a legal document or statement",
	Long: `Legal checks text or an attached document (image, video, PDF or Word)
and reports a verdict (Original, Fake or Needs Further Verification),
an accuracy score, a summary and the reasoning.

Example:
  veritas check legal --file contract.pdf
  veritas check legal "Is a verbal agreement binding for a property sale?"
  veritas check legal --file deed.jpg "Check the notary seal"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sub := model.Submission{Query: strings.Join(args, " "), Mode: model.ModeLegal}
		if legalFile != "" {
			file, err := readAttachment(legalFile)
			if err != nil {
				return err
			}
			sub.File = file
		}
		return runCheck(cmd, sub)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.AddCommand(checkFactCmd)
	checkCmd.AddCommand(checkLegalCmd)

	checkCmd.PersistentFlags().DurationVar(&checkTimeout, "timeout", 2*time.Minute, "overall timeout for the check")
	checkLegalCmd.Flags().StringVarP(&legalFile, "file", "f", "", "document to analyze (image, video, PDF or Word)")
}

func runCheck(cmd *cobra.Command, sub model.Submission) (err error) {
	p, err := openPipeline()
	if err != nil {
		return err
	}
	defer closePipeline(p, &err)

	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()

	st, err := p.Session.Submit(ctx, sub)
	if err != nil {
		return err
	}
	return printState(cmd, p, st)
}

// printState writes st and reports a failed analysis as ErrAnalysisFailed
func printState(cmd *cobra.Command, p *pipeline.Pipeline, st session.State) error {
	if jsonOut {
		if err := render.JSON(cmd.OutOrStdout(), st); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), newRenderer(p).State(st))
	}

	if st.Status == session.StatusFailed {
		return ErrAnalysisFailed
	}
	return nil
}

// documentTypes covers extensions missing from some system MIME tables
var documentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// readAttachment loads a file and checks its size and type
func readAttachment(path string) (*model.Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	if info.Size() > model.MaxAttachmentBytes {
		return nil, &model.ValidationError{Field: "file", Message: "file exceeds 20 MiB"}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	if len(data) == 0 {
		return nil, &model.ValidationError{Field: "file", Message: "file is empty"}
	}

	ext := strings.ToLower(filepath.Ext(path))
	mimeType := documentTypes[ext]
	if mimeType == "" {
		mimeType = mime.TypeByExtension(ext)
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if !model.AllowedMIMEType(mimeType) {
		return nil, &model.ValidationError{Field: "file", Message: "unsupported file type " + mimeType}
	}

	return &model.Attachment{Name: filepath.Base(path), MIMEType: mimeType, Data: data}, nil
}
