package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matiasleandrokruk/dispatchrag/internal/app"
	"github.com/matiasleandrokruk/dispatchrag/internal/domain/prediction"
)

func newPredictCmd() *cobra.Command {
	var (
		transcript string
		fullCtx    string
		topK       int
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Run one prediction and print it as JSON",
		Example: `  dispatchrag predict --transcript "there is smoke coming from"
  dispatchrag predict --transcript "he is not breathing" --context "caller: my father collapsed"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(transcript) == "" {
				return usageError{errors.New("--transcript is required")}
			}
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			a, err := app.Build(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			a.Start(cmd.Context())

			p, err := a.Predictions.Generate(cmd.Context(), prediction.Request{
				Transcript:         transcript,
				ContextForSeverity: fullCtx,
				TopK:               topK,
			})
			if closeErr := a.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(p.Record(), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal prediction: %w", err)
			}
			cmd.Println(string(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&transcript, "transcript", "t", "", "partial call transcript")
	cmd.Flags().StringVarP(&fullCtx, "context", "c", "", "full conversation used for severity")
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "neighbours to retrieve (default RETRIEVAL_TOP_K)")
	return cmd
}
