package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/flowmindhq/flowmind/internal/ai"
	"github.com/flowmindhq/flowmind/internal/knowledge"
	"github.com/flowmindhq/flowmind/internal/learning"
	"github.com/flowmindhq/flowmind/internal/transcript"
)

func newLearnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "learn",
		Short: "Run one learning pass over stored conversation transcripts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}

			logger := slog.Default()
			know := knowledge.NewStore(cfg.KnowledgePath())
			transcripts := transcript.NewStore(cfg.ConversationsDir())
			aiClient := ai.NewClient(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, logger)

			job := learning.NewJob(know, transcripts, aiClient, cfg.LearningLogPath(), logger)
			return job.Run(cmd.Context())
		},
	}
}
