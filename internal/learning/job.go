// Package learning implements the nightly FAQ learning job: it mines stored
// conversation transcripts for candidate FAQ entries and merges them into
// the knowledge document.
package learning

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/flowmindhq/flowmind/internal/ai"
	"github.com/flowmindhq/flowmind/internal/domain"
	"github.com/flowmindhq/flowmind/internal/knowledge"
	"github.com/flowmindhq/flowmind/internal/transcript"
)

// transcriptWindow bounds how much of each conversation is sent to the
// model: the most recent characters carry the open questions.
const transcriptWindow = 6000

// logExcerptLimit bounds the summary excerpt written to the learning log.
const logExcerptLimit = 1000

// Summarizer is the AI surface the job needs. *ai.Client satisfies it.
type Summarizer interface {
	ExtractFAQ(ctx context.Context, conversation string) (string, error)
	MergeFAQ(ctx context.Context, currentFAQ []domain.FAQEntry, candidates string) (string, error)
}

// Job runs the transcript-to-FAQ pipeline. A single mutex makes concurrent
// invocations single-writer; the job itself stays non-idempotent (it
// reprocesses every transcript on each run).
type Job struct {
	know        *knowledge.Store
	transcripts *transcript.Store
	summarizer  Summarizer
	logPath     string
	logger      *slog.Logger
	mu          sync.Mutex
}

// NewJob wires a learning job against the knowledge store, transcript store
// and AI client. logPath is the plain-text learning log.
func NewJob(know *knowledge.Store, transcripts *transcript.Store, summarizer Summarizer, logPath string, logger *slog.Logger) *Job {
	if logger == nil {
		logger = slog.Default()
	}
	return &Job{
		know:        know,
		transcripts: transcripts,
		summarizer:  summarizer,
		logPath:     logPath,
		logger:      logger.With("component", "learning"),
	}
}

// Run executes one learning pass. A merge response that is not valid JSON
// after fence stripping aborts the pass: the FAQ list and the learning log
// are left untouched.
func (j *Job) Run(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	doc := j.know.Load()
	j.logger.Info("Learning pass started", "faq_count", len(doc.FAQ))

	paths, err := j.transcripts.List()
	if err != nil {
		return fmt.Errorf("list transcripts: %w", err)
	}

	summaryText := j.summarize(ctx, paths)
	j.logger.Info("Transcript summarization complete", "transcripts", len(paths))

	raw, err := j.summarizer.MergeFAQ(ctx, doc.FAQ, summaryText)
	if err != nil {
		return fmt.Errorf("merge faq: %w", err)
	}

	cleaned := ai.StripFences(raw)
	var merged []domain.FAQEntry
	if err := json.Unmarshal([]byte(cleaned), &merged); err != nil {
		j.logger.Error("Merge output is not valid JSON, aborting", "error", err, "raw", cleaned)
		return fmt.Errorf("parse merged faq: %w", err)
	}

	// Save a fresh copy. The loaded document is shared with concurrent
	// readers and must not change until the save has succeeded.
	before := len(doc.FAQ)
	updated := *doc
	updated.FAQ = merged
	if err := j.know.Save(&updated); err != nil {
		return fmt.Errorf("save knowledge: %w", err)
	}

	if err := j.appendLog(len(paths), before, len(merged), summaryText); err != nil {
		j.logger.Warn("Failed to append learning log", "error", err)
	}

	j.logger.Info("Knowledge base updated", "old_faqs", before, "new_faqs", len(merged))
	return nil
}

// summarize collects raw candidate-FAQ responses per transcript. Transcript
// read or completion failures drop that transcript's contribution only.
func (j *Job) summarize(ctx context.Context, paths []string) string {
	var summaries []string
	for _, path := range paths {
		conv, err := j.transcripts.Read(path)
		if err != nil {
			j.logger.Warn("Skipping unreadable transcript", "path", path, "error", err)
			continue
		}

		text := conv.Render()
		if len(text) > transcriptWindow {
			text = text[len(text)-transcriptWindow:]
		}

		reply, err := j.summarizer.ExtractFAQ(ctx, text)
		if err != nil {
			j.logger.Warn("Summarization failed for transcript", "path", path, "error", err)
			continue
		}
		summaries = append(summaries, reply)
	}
	return strings.Join(summaries, "\n\n")
}

func (j *Job) appendLog(transcripts, before, after int, summaryText string) error {
	excerpt := summaryText
	if len(excerpt) > logExcerptLimit {
		excerpt = excerpt[:logExcerptLimit]
	}

	entry := fmt.Sprintf(`
[%s]
Learned from %d conversation(s)
Old FAQs: %d -> New FAQs: %d
-------------------------------------------------------
%s...
=======================================================

`, time.Now().Format("2006-01-02 15:04:05"), transcripts, before, after, excerpt)

	f, err := os.OpenFile(j.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open learning log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("write learning log: %w", err)
	}
	return nil
}
