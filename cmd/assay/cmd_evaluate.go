// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/teradata-labs/assay/internal/log"
	"github.com/teradata-labs/assay/pkg/evaluation"
	"github.com/teradata-labs/assay/pkg/llm"
	"github.com/teradata-labs/assay/pkg/llm/factory"
	"github.com/teradata-labs/assay/pkg/pricing"
	"github.com/teradata-labs/assay/pkg/types"
)

var (
	evalCommit       string
	evalRounds       int
	evalThreshold    float64
	evalRAGThreshold int
	evalTimeout      time.Duration
	evalFormat       string
	evalOutput       string
	evalVerbose      bool
	evalQuiet        bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [diff-file]",
	Short: "Evaluate a commit diff with the five-agent panel",
	Long: `Evaluate a unified diff with five LLM-backed reviewer agents.

The diff is read from the given file, or from stdin when the argument
is omitted or is "-". The agents discuss the change over up to
--rounds rounds, stopping early when their positions converge, and the
weighted consensus over the seven score pillars is printed.

Diffs larger than the RAG threshold are chunked into a TF-IDF index;
agents then see retrieved excerpts instead of the raw diff.

Examples:
  git diff HEAD~1 | assay evaluate
  assay evaluate changes.patch --commit 3f2a91c
  assay evaluate changes.patch --format json --output result.json
  assay evaluate changes.patch --rounds 5 --threshold 0.9 --verbose`,
	Args: cobra.MaximumNArgs(1),
	Run:  runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evalCommit, "commit", "", "commit hash label for the report (max 40 chars)")
	evaluateCmd.Flags().IntVar(&evalRounds, "rounds", 0, "maximum discussion rounds, 1-5 (default: config)")
	evaluateCmd.Flags().Float64Var(&evalThreshold, "threshold", -1, "convergence threshold, 0-1 (default: config)")
	evaluateCmd.Flags().IntVar(&evalRAGThreshold, "rag-threshold", -1, "diff size in bytes above which the RAG index is used (default: config)")
	evaluateCmd.Flags().DurationVar(&evalTimeout, "timeout", 0, "overall evaluation deadline (0 = none)")
	evaluateCmd.Flags().StringVar(&evalFormat, "format", "text", "output format (text, json)")
	evaluateCmd.Flags().StringVarP(&evalOutput, "output", "o", "", "write the report to a file instead of stdout")
	evaluateCmd.Flags().BoolVarP(&evalVerbose, "verbose", "v", false, "include per-agent summaries and round-to-round drift")
	evaluateCmd.Flags().BoolVarP(&evalQuiet, "quiet", "q", false, "suppress progress output")
}

func runEvaluate(cmd *cobra.Command, args []string) {
	diff, source, err := readDiff(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading diff: %v\n", err)
		os.Exit(1)
	}

	if evalFormat != "text" && evalFormat != "json" {
		fmt.Fprintf(os.Stderr, "Invalid format %q (must be text or json)\n", evalFormat)
		os.Exit(1)
	}

	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	req := buildRequest(cmd, diff)

	model, err := buildChatModel(req.ModelConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Provider setup failed: %v\n", err)
		os.Exit(1)
	}

	if !evalQuiet {
		fmt.Fprintf(os.Stderr, "📄 Diff: %s (%d bytes)\n", source, len(diff))
		fmt.Fprintf(os.Stderr, "🤖 Provider: %s (%s)\n", model.Name(), model.Model())
		fmt.Fprintln(os.Stderr)
	}

	ctx := context.Background()
	var cancel context.CancelFunc
	if evalTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, evalTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	// Ctrl-C stops the round loop; completed rounds still form the report.
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigch)
	go func() {
		<-sigch
		fmt.Fprintln(os.Stderr, "\nInterrupted, finishing with completed rounds...")
		cancel()
	}()

	events := make(chan evaluation.Event, 64)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for ev := range events {
			if !evalQuiet {
				printProgress(ev)
			}
		}
	}()

	orch := evaluation.New(model,
		evaluation.WithLogger(log.Logger()),
		evaluation.WithPricing(pricing.NewRegistry()),
		evaluation.WithEvents(events),
	)

	outcome, err := orch.Evaluate(ctx, req)

	// The orchestrator only sends while Evaluate runs, so closing here
	// is safe and lets the drain goroutine finish.
	close(events)
	<-drained

	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Evaluation failed: %v\n", err)
		os.Exit(1)
	}

	out := os.Stdout
	if evalOutput != "" {
		f, err := os.Create(evalOutput)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	if evalFormat == "json" {
		err = renderJSON(out, outcome)
	} else {
		err = renderText(out, outcome, evalVerbose)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		os.Exit(1)
	}

	if evalOutput != "" && !evalQuiet {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", evalOutput)
	}
}

// readDiff loads the diff from the file argument, or from stdin when
// the argument is absent or "-". Returns the diff and a label for
// progress output.
func readDiff(args []string) (string, string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", err
		}
		return string(data), args[0], nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", err
	}
	return string(data), "stdin", nil
}

// buildRequest merges config defaults and evaluate flags into the
// request. Flags win only when explicitly set: --threshold 0 is a
// legal value (stop after round 1), so presence is checked via Changed
// rather than sentinel comparison alone.
func buildRequest(cmd *cobra.Command, diff string) types.EvaluationRequest {
	req := types.NewEvaluationRequest(diff)
	req.CommitHash = evalCommit
	req.MaxRounds = config.Evaluation.MaxRounds
	req.ConvergenceThreshold = config.Evaluation.ConvergenceThreshold
	req.RAGThreshold = config.Evaluation.RAGThresholdBytes
	req.AgentTimeout = time.Duration(config.LLM.Timeout) * time.Second

	if cmd.Flags().Changed("rounds") {
		req.MaxRounds = evalRounds
	}
	if cmd.Flags().Changed("threshold") {
		req.ConvergenceThreshold = evalThreshold
	}
	if cmd.Flags().Changed("rag-threshold") {
		req.RAGThreshold = evalRAGThreshold
	}

	req.ModelConfig = types.ModelConfig{
		Provider:        config.LLM.Provider,
		Model:           config.LLM.Model,
		Temperature:     config.LLM.Temperature,
		MaxOutputTokens: config.LLM.MaxTokens,
	}
	return req
}

// buildChatModel constructs the provider client from the merged config
// and wraps it with call pacing and per-completion logging.
func buildChatModel(mc types.ModelConfig) (types.ChatModel, error) {
	f := factory.New(factory.Config{
		AnthropicAPIKey:        config.LLM.AnthropicAPIKey,
		OpenAIAPIKey:           config.LLM.OpenAIAPIKey,
		XAIAPIKey:              config.LLM.XAIAPIKey,
		GeminiAPIKey:           config.LLM.GeminiAPIKey,
		BedrockRegion:          config.LLM.BedrockRegion,
		BedrockAccessKeyID:     config.LLM.BedrockAccessKeyID,
		BedrockSecretAccessKey: config.LLM.BedrockSecretAccessKey,
		BedrockSessionToken:    config.LLM.BedrockSessionToken,
		BedrockProfile:         config.LLM.BedrockProfile,
		Timeout:                time.Duration(config.LLM.Timeout) * time.Second,
	})

	model, err := f.Create(mc)
	if err != nil {
		return nil, err
	}

	limiter := llm.NewLimiter(config.LLM.RequestsPerSecond, config.LLM.Burst)
	return llm.Instrument(model, limiter, log.Logger()), nil
}

// printProgress writes one progress line per orchestrator event.
func printProgress(ev evaluation.Event) {
	switch ev.Type {
	case evaluation.EventIndexBuilt:
		fmt.Fprintln(os.Stderr, "🔎 Large diff: retrieval index built")
	case evaluation.EventRoundStarted:
		fmt.Fprintf(os.Stderr, "⚡ Round %d (%s)...\n", ev.Round, ev.Purpose)
	case evaluation.EventAgentCompleted:
		fmt.Fprintf(os.Stderr, "   ✓ %s\n", ev.AgentRole.Display())
	case evaluation.EventRoundCompleted:
		fmt.Fprintf(os.Stderr, "   convergence %.3f\n", ev.ConvergenceScore)
	case evaluation.EventConverged:
		fmt.Fprintf(os.Stderr, "✅ Converged after round %d\n", ev.Round)
	}
}
