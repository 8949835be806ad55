package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/naysayer/internal/model"
	"github.com/ppiankov/naysayer/internal/pipeline"
	"github.com/ppiankov/naysayer/internal/report"
	"github.com/ppiankov/naysayer/internal/worker"
)

var chatTimeout time.Duration

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive session analyzing one product per line",
	Long: `Chat reads products from standard input, one per line, and prints a
risk summary for each. Lines use the batch format "product | scenario | brand".

Commands:
  /history   show the conversation so far
  /clear     forget the conversation
  /help      show this help
  /quit      leave the session`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().DurationVar(&chatTimeout, "timeout", 3*time.Minute, "timeout for each analysis")
	chatCmd.Flags().StringVar(&providerFlag, "provider", "", "reasoning backend (openai, deepseek, anthropic, ollama); overrides llm.provider")
	chatCmd.Flags().StringVar(&providerModel, "model", "", "model name; overrides llm.model")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(providerFlag, providerModel)
	if err != nil {
		return err
	}

	analyzer, err := pipeline.NewFromConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("init analyzer: %w", err)
	}

	session := &chatSession{
		analyzer: analyzer,
		renderer: report.NewRenderer(cfg.Output.IncludeFooter),
		timeout:  chatTimeout,
	}
	return session.run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
}

// chatSession is one interactive loop over a shared analyzer
type chatSession struct {
	analyzer *pipeline.Analyzer
	renderer *report.Renderer
	timeout  time.Duration
}

func (s *chatSession) run(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "naysayer %s (%s). Type a product name, /help for commands.\n", Version, s.analyzer.BackendName())

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/help":
			fmt.Fprintln(out, `Enter "product | scenario | brand". Commands: /history, /clear, /help, /quit`)
			continue
		case "/clear":
			s.analyzer.Conversation().Clear()
			fmt.Fprintln(out, "Conversation cleared.")
			continue
		case "/history":
			s.printHistory(out)
			continue
		}

		if strings.HasPrefix(line, "/") {
			fmt.Fprintf(out, "Unknown command %s, try /help\n", line)
			continue
		}

		req := worker.ParseRequestLine(line)
		result, err := s.analyze(ctx, req)
		if err != nil {
			fmt.Fprintf(out, "✗ %v\n", err)
			continue
		}

		s.renderer.RenderSummary(out, result)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func (s *chatSession) analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisReport, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.analyzer.Analyze(ctx, req)
}

func (s *chatSession) printHistory(out io.Writer) {
	msgs := s.analyzer.Conversation().Messages()
	if len(msgs) == 0 {
		fmt.Fprintln(out, "No conversation yet.")
		return
	}
	for i, m := range msgs {
		fmt.Fprintf(out, "%2d. [%s] %s\n", i+1, m.Role, m.Content)
	}
}
