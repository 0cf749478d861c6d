package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	faqmatch "github.com/poiesic/faqmatch"
	"github.com/poiesic/faqmatch/engine"
)

var (
	promptColor   = color.New(color.FgGreen, color.Bold)
	answerColor   = color.New(color.FgCyan)
	detailColor   = color.New(color.FgHiBlack)
	headingColor  = color.New(color.FgYellow, color.Bold)
	fallbackColor = color.New(color.FgRed)
)

func chatFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "no-warm",
			Usage: "Skip embedding the corpus at startup",
		},
	}
}

func chatCommand(c *cli.Context) error {
	bot, err := buildBot(c)
	if err != nil {
		return err
	}
	defer bot.Close()

	ctx := context.Background()
	if bot.Hybrid() && !c.Bool("no-warm") {
		fmt.Fprintln(os.Stderr, "Preparing embeddings...")
		if err := bot.Warm(ctx); err != nil {
			// Semantic scoring still works per query, or degrades to
			// lexical if the provider stays down.
			fmt.Fprintf(os.Stderr, "Warning: embedding warmup failed: %v\n", err)
		}
	}

	stats := bot.Stats()
	headingColor.Printf("FAQ assistant ready — %d entries", stats.TotalEntries)
	if bot.Hybrid() {
		fmt.Print(" (hybrid matching)")
	} else {
		fmt.Print(" (lexical matching)")
	}
	fmt.Println()
	detailColor.Println("Type 'help' for commands, 'exit' to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		promptColor.Print("you> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if done := runChatCommand(ctx, bot, line); done {
			break
		}
	}
	return scanner.Err()
}

// runChatCommand dispatches one REPL line. Returns true when the session
// should end.
func runChatCommand(ctx context.Context, bot *faqmatch.Bot, line string) bool {
	switch strings.ToLower(line) {
	case "exit", "quit":
		fmt.Println("Goodbye!")
		return true
	case "help":
		printHelp()
	case "stats":
		printStats(bot)
	case "history":
		printHistory(bot)
	case "analytics":
		printAnalytics(bot)
	case "categories":
		fmt.Println(strings.Join(bot.Categories(), ", "))
	case "clear":
		bot.ClearHistory()
		fmt.Println("Session history cleared.")
	default:
		if q, a, cat, ok := parseAdd(line); ok {
			if err := bot.AddFAQ(ctx, q, a, cat); err != nil {
				fallbackColor.Printf("Could not add FAQ: %v\n", err)
			} else {
				fmt.Println("FAQ added.")
			}
			return false
		}
		askQuestion(ctx, bot, line)
	}
	return false
}

// parseAdd recognizes "add <question> | <answer> [| <category>]".
func parseAdd(line string) (question, answer, category string, ok bool) {
	if !strings.HasPrefix(strings.ToLower(line), "add ") {
		return "", "", "", false
	}
	parts := strings.Split(line[4:], "|")
	if len(parts) < 2 {
		return "", "", "", false
	}
	question = strings.TrimSpace(parts[0])
	answer = strings.TrimSpace(parts[1])
	if len(parts) > 2 {
		category = strings.TrimSpace(parts[2])
	}
	return question, answer, category, true
}

func askQuestion(ctx context.Context, bot *faqmatch.Bot, query string) {
	resp, err := bot.Ask(ctx, query)
	switch {
	case errors.Is(err, engine.ErrEmptyQuery):
		fallbackColor.Println("Please ask a question.")
		return
	case errors.Is(err, engine.ErrEmptyCorpus):
		fallbackColor.Println("No FAQ data loaded. Run 'faqmatch download' first.")
		return
	case err != nil:
		fallbackColor.Printf("Error: %v\n", err)
		return
	}

	if resp.Fallback {
		fallbackColor.Println(engine.FallbackAnswer)
		if len(resp.Alternatives) > 0 {
			fmt.Println("You could try asking:")
			for _, alt := range resp.Alternatives {
				fmt.Printf("  - %s\n", alt)
			}
		}
		return
	}

	answerColor.Println(resp.Match.Entry.Answer)
	detailColor.Printf("(Confidence: %.2f%%, Method: %s, Category: %s)\n",
		resp.Match.Score*100, resp.Match.Method, resp.Match.Entry.Category)
}

func printHelp() {
	fmt.Println(`Commands:
  help                                  Show this help
  stats                                 Corpus statistics
  categories                            List FAQ categories
  history                               Show this session's interactions
  analytics                             Session analytics
  add <question> | <answer> [| <cat>]   Add a FAQ entry
  clear                                 Clear session history
  exit                                  Quit

Anything else is treated as a question.`)
}

func printStats(bot *faqmatch.Bot) {
	stats := bot.Stats()
	fmt.Printf("Entries: %d\n", stats.TotalEntries)
	for _, cat := range stats.Categories {
		fmt.Printf("  %-20s %d\n", cat, stats.CategoryCounts[cat])
	}
}

func printHistory(bot *faqmatch.Bot) {
	records := bot.History()
	if len(records) == 0 {
		fmt.Println("No interactions yet.")
		return
	}
	for i, rec := range records {
		fmt.Printf("%2d. [%s] %s\n", i+1,
			rec.Timestamp.Local().Format("15:04:05"), rec.Query)
		detailColor.Printf("    %s (%.2f%%, %s)\n",
			rec.Answer, rec.Score*100, rec.Method)
	}
}

func printAnalytics(bot *faqmatch.Bot) {
	a := bot.Analytics()
	if a == nil || a.TotalInteractions == 0 {
		fmt.Println("No interactions yet.")
		return
	}
	fmt.Printf("Interactions:   %d\n", a.TotalInteractions)
	fmt.Printf("Average score:  %.2f%%\n", a.AverageScore*100)
	fmt.Printf("Low confidence: %d (%.1f%%)\n", a.LowConfidenceCount, a.LowConfidenceRate)
	for method, count := range a.Methods {
		fmt.Printf("  %-10s %d\n", method, count)
	}
}
