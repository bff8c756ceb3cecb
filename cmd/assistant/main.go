package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/faiqhilman13/FinancialAssistant/internal/assistant"
	"github.com/faiqhilman13/FinancialAssistant/internal/config"
	"github.com/faiqhilman13/FinancialAssistant/internal/llm"
	"github.com/faiqhilman13/FinancialAssistant/internal/logger"
	"github.com/faiqhilman13/FinancialAssistant/internal/resolver"
	"github.com/faiqhilman13/FinancialAssistant/internal/store"
	"github.com/faiqhilman13/FinancialAssistant/internal/vocab"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)
	ctx := logger.WithContext(context.Background(), log)

	st, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("opening transaction store")
	}
	defer closeStore()

	categories := vocab.DefaultCategories()
	rule := resolver.NewRuleResolver(categories, st)

	var llmResolver assistant.Resolver
	if cfg.Gemini.APIKey != "" {
		llmResolver = llm.NewResolver(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Timeout(), categories, st)
	}

	a := assistant.New(st, rule, llmResolver, assistant.TimeReference(cfg.Time.Reference))

	fmt.Println("Financial Assistant")
	if a.LLMEnabled() {
		fmt.Println("Gemini intent extraction enabled")
	} else {
		fmt.Println("No API key found - running in rule-based fallback mode")
	}
	fmt.Println()

	printClients(ctx, a)
	runLoop(ctx, a, log)
}

func buildStore(ctx context.Context, cfg *config.Config) (store.TransactionStore, func(), error) {
	switch cfg.Store.Backend {
	case "bigquery":
		bq, err := store.NewBigQueryStore(ctx, cfg.Store.ProjectID, cfg.Store.DatasetID)
		if err != nil {
			return nil, nil, err
		}
		return bq, func() { bq.Close() }, nil
	default:
		mem, err := store.LoadDataset(ctx, cfg.Store.DatasetPath)
		if err != nil {
			return nil, nil, err
		}
		return mem, func() {}, nil
	}
}

func printClients(ctx context.Context, a *assistant.Assistant) {
	summaries, err := a.Clients(ctx)
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("listing clients")
		return
	}

	fmt.Println("Available clients:")
	for i, s := range summaries {
		if i == 5 {
			fmt.Printf("  ... and %d more\n", len(summaries)-i)
			break
		}
		fmt.Printf("  Client %d: %d transactions, $%s total (%s to %s)\n",
			s.ClientID, s.TransactionCount, s.TotalSpending.StringFixed(2),
			s.FirstTransaction.Format("2006-01-02"), s.LastTransaction.Format("2006-01-02"))
	}
	fmt.Println()
}

func runLoop(ctx context.Context, a *assistant.Assistant, log zerolog.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	current := 0

	for {
		if current == 0 {
			fmt.Print("Enter client ID (or 'quit'): ")
			if !scanner.Scan() {
				return
			}
			input := strings.TrimSpace(scanner.Text())
			if input == "" {
				continue
			}
			if strings.EqualFold(input, "quit") {
				return
			}

			id, err := strconv.Atoi(input)
			if err != nil {
				fmt.Println("Please enter a valid client ID number.")
				continue
			}
			if !switchClient(ctx, a, id) {
				continue
			}
			current = id
			continue
		}

		fmt.Printf("Client %d> ", current)
		if !scanner.Scan() {
			return
		}
		question := strings.TrimSpace(scanner.Text())
		switch {
		case question == "":
			continue
		case strings.EqualFold(question, "quit"):
			return
		case strings.EqualFold(question, "switch"):
			current = 0
			continue
		case strings.EqualFold(question, "clear"):
			a.ResetContext(current)
			fmt.Println("Context cleared.")
			continue
		}

		answer, err := a.Ask(ctx, current, question)
		if err != nil {
			log.Error().Err(err).Msg("answering question")
		}
		fmt.Println(answer)
	}
}

// switchClient prints the client's dataset summary, mirroring the
// confirmation shown when the operator selects a client.
func switchClient(ctx context.Context, a *assistant.Assistant, clientID int) bool {
	summary, err := a.ClientSummary(ctx, clientID)
	if err != nil {
		fmt.Println(assistant.MessageUnknownClient(clientID))
		return false
	}

	fmt.Printf("Switched to client %d\n", clientID)
	fmt.Printf("  %d transactions\n", summary.TransactionCount)
	fmt.Printf("  $%s total spending\n", summary.TotalSpending.StringFixed(2))
	fmt.Printf("  Data from %s to %s\n",
		summary.FirstTransaction.Format("2006-01-02"), summary.LastTransaction.Format("2006-01-02"))
	return true
}
