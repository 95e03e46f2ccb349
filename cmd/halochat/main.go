package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"HaloChat/pkg/config"
	"HaloChat/pkg/llm"
	"HaloChat/pkg/logger"
	"HaloChat/pkg/utils"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

const version = "0.1.0"

const outputWidth = 100

var (
	thinkingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Italic(true)
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)
	toolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	model := flag.String("model", "", "Override the configured model")
	noStream := flag.Bool("no-stream", false, "Fetch the full response instead of streaming")
	showThinking := flag.Bool("thinking", false, "Print reasoning text as it arrives")
	listModels := flag.Bool("models", false, "List models served by the endpoint")
	showVersion := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *showVersion {
		fmt.Printf("HaloChat v%s\n", version)
		return
	}

	cfg, cfgPath, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *model != "" {
		cfg.Model = *model
	}

	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.GetSugarLogger()
	log.Debugw("configuration loaded", "path", cfgPath, "model", cfg.Model)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []llm.Option{llm.WithLogger(log)}
	if cfg.RequestsPerSecond > 0 {
		limiter := utils.NewRateLimiter(cfg.RequestsPerSecond, 0)
		defer limiter.Stop()
		opts = append(opts, llm.WithRateLimiter(limiter))
	}
	client := llm.NewClient(opts...)

	if *listModels {
		models, err := client.ListModels(ctx, cfg.APIBaseURL, cfg.APIKey)
		if err != nil {
			log.Fatalf("list models: %v", err)
		}
		for _, id := range llm.GetModelIDs(models) {
			fmt.Println(id)
		}
		return
	}

	prompt := strings.Join(flag.Args(), " ")
	if strings.TrimSpace(prompt) == "" {
		fmt.Fprintln(os.Stderr, "usage: halochat [flags] <prompt>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	chatCfg := llm.ChatConfig{
		BaseURL:     cfg.APIBaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		Stream:      cfg.Stream && !*noStream,
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		MaxTokens:   cfg.MaxTokens,
		ExtraParams: cfg.ExtraParams,
		MaxRetries:  cfg.MaxRetries,
		BaseDelay:   cfg.RetryDelay(),
	}

	if chatCfg.Stream {
		chatCfg.Callbacks = llm.StreamCallbacks{
			OnThinkingStarted: func() {
				if *showThinking {
					fmt.Println(labelStyle.Render("· thinking"))
				}
			},
			OnThinkingChunk: func(text string) {
				if *showThinking {
					fmt.Print(thinkingStyle.Render(text))
				}
			},
			OnThinkingEnded: func() {
				if *showThinking {
					fmt.Println()
					fmt.Println(labelStyle.Render("· answer"))
				}
			},
			OnContentChunk: func(text string) {
				fmt.Print(text)
			},
			OnToolCallStarted: func(name string) {
				fmt.Println(toolStyle.Render("→ tool call: " + name))
			},
		}
	}

	resp, err := client.Call(ctx, chatCfg)
	if err != nil {
		log.Fatalf("request failed: %v", err)
	}

	if chatCfg.Stream {
		fmt.Println()
	} else {
		if *showThinking && resp.Thinking != "" {
			fmt.Println(labelStyle.Render("· thinking"))
			fmt.Println(thinkingStyle.Render(wordwrap.String(resp.Thinking, outputWidth)))
			fmt.Println(labelStyle.Render("· answer"))
		}
		fmt.Println(wordwrap.String(resp.Content, outputWidth))
	}

	for _, call := range resp.ToolCalls {
		fmt.Println(toolStyle.Render(fmt.Sprintf("tool call %s(%v)", call.Name, call.Arguments)))
	}

	log.Debugw("request complete",
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)
}
