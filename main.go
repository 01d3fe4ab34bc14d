package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"workbench/pkg/config"
	"workbench/pkg/llm"
	"workbench/pkg/llm/anthropic"
	"workbench/pkg/llm/gemini"
	"workbench/pkg/llm/ollama"
	"workbench/pkg/llm/openai"
	"workbench/pkg/logx"
	"workbench/pkg/metrics"
	"workbench/pkg/orchestrator"
	"workbench/pkg/prompts"
	"workbench/pkg/sandbox"
	"workbench/pkg/webui"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config file")
	setPassword := flag.Bool("set-password", false, "prompt for a web UI password and print its bcrypt hash")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if *debug {
		logx.SetDebug(true)
	}

	if *setPassword {
		if err := printPasswordHash(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	client, err := newBackendClient(cfg.Backend)
	if err != nil {
		return err
	}

	renderer, err := prompts.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to load prompt templates: %w", err)
	}

	policy := sandbox.DefaultPolicy()
	if cfg.SandboxPolicy != "" {
		policy, err = sandbox.LoadPolicy(cfg.SandboxPolicy)
		if err != nil {
			return fmt.Errorf("failed to load sandbox policy: %w", err)
		}
	}
	sb, err := sandbox.New(cfg.Project.Root, policy)
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()
	sb.SetObserver(recorder.ObserveSandboxCommand)

	server := webui.NewServer(
		cfg.Server.ListenAddr,
		cfg.Server.PasswordHash,
		client,
		renderer,
		sb,
		recorder,
		orchestrator.Config{
			ProjectID:            cfg.Project.Root,
			Language:             cfg.Project.Language,
			SupervisorMaxRetries: cfg.Workflow.SupervisorMaxRetries,
			SingleCallMode:       cfg.Workflow.SingleCallMode,
			MaxTokens:            cfg.Backend.MaxTokens,
			Temperature:          cfg.Backend.Temperature,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logx.Infof("workbench starting with %s backend (model %s)", cfg.Backend.Provider, cfg.Backend.Model)
	return server.Start(ctx)
}

func newBackendClient(cfg config.BackendConfig) (llm.Client, error) {
	bc := llm.Config{
		APIKey:      cfg.APIKey,
		ModelName:   cfg.Model,
		Host:        cfg.Host,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}
	if err := bc.Validate(); err != nil {
		return nil, fmt.Errorf("backend %s: %w", cfg.Provider, err)
	}
	switch cfg.Provider {
	case config.BackendAnthropic:
		return anthropic.NewClient(bc.APIKey, bc.ModelName), nil
	case config.BackendOpenAI:
		return openai.NewClient(bc.APIKey, bc.ModelName), nil
	case config.BackendOllama:
		return ollama.NewClient(bc.Host, bc.ModelName), nil
	case config.BackendGemini:
		return gemini.NewClient(bc.APIKey, bc.ModelName), nil
	default:
		return nil, fmt.Errorf("unknown backend provider: %s", cfg.Provider)
	}
}

// printPasswordHash prompts twice without echo and prints the bcrypt
// hash to paste into the config's server.password_hash field.
func printPasswordHash() error {
	fmt.Print("Password: ")
	first, err := term.ReadPassword(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Print("Confirm password: ")
	second, err := term.ReadPassword(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if string(first) != string(second) {
		return fmt.Errorf("passwords do not match")
	}
	if len(first) == 0 {
		return fmt.Errorf("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword(first, bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	fmt.Println(string(hash))
	return nil
}
