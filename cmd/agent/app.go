package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"github.com/petasbytes/job-agent/internal/agent"
	"github.com/petasbytes/job-agent/internal/config"
	"github.com/petasbytes/job-agent/internal/conversation"
	"github.com/petasbytes/job-agent/internal/documents"
	"github.com/petasbytes/job-agent/internal/fsops"
	"github.com/petasbytes/job-agent/internal/jobs"
	"github.com/petasbytes/job-agent/internal/provider"
	"github.com/petasbytes/job-agent/internal/runner"
	"github.com/petasbytes/job-agent/internal/store"
	"github.com/petasbytes/job-agent/internal/telemetry"
	"github.com/petasbytes/job-agent/internal/tracker"
	"github.com/petasbytes/job-agent/memory"
	"github.com/petasbytes/job-agent/tools"
)

var errNoProfile = errors.New("no profile stored; run `agent profile import <file.yaml>` first")

// app is the assembled session behind the CLI.
type app struct {
	*agent.Agent
	store      *store.Store
	events     *telemetry.Emitter
	transcript string
	log        zerolog.Logger
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store.Store, error) {
	opts := []store.Option{store.WithLogger(log)}
	if cfg.EncryptUserData {
		opts = append(opts, store.WithPassphrase(cfg.Passphrase))
	}
	st, err := store.Open(ctx, cfg.DBPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a := &app{store: st, transcript: cfg.ConversationPath, log: log}
	if err := a.wire(ctx, cfg); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.restore(); err != nil {
		log.Warn().Err(err).Str("path", a.transcript).Msg("ignoring saved conversation")
	}
	return a, nil
}

// wire builds the session on top of the opened store.
func (a *app) wire(ctx context.Context, cfg *config.Config) error {
	st, log := a.store, a.log
	profile, err := st.LatestProfile(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return errNoProfile
	}
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	if cfg.Observe {
		if a.events, err = telemetry.Open(cfg.ArtifactsDir); err != nil {
			return fmt.Errorf("open events: %w", err)
		}
	}
	sandbox, err := fsops.NewSandbox(cfg.DocumentsDir)
	if err != nil {
		return fmt.Errorf("documents dir: %w", err)
	}

	client := provider.NewAnthropic(provider.NewAnthropicClient(option.WithAPIKey(cfg.APIKey)))
	completer := provider.Completer{Client: client, Model: cfg.Model, MaxTokens: cfg.MaxTokens}
	deps := tools.Deps{
		Profile:    profile,
		Search:     jobs.NewSearchEngine(jobs.SampleSource{}, completer, st, log),
		Market:     jobs.NewMarketService(completer, st),
		Documents:  documents.NewGenerator(completer, st, cfg.Model),
		Tracker:    tracker.New(st, completer),
		Lookup:     st,
		Sandbox:    sandbox,
		MaxResults: cfg.MaxJobsPerSearch,
	}
	a.Agent, err = agent.New(client, deps,
		runner.WithModel(cfg.Model),
		runner.WithMaxTokens(cfg.MaxTokens),
		runner.WithMaxRounds(cfg.MaxRounds),
		runner.WithTokenBudget(cfg.TokenBudget),
		runner.WithToolConcurrency(cfg.ToolConcurrency),
		runner.WithToolTimeout(cfg.ToolTimeout),
		runner.WithEmitter(a.events),
		runner.WithLogger(log),
	)
	return err
}

func (a *app) restore() error {
	saved, err := memory.LoadConversation(a.transcript)
	if err != nil {
		return err
	}
	history, err := memory.ToHistory(saved)
	if err != nil {
		return err
	}
	return a.Restore(history)
}

// save persists the text of the current history.
func (a *app) save(history []conversation.Message) {
	if err := memory.SaveConversation(a.transcript, memory.FromHistory(history)); err != nil {
		a.log.Warn().Err(err).Msg("failed to save conversation")
	}
}

func (a *app) single(ctx context.Context, text string, out io.Writer) error {
	o, err := a.Chat(ctx, text)
	if err != nil {
		return err
	}
	a.save(a.History())
	fmt.Fprintln(out, agent.Reply(o))
	return nil
}

func (a *app) Close() {
	if err := a.events.Close(); err != nil {
		a.log.Warn().Err(err).Msg("close events")
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("close store")
	}
}
