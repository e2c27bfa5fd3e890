package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	crewx "github.com/tanpawarit/financial-document-analyzer/agent/agents/crew"
	orchestratorx "github.com/tanpawarit/financial-document-analyzer/agent/agents/orchestrator"
	llmx "github.com/tanpawarit/financial-document-analyzer/agent/llm"
	promptx "github.com/tanpawarit/financial-document-analyzer/agent/prompt"
	taskx "github.com/tanpawarit/financial-document-analyzer/agent/task"
	toolx "github.com/tanpawarit/financial-document-analyzer/agent/tool"
	"github.com/tanpawarit/financial-document-analyzer/api"
	configx "github.com/tanpawarit/financial-document-analyzer/pkg/config"
	_ "github.com/tanpawarit/financial-document-analyzer/pkg/logger/autoload"
	openrouterx "github.com/tanpawarit/financial-document-analyzer/pkg/openrouter"
	serperx "github.com/tanpawarit/financial-document-analyzer/pkg/serper"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func main() {
	llmCfg := configx.MustNew[llmx.Config]("LLM")
	serperCfg := configx.MustNew[serperx.Config]("SERPER")
	serverCfg := configx.MustNew[api.Config]("SERVER")
	pipelineCfg := configx.MustNew[orchestratorx.Config]("PIPELINE")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := llmCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid llm config")
	}
	if llmCfg.ProbeOnStart {
		if err := openrouterx.Probe(ctx, llmCfg.OpenRouter()); err != nil {
			log.Fatal().Err(err).Str("model", llmCfg.Model).Msg("llm probe failed")
		}
	}

	routerCfg := llmCfg.OpenRouter()
	chatModel, err := routerCfg.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize chat model")
	}
	chatModel = llmx.WithBreaker(chatModel, llmCfg.Breaker())

	searcher := serperx.MustNew(*serperCfg)
	if searcher == nil {
		log.Warn().Msg("SERPER_API_KEY not set; web search is disabled")
	}

	prompts := promptx.MustLoadPromptSet()
	tools := toolx.NewCatalog(searcher)

	crew, err := crewx.NewRegistry(chatModel, prompts, tools)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build crew")
	}

	sequence, err := taskx.MustNewCatalog(prompts).Sequence(taskx.ParseNames(pipelineCfg.Tasks))
	if err != nil {
		log.Fatal().Err(err).Strs("tasks", pipelineCfg.Tasks).Msg("invalid task sequence")
	}

	analyzer, err := orchestratorx.New(crew, tools, sequence, prompts.TaskInput, *pipelineCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build orchestrator")
	}

	server, err := api.NewServer(analyzer, *serverCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build http server")
	}
	httpServer := server.HTTPServer()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("addr", httpServer.Addr).
			Str("model", llmCfg.Model).
			Interface("tasks", analyzer.Sequence()).
			Msg("financial document analyzer listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}
