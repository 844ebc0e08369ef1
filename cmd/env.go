package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/studyplan/internal/auth"
	"github.com/abhisek/studyplan/internal/gateway"
	"github.com/abhisek/studyplan/internal/llm"
	"github.com/abhisek/studyplan/internal/planner"
	"github.com/abhisek/studyplan/internal/progress"
	"github.com/abhisek/studyplan/internal/store"
)

// env is the set of services a command works with.
type env struct {
	store    *store.Store
	repo     store.StudyRepo
	auth     *auth.LocalGate
	progress *progress.Controller
}

// openEnv opens the store and, unless cmd is public, enforces the login
// gate.
func openEnv(cmd *cobra.Command) (*env, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.OpenContext(cmd.Context(), dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	e := &env{
		store:    st,
		repo:     st.StudyRepo(),
		auth:     auth.NewLocalGate(st.SettingsRepo()),
		progress: progress.New(st.StudyRepo()),
	}

	if !isPublic(cmd) {
		ok, err := e.auth.IsAuthenticated(cmd.Context())
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("read auth state: %w", err)
		}
		if !ok {
			st.Close()
			return nil, errNotLoggedIn
		}
	}
	return e, nil
}

func (e *env) Close() error {
	return e.store.Close()
}

// gateway builds the generation gateway. Without a configured provider
// every generation fails with a GenerationError instead of the command
// refusing to start.
func (e *env) gateway(ctx context.Context) *gateway.LLMGateway {
	provider, err := llm.NewProviderFromEnv(ctx, e.store.EventRepo())
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "AI features will be unavailable.")
		zap.L().Warn("no llm provider", zap.Error(err))
		provider = llm.UnavailableProvider{Reason: err}
	}
	return gateway.New(provider, gateway.DefaultConfig())
}

// planner builds a Planner over the gateway.
func (e *env) planner(gw gateway.Gateway) *planner.Planner {
	return planner.New(gw, e.repo)
}
