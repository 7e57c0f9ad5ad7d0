package cmd

import (
	"context"
	"log"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/JayWang0902/AI-job-matching/internal/identity"
	"github.com/JayWang0902/AI-job-matching/internal/logger"
	"github.com/JayWang0902/AI-job-matching/internal/matches"
	"github.com/JayWang0902/AI-job-matching/internal/resume"
	"github.com/JayWang0902/AI-job-matching/internal/session"
	"github.com/JayWang0902/AI-job-matching/internal/transfer"
)

// appState wires the session store, guard and transfer client every command
// starts from. The store is the single owner of the credential; everything
// else reads it through the transfer client's token source.
type appState struct {
	ctx    context.Context
	logger *zap.Logger
	config *Config
	store  *session.Store
	guard  *session.Guard
	client *transfer.Client
}

func newApp() *appState {
	ctx := context.Background()

	lg, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		lg.Fatal("getting a config", zap.Error(err))
	}

	credPath := config.CredentialsFile
	if credPath == "" {
		credPath, err = session.DefaultPath()
		if err != nil {
			lg.Fatal("resolving credential path", zap.Error(err))
		}
	}

	store := session.NewStore(credPath, logger.WithComponent(lg, "session"))
	if err := store.Initialize(); err != nil {
		lg.Fatal("initializing session store", zap.Error(err))
	}

	store.OnChange(func(authenticated bool) {
		lg.Debug("authentication signal changed", zap.Bool("authenticated", authenticated))
	})

	return &appState{
		ctx:    ctx,
		logger: lg,
		config: config,
		store:  store,
		guard:  session.NewGuard(store),
		client: transfer.New(config.APIURL, store, logger.WithComponent(lg, "transfer")),
	}
}

// requireAuth is the screen-entry guard: unauthenticated commands run nothing
// and are pointed at login.
func (a *appState) requireAuth() {
	if err := a.guard.Require(); err != nil {
		a.logger.Fatal("not authenticated",
			zap.String("hint", "run 'jobmatch login' first"),
		)
	}
}

func (a *appState) identity() *identity.Client {
	return identity.New(a.client, logger.WithComponent(a.logger, "identity"))
}

func (a *appState) resumes() *resume.Client {
	return resume.NewClient(a.client, logger.WithComponent(a.logger, "resume"))
}

func (a *appState) orchestrator() *resume.Orchestrator {
	return resume.NewOrchestrator(a.resumes(), logger.WithComponent(a.logger, "upload"))
}

func (a *appState) feed() *matches.Loader {
	return matches.NewLoader(a.client, logger.WithComponent(a.logger, "matches"))
}
