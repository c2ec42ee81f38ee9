package cli

import (
	"context"
	"time"

	"github.com/alfred-assistant/alfred/pkg/adapter"
	"github.com/alfred-assistant/alfred/pkg/policy"
	"github.com/alfred-assistant/alfred/pkg/repository"
	"github.com/alfred-assistant/alfred/pkg/usecase/drive"
	"github.com/alfred-assistant/alfred/pkg/usecase/memory"
	"github.com/alfred-assistant/alfred/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

const (
	backendLocal     = "local"
	backendGCS       = "gcs"
	backendFirestore = "firestore"
	backendDrive     = "drive"

	defaultMemoryFile = "memoire_persistante.json"
)

// config holds configuration values
type config struct {
	// Logging
	logLevel  string
	logFormat string

	// Memory backend
	backend          string
	localFile        string
	bucket           string
	memoryKey        string
	project          string
	database         string
	collection       string
	autosaveInterval time.Duration
	policyDir        string
	activeProject    string

	// Drive
	driveCredentials string
	driveFolder      string

	// Adapters
	geminiProject  string
	geminiLocation string
	geminiModel    string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("ALFRED_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json)",
			Value:       "console",
			Sources:     cli.EnvVars("ALFRED_LOG_FORMAT"),
			Destination: &cfg.logFormat,
		},
	}
}

// backendFlags returns flags selecting where the memory document lives
func backendFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "backend",
			Aliases:     []string{"b"},
			Usage:       "Memory backend (local, gcs, firestore, drive)",
			Value:       backendLocal,
			Sources:     cli.EnvVars("ALFRED_BACKEND"),
			Destination: &cfg.backend,
		},
		&cli.StringFlag{
			Name:        "local-file",
			Usage:       "Local memory file, also the fallback of remote backends",
			Value:       defaultMemoryFile,
			Sources:     cli.EnvVars("ALFRED_LOCAL_MEMORY_FILE"),
			Destination: &cfg.localFile,
		},
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "Cloud Storage bucket of the memory document",
			Sources:     cli.EnvVars("ALFRED_BUCKET"),
			Destination: &cfg.bucket,
		},
		&cli.StringFlag{
			Name:        "memory-key",
			Usage:       "Object key or Drive file name of the memory document",
			Value:       defaultMemoryFile,
			Sources:     cli.EnvVars("ALFRED_MEMORY_KEY"),
			Destination: &cfg.memoryKey,
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "collection",
			Usage:       "Firestore collection of the memory document",
			Value:       "alfred",
			Sources:     cli.EnvVars("ALFRED_FIRESTORE_COLLECTION"),
			Destination: &cfg.collection,
		},
		&cli.DurationFlag{
			Name:        "autosave-interval",
			Usage:       "Minimum delay between two heartbeat saves",
			Value:       memory.DefaultAutosaveInterval,
			Sources:     cli.EnvVars("ALFRED_AUTOSAVE_INTERVAL"),
			Destination: &cfg.autosaveInterval,
		},
		&cli.StringFlag{
			Name:        "policy-dir",
			Usage:       "Directory of Rego placement policies",
			Sources:     cli.EnvVars("ALFRED_POLICY_DIR"),
			Destination: &cfg.policyDir,
		},
		&cli.StringFlag{
			Name:        "active-project",
			Usage:       "Set the active project domain before running",
			Sources:     cli.EnvVars("ALFRED_ACTIVE_PROJECT"),
			Destination: &cfg.activeProject,
		},
	}
}

// driveFlags returns flags for the shared Drive folder
func driveFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "drive-credentials",
			Usage:       "Service account key file for Google Drive",
			Sources:     cli.EnvVars("GOOGLE_DRIVE_JSON_PATH"),
			Destination: &cfg.driveCredentials,
		},
		&cli.StringFlag{
			Name:        "drive-folder",
			Usage:       "ID of the shared Drive folder",
			Sources:     cli.EnvVars("ALFRED_DRIVE_FOLDER_ID"),
			Destination: &cfg.driveFolder,
		},
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model name",
			Value:       "gemini-2.5-flash",
			Sources:     cli.EnvVars("GEMINI_MODEL"),
			Destination: &cfg.geminiModel,
		},
	}
}

// withLogger attaches the configured logger to ctx
func (cfg *config) withLogger(ctx context.Context) (context.Context, error) {
	logger, err := logging.NewWithFormat(cfg.logFormat, cfg.logLevel, nil)
	if err != nil {
		return nil, err
	}
	logging.SetDefault(logger)
	return logging.With(ctx, logger), nil
}

// newDocument creates the memory document backend. Remote backends fall
// back to the local file while the remote document does not exist.
func (cfg *config) newDocument(ctx context.Context) (repository.Document, error) {
	local := repository.NewLocal(cfg.localFile)

	switch cfg.backend {
	case backendLocal, "":
		return local, nil

	case backendGCS:
		storage, err := cfg.newStorage(ctx)
		if err != nil {
			return nil, err
		}
		return repository.NewFallback(repository.NewStorage(storage, cfg.memoryKey), local), nil

	case backendFirestore:
		if cfg.project == "" {
			return nil, goerr.New("project is required for the firestore backend")
		}
		doc, err := repository.NewFirestore(ctx, cfg.project, cfg.database, cfg.collection)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create firestore backend")
		}
		return repository.NewFallback(doc, local), nil

	case backendDrive:
		d, err := cfg.newDrive(ctx)
		if err != nil {
			return nil, err
		}
		return repository.NewFallback(repository.NewDrive(d, cfg.memoryKey, repository.DefaultHintFolder), local), nil
	}

	return nil, goerr.New("unknown memory backend", goerr.V("backend", cfg.backend))
}

// newMemory creates the memory usecase on the configured backend
func (cfg *config) newMemory(ctx context.Context) (*memory.UseCase, error) {
	doc, err := cfg.newDocument(ctx)
	if err != nil {
		return nil, err
	}

	engine, err := policy.New(ctx, cfg.policyDir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load placement policy")
	}

	mem := memory.New(doc,
		memory.WithAutosaveInterval(cfg.autosaveInterval),
		memory.WithPlacementPolicy(engine),
	)
	if cfg.activeProject != "" {
		if _, err := mem.SetActiveProject(ctx, cfg.activeProject); err != nil {
			return nil, goerr.Wrap(err, "failed to set active project", goerr.V("project", cfg.activeProject))
		}
	}
	return mem, nil
}

// newGemini creates a new Gemini adapter instance
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	if cfg.geminiProject == "" {
		return nil, goerr.New("gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}

	gemini, err := adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation, adapter.WithGenerativeModel(cfg.geminiModel))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gemini client")
	}
	return gemini, nil
}

// optionalGemini returns nil without error when Gemini is not configured
func (cfg *config) optionalGemini(ctx context.Context) (adapter.Gemini, error) {
	if cfg.geminiProject == "" {
		return nil, nil
	}
	return cfg.newGemini(ctx)
}

// newStorage creates a new Storage adapter instance
func (cfg *config) newStorage(ctx context.Context) (adapter.Storage, error) {
	if cfg.bucket == "" {
		return nil, goerr.New("bucket is required for the gcs backend")
	}

	storage, err := adapter.NewStorage(ctx, cfg.bucket)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage")
	}
	return storage, nil
}

// newDrive creates the Drive adapter for the shared folder
func (cfg *config) newDrive(ctx context.Context) (adapter.Drive, error) {
	if cfg.driveFolder == "" {
		return nil, goerr.New("drive-folder is required")
	}

	d, err := adapter.NewDrive(ctx, cfg.driveCredentials, cfg.driveFolder)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create drive client")
	}
	return d, nil
}

// newDriveUseCase returns nil when no Drive folder is configured
func (cfg *config) newDriveUseCase(ctx context.Context, gemini adapter.Gemini) (*drive.UseCase, error) {
	if cfg.driveFolder == "" {
		return nil, nil
	}
	d, err := cfg.newDrive(ctx)
	if err != nil {
		return nil, err
	}
	return drive.New(d, gemini), nil
}
