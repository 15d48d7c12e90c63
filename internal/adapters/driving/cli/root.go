// Package cli provides the cobra command tree for forge-search.
// Commands talk to the core exclusively through driving ports; the
// concrete services are wired in root's PersistentPreRunE.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mikeyobrien/forge-search/internal/adapters/driven/config/file"
	"github.com/mikeyobrien/forge-search/internal/adapters/driven/storage/vault"
	"github.com/mikeyobrien/forge-search/internal/core/ports/driven"
	"github.com/mikeyobrien/forge-search/internal/core/ports/driving"
	"github.com/mikeyobrien/forge-search/internal/core/services"
	"github.com/mikeyobrien/forge-search/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagVerbose   bool
	flagVaultPath string
	flagConfigDir string
)

// Wired services, shared by the subcommands.
var (
	searchService driving.SearchService
	documentStore driven.DocumentStore
	configStore   driven.ConfigStore
	vaultStore    *vault.Store
)

var rootCmd = &cobra.Command{
	Use:   "forge-search",
	Short: "Search a markdown knowledge base",
	Long: `forge-search indexes a directory of markdown notes and searches it
by relevance, with boolean queries, fuzzy matching, facets and snippets.

The vault location is taken from --vault, or from vault.path in
~/.forge-search/config.toml.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagVaultPath, "vault", "", "path to the markdown vault")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config", "", "config directory (default ~/.forge-search)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion overrides the reported version. Called from main with the
// build-time value.
func SetVersion(v string) {
	version = v
}

// setupServices builds the store, engine and index for commands that
// need them. Commands that never touch the index skip the work.
func setupServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(flagVerbose)

	switch cmd.Name() {
	case "version", "help", "completion":
		return nil
	}

	// Already wired, either by a previous run or by a test.
	if searchService != nil {
		return nil
	}

	store, err := file.NewConfigStore(flagConfigDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	configStore = store

	vaultPath := flagVaultPath
	if vaultPath == "" {
		vaultPath = configStore.GetString("vault.path")
	}
	if vaultPath == "" {
		return errors.New("no vault configured: pass --vault or set vault.path in the config file")
	}

	vs, err := vault.NewStore(vaultPath)
	if err != nil {
		return fmt.Errorf("opening vault: %w", err)
	}
	vaultStore = vs
	documentStore = vs

	engine := services.NewEngine(vs, engineConfigFromStore(configStore))
	if err := engine.Initialize(cmd.Context()); err != nil {
		return fmt.Errorf("building index: %w", err)
	}
	searchService = engine

	return nil
}

// engineConfigFromStore overlays user configuration on the engine
// defaults. Absent keys keep their defaults.
func engineConfigFromStore(store driven.ConfigStore) services.EngineConfig {
	cfg := services.DefaultEngineConfig()

	if n := store.GetInt("search.snippet_length"); n > 0 {
		cfg.SnippetLength = n
	}
	if tolerance := store.GetFloat("search.fuzzy_min_similarity"); tolerance > 0 {
		cfg.Fuzzy.MinSimilarity = tolerance
	}
	if distance := store.GetInt("search.fuzzy_max_distance"); distance > 0 {
		cfg.Fuzzy.MaxEditDistance = distance
	}
	if boost := store.GetFloat("search.recency_boost"); boost > 0 {
		cfg.Weights.RecencyBoost = boost
	}

	return cfg
}
