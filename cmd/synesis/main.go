// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the synesis CLI, a research
// assistant over arXiv: it fetches papers, indexes their text into a
// vector store, and answers questions grounded in the retrieved chunks.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kosmos/synesis/internal/secrets"
	"github.com/kosmos/synesis/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultTimeout    = 60 * time.Second
	defaultUserAgent  = "synesis/0.1"
	defaultPapersDir  = "data/papers"
	defaultNotesDir   = "output/notes"
	defaultMaxResults = 10
)

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the synesis CLI.
var rootCmd = &cobra.Command{
	Use:   "synesis",
	Short: "Research assistant over arXiv papers",
	Long: `synesis builds a local retrieval-augmented research assistant. It
searches arXiv and downloads papers, extracts and chunks their text,
indexes the chunks in a vector store, and generates grounded answers
and research hypotheses from the retrieved context.

Each pipeline stage is a subcommand: fetch, index, retrieve, ask, and
hypothesize.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./synesis.yaml or ~/.config/synesis/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("synesis")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "synesis"))
		}
	}

	viper.SetEnvPrefix("SYNESIS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// stringSetting resolves a string setting: an explicitly set flag wins,
// then the config file, then the fallback.
func stringSetting(cmd *cobra.Command, flag, key, fallback string) string {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return fallback
}

// intSetting resolves an int setting with the same precedence as
// stringSetting.
func intSetting(cmd *cobra.Command, flag, key string, fallback int) int {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetInt(flag)
		return v
	}
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	return fallback
}

func newHTTPClient() *http.Client {
	timeout := defaultTimeout
	if viper.IsSet("http.timeout") {
		timeout = viper.GetDuration("http.timeout")
	}
	return &http.Client{Timeout: timeout}
}

// embeddingConfig assembles the embedder settings shared by index,
// retrieve, ask, and hypothesize. The same configuration must serve
// indexing and querying, so it comes from the config file rather than
// per-command flags.
func embeddingConfig() types.EmbeddingConfig {
	cfg := types.EmbeddingConfig{
		Provider: viper.GetString("embedding.provider"),
		Model:    viper.GetString("embedding.model"),
		BaseURL:  viper.GetString("embedding.base_url"),
	}
	switch cfg.Provider {
	case "openai":
		cfg.APIKey = secrets.Credential(loadedSecrets, "OPENAI_API_KEY", "openai-api-key")
	default:
		cfg.APIKey = secrets.Credential(loadedSecrets, "GEMINI_API_KEY", "gemini-api-key")
	}
	return cfg
}

// indexConfig assembles the vector store settings, likewise shared
// across every command that touches the store.
func indexConfig() types.IndexConfig {
	return types.IndexConfig{
		Store:         viper.GetString("index.store"),
		EmbeddingsDir: viper.GetString("index.embeddings_dir"),
		Collection:    viper.GetString("index.collection"),
		QdrantURL:     viper.GetString("index.qdrant_url"),
		QdrantAPIKey:  secrets.Credential(loadedSecrets, "QDRANT_API_KEY", "qdrant-api-key"),
	}
}

// generationConfig assembles the generator settings.
func generationConfig() types.GenerationConfig {
	notesDir := viper.GetString("generation.notes_dir")
	if notesDir == "" {
		notesDir = defaultNotesDir
	}
	return types.GenerationConfig{
		Model:      viper.GetString("generation.model"),
		APIKey:     secrets.Credential(loadedSecrets, "GEMINI_API_KEY", "gemini-api-key"),
		MaxRetries: viper.GetInt("generation.max_retries"),
		NotesDir:   notesDir,
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
