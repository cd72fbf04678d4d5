package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lfedgeai/dubbing/dubber"
	"github.com/lfedgeai/dubbing/dubber/secrets"
	"github.com/lfedgeai/dubbing/dubber/synth"
	"github.com/lfedgeai/dubbing/pkg/common"
	"github.com/lfedgeai/dubbing/pkg/locale"
	"github.com/lfedgeai/dubbing/pkg/ssml"
	"github.com/lfedgeai/dubbing/pkg/transcript"
)

var (
	runVerbose bool
	runDebug   bool

	serveAddr       string
	servePort       string
	serveBucket     string
	serveStorageDir string
	serveRoleARN    string
	serveOrigins    []string

	buildColumn string
	buildMale   string
	buildFemale string
	buildLang   string
	buildOutDir string

	voicesLocale string
)

func NewRootCmd() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "dubber",
		Short: "dubber turns multi-language transcripts into synthesized speech",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if runVerbose {
				dubber.SetLogLevel(log.DebugLevel)
			}
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	var serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the dubber server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := dubber.NewServeDubberConfig(serveAddr, servePort, serveBucket,
				serveStorageDir, serveRoleARN, serveOrigins, runDebug)
			if err := cfg.Validate(); err != nil {
				return err
			}
			cfg.Log()

			p, err := dubber.NewPipelineFromConfig(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("error creating pipeline: %w", err)
			}
			d := dubber.NewDubber(cfg, p)
			d.Initialize()

			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigs)
			go func() {
				if sig, ok := <-sigs; ok {
					log.Infof("Received %v, shutting down", sig)
					d.Stop()
				}
			}()
			return d.StartServer()
		},
	}
	serveCmd.PersistentFlags().StringVarP(&serveAddr, "addr", "a", os.Getenv("DUBBER_ADDR"), "address of the server")
	serveCmd.PersistentFlags().StringVarP(&servePort, "port", "p", envOr("DUBBER_PORT", "8000"), "port of the server")
	serveCmd.PersistentFlags().StringVarP(&serveBucket, "bucket", "b", "", "S3 bucket for inputs, SSML and audio (default $S3_BUCKET_NAME)")
	serveCmd.PersistentFlags().StringVar(&serveStorageDir, "storage-dir", "", "store artifacts in a local directory instead of S3")
	serveCmd.PersistentFlags().StringVar(&serveRoleARN, "role-arn", "", "IAM role to assume for reading speech credentials (default $IAM_ROLE_ARN)")
	serveCmd.PersistentFlags().StringSliceVar(&serveOrigins, "allow-origin", []string{"*"}, "allowed CORS origins")
	rootCmd.AddCommand(serveCmd)

	var buildCmd = &cobra.Command{
		Use:   "build [csv files...]",
		Short: "Build SSML documents from transcript CSV files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			voices := ssml.VoicePair{Male: buildMale, Female: buildFemale}
			bar := progressbar.Default(int64(len(args)), "building ssml")
			for _, path := range args {
				out, err := buildFile(path, buildColumn, voices, buildLang, buildOutDir)
				if err != nil {
					return err
				}
				log.Debugf("Wrote %s", out)
				bar.Add(1)
			}
			return nil
		},
	}
	buildCmd.Flags().StringVarP(&buildColumn, "column", "c", common.EnglishColumn, "transcript column to speak")
	buildCmd.Flags().StringVar(&buildMale, "male", common.EnglishMaleVoice, "voice for speaker spk_0")
	buildCmd.Flags().StringVar(&buildFemale, "female", common.EnglishFemaleVoice, "voice for every other speaker")
	buildCmd.Flags().StringVarP(&buildLang, "lang", "l", common.EnglishLocale, "xml:lang of the document")
	buildCmd.Flags().StringVarP(&buildOutDir, "out", "o", "", "output directory (default next to each input)")
	rootCmd.AddCommand(buildCmd)

	var voicesCmd = &cobra.Command{
		Use:   "voices",
		Short: "List catalog voices for a locale",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listVoices(cmd.Context(), voicesLocale)
		},
	}
	voicesCmd.Flags().StringVarP(&voicesLocale, "locale", "l", common.EnglishLocale, "locale, e.g. hi-IN")
	rootCmd.AddCommand(voicesCmd)

	// verbose flag
	rootCmd.PersistentFlags().BoolVarP(&runVerbose, "verbose", "v", false, "verbose output")
	// debug flag
	rootCmd.PersistentFlags().BoolVarP(&runDebug, "debug", "d", false, "debug mode")
	return rootCmd
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// buildFile writes <name>.ssml for the CSV at path and returns its location.
func buildFile(path, column string, voices ssml.VoicePair, lang, outDir string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("error opening %s: %w", path, err)
	}
	defer f.Close()

	tbl, err := transcript.ReadCSV(f)
	if err != nil {
		return "", fmt.Errorf("error reading %s: %w", path, err)
	}
	doc, err := ssml.Build(tbl, column, voices, lang)
	if err != nil {
		return "", fmt.Errorf("error building %s: %w", path, err)
	}

	dir := outDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".ssml"
	out := filepath.Join(dir, name)
	if err := os.WriteFile(out, doc.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("error writing %s: %w", out, err)
	}
	return out, nil
}

func listVoices(ctx context.Context, source string) error {
	creds := secrets.NewEnvProvider()
	if creds == nil {
		p, err := secrets.NewSecretsManagerProvider(ctx,
			envOr("AZURE_SECRET_NAME", common.DefaultSecretName),
			envOr("AZURE_SECRET_REGION", common.DefaultSecretRegion),
			os.Getenv("IAM_ROLE_ARN"))
		if err != nil {
			return err
		}
		creds = p
	}

	loc := locale.New(source)
	voices, err := synth.NewClient(creds, nil).ListVoices(ctx)
	if err != nil {
		return err
	}
	for _, v := range synth.FilterLocale(voices, loc.Raw) {
		fmt.Printf("%-40s %-8s %s\n", v.ShortName, v.Gender, v.Locale)
	}
	pair, err := synth.ResolveVoicePair(voices, loc.Raw)
	if err != nil {
		return err
	}
	fmt.Printf("male: %s\nfemale: %s\n", pair.Male, pair.Female)
	return nil
}

func main() {
	// before NewRootCmd so flag defaults see .env values
	dubber.LoadEnv()
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
