package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dshills/commitleak/internal/cache"
	"github.com/dshills/commitleak/internal/config"
	"github.com/dshills/commitleak/internal/detect"
	"github.com/dshills/commitleak/internal/github"
	"github.com/dshills/commitleak/internal/gitctx"
	"github.com/dshills/commitleak/internal/logging"
	"github.com/dshills/commitleak/internal/output"
	"github.com/dshills/commitleak/internal/redact"
	"github.com/dshills/commitleak/internal/search"
)

// Pseudo commit SHAs for scans that are not tied to a commit.
const (
	stdinSHA    = "STDIN"
	worktreeSHA = "WORKTREE"
)

// Shared scan flags
var (
	flagKeywords       string
	flagExclude        string
	flagFormat         string
	flagOut            string
	flagFailOnFindings bool
	flagIncludeTests   bool
	flagNoSuppress     bool
	flagNoDedupe       bool
	flagShowSecrets    bool
	flagConcurrency    int
	flagLogLevel       string
)

func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagKeywords, "keywords", "", "Secret keywords (comma-separated, replaces configured set)")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "Exclude paths, gitignore syntax (comma-separated)")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown, sarif)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&flagFailOnFindings, "fail-on-findings", false, "Exit 1 when anything is found")
	cmd.Flags().BoolVar(&flagIncludeTests, "include-tests", false, "Scan test, example and build paths too")
	cmd.Flags().BoolVar(&flagNoSuppress, "no-suppress", false, "Keep assignments paired with a local address")
	cmd.Flags().BoolVar(&flagNoDedupe, "no-dedupe", false, "Report a file once per matching keyword")
	cmd.Flags().BoolVar(&flagShowSecrets, "show-secrets", false, "Disable redaction of matched values (use with caution)")
	cmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "Parallel keyword searches")
	cmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagKeywords != "" {
		m["keywords"] = flagKeywords
	}
	if flagExclude != "" {
		m["exclude"] = flagExclude
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagFailOnFindings {
		m["failOnFindings"] = "true"
	}
	if flagIncludeTests {
		m["includeTestResources"] = "true"
	}
	if flagNoSuppress {
		m["suppressLocal"] = "false"
	}
	if flagNoDedupe {
		m["dedupe"] = "false"
	}
	if flagShowSecrets {
		m["showSecrets"] = "true"
	}
	if flagConcurrency > 0 {
		m["concurrency"] = strconv.Itoa(flagConcurrency)
	}
	if flagLogLevel != "" {
		m["log.level"] = flagLogLevel
	}
	if flagLimit > 0 {
		m["localLimit"] = strconv.Itoa(flagLimit)
	}
	return m
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// scanEnv is what every scan subcommand needs before it picks a source.
type scanEnv struct {
	cfg      config.Config
	logger   zerolog.Logger
	closer   io.Closer
	registry *detect.Registry
}

func newScanEnv() (*scanEnv, error) {
	cfg, warnings, err := config.Load(buildOverrides())
	if err != nil {
		return nil, err
	}
	logger, closer, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logger.Warn().Err(w).Str("reason", "invalid environment value").Msg("Ignoring setting")
	}
	registry, err := detect.NewRegistry(cfg.Keywords)
	if err != nil {
		closer.Close()
		return nil, err
	}
	return &scanEnv{cfg: cfg, logger: logger, closer: closer, registry: registry}, nil
}

func (e *scanEnv) scanner(source search.Source) *search.Scanner {
	return search.New(e.registry, source, search.Options{
		Detect:      detect.Options{IncludeTestResources: e.cfg.IncludeTestResources},
		Exclude:     e.cfg.Exclude,
		Concurrency: e.cfg.Concurrency,
	}, e.logger)
}

// searchRequest builds a request that searches source by every keyword.
func (e *scanEnv) searchRequest(mode string, repo search.Repo) search.Request {
	return search.Request{Mode: mode, Repo: repo, Keywords: e.registry.Keywords()}
}

// fixedRequest builds a request over a known set of files.
func fixedRequest(mode string, repo search.Repo, commit search.Commit, files []search.FileDiff) search.Request {
	if files == nil {
		files = []search.FileDiff{}
	}
	return search.Request{Mode: mode, Repo: repo, Commit: commit, Files: files}
}

func fail(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	exitCode = code
}

func runScan(ctx context.Context, env *scanEnv, source search.Source, req search.Request) {
	cfg := env.cfg
	if cfg.ShowSecrets {
		fmt.Fprintln(os.Stderr, "WARNING: secret redaction is disabled")
	}

	req.Suppress = cfg.SuppressLocal
	req.Dedupe = cfg.Dedupe
	req.ShowSecrets = cfg.ShowSecrets
	req.Redact = redact.NewPolicy(cfg.RedactPaths)
	req.Version = version

	report, err := search.Run(ctx, env.scanner(source), req)
	if err != nil {
		if github.IsAuthError(err) {
			fail(ExitAuthError, "%v", err)
			return
		}
		fail(ExitRuntimeError, "%v", err)
		return
	}

	env.logger.Info().
		Int("files", report.Summary.Files).
		Int("commits", report.Summary.Commits).
		Int("suppressed", report.Summary.Suppressed).
		Int64("total_ms", report.Timing.TotalMs).
		Msg("Scan complete")

	if err := output.WriteReport(report, cfg.Format, flagOut); err != nil {
		fail(ExitRuntimeError, "writing output: %v", err)
		return
	}

	if cfg.FailOnFindings && len(report.Findings) > 0 {
		exitCode = ExitFindings
	}
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan commits for hardcoded credentials",
	Long:  "Scan commits for hardcoded credentials. Use subcommands to choose where the commits come from.",
}

var scanGitHubCmd = &cobra.Command{
	Use:   "github [owner/repo]",
	Short: "Search a GitHub repository's commits by credential keyword",
	Long: "Search commit messages of a GitHub repository for each keyword and scan the patches of every hit. " +
		"The repository defaults to the origin remote. Requires GITHUB_TOKEN.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var repo search.Repo
		var err error
		if len(args) == 1 {
			repo, err = github.ParseRepo(args[0])
		} else {
			repo, err = github.DetectRepo()
		}
		if err != nil {
			fail(ExitUsageError, "%v", err)
			return nil
		}

		env, err := newScanEnv()
		if err != nil {
			return err
		}
		defer env.closer.Close()

		disk, err := cache.New(env.cfg.Cache.Enabled, env.cfg.Cache.Dir, env.cfg.Cache.TTLSeconds)
		if err != nil {
			env.logger.Warn().Err(err).Msg("Cache unavailable, continuing without it")
			disk = nil
		}

		client, err := github.NewClient(github.Options{
			APIURL:     env.cfg.GitHub.APIURL,
			PerPage:    env.cfg.GitHub.PerPage,
			MaxPages:   env.cfg.GitHub.MaxPages,
			MaxRetries: env.cfg.GitHub.MaxRetries,
			MemoTTL:    time.Duration(env.cfg.GitHub.MemoTTLSeconds) * time.Second,
			Cache:      disk,
			Logger:     env.logger,
		})
		if err != nil {
			fail(ExitAuthError, "%v", err)
			return nil
		}

		runScan(cmd.Context(), env, client, env.searchRequest("github", repo))
		return nil
	},
}

var flagLimit int

var scanLocalCmd = &cobra.Command{
	Use:   "local [path]",
	Short: "Search a local clone's history by credential keyword",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) == 1 {
			path = args[0]
		}

		env, err := newScanEnv()
		if err != nil {
			return err
		}
		defer env.closer.Close()

		src, err := gitctx.OpenLocal(path, env.cfg.LocalLimit, env.logger)
		if err != nil {
			fail(ExitRuntimeError, "%v", err)
			return nil
		}

		runScan(cmd.Context(), env, src, env.searchRequest("local", src.Repo()))
		return nil
	},
}

var scanStagedCmd = &cobra.Command{
	Use:   "staged",
	Short: "Scan staged changes (index vs HEAD)",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newScanEnv()
		if err != nil {
			return err
		}
		defer env.closer.Close()

		commit, files, err := gitctx.Staged()
		if err != nil {
			fail(ExitRuntimeError, "%v", err)
			return nil
		}
		var repo search.Repo
		if meta, err := gitctx.GetRepoMeta(); err == nil {
			repo.Name = meta.Name()
		}

		runScan(cmd.Context(), env, nil, fixedRequest("staged", repo, commit, files))
		return nil
	},
}

var (
	flagPatchPath string
	flagPatchBase string
)

var scanPatchCmd = &cobra.Command{
	Use:   "patch",
	Short: "Scan a unified diff or file content from stdin",
	Long: "Scan stdin. Input starting with a git diff header is split per file; anything else is " +
		"treated as the content of --path, diffed against --base when given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			fail(ExitRuntimeError, "reading stdin: %v", err)
			return nil
		}

		files, err := patchFiles(string(content), flagPatchPath, flagPatchBase)
		if err != nil {
			fail(ExitUsageError, "%v", err)
			return nil
		}

		env, err := newScanEnv()
		if err != nil {
			return err
		}
		defer env.closer.Close()

		runScan(cmd.Context(), env, nil, fixedRequest("patch", search.Repo{}, search.Commit{SHA: stdinSHA}, files))
		return nil
	},
}

// patchFiles turns stdin content into file diffs.
func patchFiles(content, path, basePath string) ([]search.FileDiff, error) {
	if strings.HasPrefix(content, "diff --git ") {
		return gitctx.ParseUnifiedDiff(content), nil
	}
	if path == "" {
		return nil, fmt.Errorf("--path is required unless stdin is a git diff")
	}
	var base string
	if basePath != "" {
		data, err := os.ReadFile(basePath)
		if err != nil {
			return nil, fmt.Errorf("reading base file: %w", err)
		}
		base = string(data)
	}
	return []search.FileDiff{gitctx.Snippet(content, path, base)}, nil
}

var scanFilesCmd = &cobra.Command{
	Use:   "files <path>...",
	Short: "Scan files or directories as if every line were newly added",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newScanEnv()
		if err != nil {
			return err
		}
		defer env.closer.Close()

		files, err := gitctx.Files(args, env.logger)
		if err != nil {
			fail(ExitRuntimeError, "%v", err)
			return nil
		}

		runScan(cmd.Context(), env, nil, fixedRequest("files", search.Repo{}, search.Commit{SHA: worktreeSHA}, files))
		return nil
	},
}

func init() {
	scanCmd.AddCommand(scanGitHubCmd)
	scanCmd.AddCommand(scanLocalCmd)
	scanCmd.AddCommand(scanStagedCmd)
	scanCmd.AddCommand(scanPatchCmd)
	scanCmd.AddCommand(scanFilesCmd)

	for _, cmd := range []*cobra.Command{
		scanGitHubCmd,
		scanLocalCmd,
		scanStagedCmd,
		scanPatchCmd,
		scanFilesCmd,
	} {
		addScanFlags(cmd)
	}

	scanLocalCmd.Flags().IntVar(&flagLimit, "limit", 0, "Maximum commits per keyword (0 for no limit)")

	scanPatchCmd.Flags().StringVar(&flagPatchPath, "path", "", "File path the content belongs to (selects testers)")
	scanPatchCmd.Flags().StringVar(&flagPatchBase, "base", "", "Base file to diff against")
}
