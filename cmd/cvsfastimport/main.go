// Command cvsfastimport walks a CVS repository's ,v history files and
// streams the reconstructed commits to `git fast-import`.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/alitto/pond"
	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/cvsfastimport/cvsfastimport/config"
	"github.com/cvsfastimport/cvsfastimport/fastimport"
	"github.com/cvsfastimport/cvsfastimport/importer"
	"github.com/cvsfastimport/cvsfastimport/rcs"
	"github.com/cvsfastimport/cvsfastimport/state"
	"github.com/cvsfastimport/cvsfastimport/version"
	"github.com/cvsfastimport/cvsfastimport/walker"
)

func main() {
	var (
		configFile = kingpin.Flag(
			"config",
			"YAML config file (overridden by any flag also set on the command line).",
		).Short('c').String()
		cvsroot = kingpin.Flag(
			"cvsroot",
			"The CVSROOT, which must be a local directory.",
		).String()
		store = kingpin.Flag(
			"store",
			"File storing repository metadata between runs. Created if it doesn't exist.",
		).Short('s').String()
		headBranch = kingpin.Flag(
			"head-branch",
			"Name of the branch CVS's trunk maps to.",
		).String()
		branches = kingpin.Flag(
			"branch",
			"Restrict import to this branch; repeatable. Default: import every branch.",
		).Strings()
		delta = kingpin.Flag(
			"delta",
			"Maximum time between file commits before they're split into different patchsets.",
		).Duration()
		jobs = kingpin.Flag(
			"jobs",
			"Number of parallel file-parsing workers.",
		).Short('j').Int()
		ignoreFileErrors = kingpin.Flag(
			"ignore-file-errors",
			"Treat file discovery and parsing errors as non-fatal.",
		).Bool()
		tagIdentityName = kingpin.Flag(
			"tag-identity-name",
			"Display name used as the committer of synthetic tag commits.",
		).String()
		tagIdentityEmail = kingpin.Flag(
			"tag-identity-email",
			"Email used as the committer of synthetic tag commits.",
		).String()
		gitRepo = kingpin.Flag(
			"git-repo",
			"Git repository to import into.",
		).Default(".").String()
		profileMode = kingpin.Flag(
			"profile.mode",
			"Enable profiling: cpu, mem, block or goroutine.",
		).String()
		debug = kingpin.Flag(
			"debug",
			"Enable debug level logging.",
		).Bool()
		directories = kingpin.Arg(
			"DIRECTORY",
			"Top level directories under CVSROOT to import from; default is all of CVSROOT.",
		).Strings()
	)
	kingpin.UsageTemplate(kingpin.CompactUsageTemplate).Version(version.Print("cvsfastimport")).Author("cvsfastimport")
	kingpin.CommandLine.Help = "Imports a CVS repository into Git via git fast-import.\n"
	kingpin.HelpFlag.Short('h')
	kingpin.Parse()

	logger := logrus.New()
	if *debug {
		logger.Level = logrus.DebugLevel
	}

	switch *profileMode {
	case "cpu":
		defer profile.Start(profile.CPUProfile).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile).Stop()
	case "block":
		defer profile.Start(profile.BlockProfile).Stop()
	case "goroutine":
		defer profile.Start(profile.GoroutineProfile).Stop()
	}

	cfg, err := loadConfig(*configFile, config.Config{
		CVSRoot:          *cvsroot,
		Store:            *store,
		HeadBranch:       *headBranch,
		Branches:         *branches,
		Delta:            *delta,
		Jobs:             *jobs,
		IgnoreFileErrors: *ignoreFileErrors,
		TagIdentityName:  *tagIdentityName,
		TagIdentityEmail: *tagIdentityEmail,
	})
	if err != nil {
		logger.Errorf("error loading config: %v", err)
		os.Exit(1)
	}
	if cfg.CVSRoot == "" {
		logger.Error("cvsroot must be set, via --cvsroot or the config file")
		os.Exit(1)
	}
	if cfg.Store == "" {
		logger.Error("store must be set, via --store or the config file")
		os.Exit(1)
	}

	logger.Infof("%s", version.Print("cvsfastimport"))

	importerOpts := importer.Options{GitRepo: *gitRepo}
	if err := importer.Preflight(importerOpts); err != nil {
		logger.Errorf("preflight check failed: %v", err)
		os.Exit(1)
	}

	st, err := loadState(cfg.Store)
	if err != nil {
		logger.Errorf("error loading store %s: %v", cfg.Store, err)
		os.Exit(1)
	}

	markFile, err := dumpMarksToFile(st)
	if err != nil {
		logger.Errorf("error preparing mark file: %v", err)
		os.Exit(1)
	}
	defer os.Remove(markFile)

	supervisor, err := importer.New(logger, markFile, importerOpts)
	if err != nil {
		logger.Errorf("error starting git fast-import: %v", err)
		os.Exit(1)
	}

	jobCount := cfg.Jobs
	if jobCount <= 0 {
		jobCount = runtime.NumCPU()
	}

	if err := runImport(logger, cfg, st, supervisor, jobCount, *directories); err != nil {
		logger.Errorf("import failed: %v", err)
		supervisor.Close()
		os.Exit(1)
	}

	if err := supervisor.Close(); err != nil {
		logger.Errorf("git fast-import exited with an error: %v", err)
		os.Exit(1)
	}

	if err := saveMarksFromFile(st, markFile); err != nil {
		logger.Errorf("error saving marks: %v", err)
		os.Exit(1)
	}

	if err := saveState(cfg.Store, st); err != nil {
		logger.Errorf("error persisting store %s: %v", cfg.Store, err)
		os.Exit(1)
	}

	logger.Info("import complete")
}

func loadConfig(configFile string, override config.Config) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = config.LoadConfigFile(configFile)
		if err != nil {
			return nil, err
		}
	} else {
		cfg, err = config.Unmarshal(nil)
		if err != nil {
			return nil, err
		}
	}
	cfg.Merge(override)
	return cfg, nil
}

func loadState(storePath string) (*state.Manager, error) {
	f, err := os.Open(storePath)
	if os.IsNotExist(err) {
		return state.New(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return state.Deserialize(f)
}

func saveState(storePath string, st *state.Manager) error {
	f, err := os.Create(storePath)
	if err != nil {
		return err
	}
	defer f.Close()
	return st.Serialize(f)
}

func dumpMarksToFile(st *state.Manager) (string, error) {
	f, err := os.CreateTemp("", "cvsfastimport-marks-")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(st.GetRawMarks()); err != nil {
		return "", err
	}
	return f.Name(), nil
}

func saveMarksFromFile(st *state.Manager, markFile string) error {
	data, err := os.ReadFile(markFile)
	if err != nil {
		return err
	}
	st.SetRawMarks(data)
	return nil
}

// runImport discovers every ,v file under directories (or the whole CVSROOT
// if none are given), walks each one into the state manager and branch
// detectors using a fixed-size worker pool, then assembles and emits the
// resulting commits and tags.
func runImport(logger *logrus.Logger, cfg *config.Config, st *state.Manager, supervisor *importer.Supervisor, jobs int, directories []string) error {
	detectors := walker.NewBranchDetectors(cfg.Delta)
	rw := &walker.RevisionWalker{
		HeadBranch: cfg.HeadBranch,
		Output:     supervisor,
		State:      st,
		Detectors:  detectors,
		Logger:     logger,
	}

	paths := directories
	if len(paths) == 0 {
		paths = []string{""}
	}

	pool := pond.New(jobs, 0, pond.MinWorkers(jobs))

	var mu sync.Mutex
	var errs []error
	recordErr := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		errs = append(errs, err)
	}

	for _, rel := range paths {
		root := filepath.Join(cfg.CVSRoot, rel)
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() || !strings.HasSuffix(path, ",v") {
				return nil
			}
			pool.Submit(func() {
				if err := walkFile(rw, cfg.CVSRoot, path); err != nil {
					recordErr(fmt.Errorf("%s: %w", path, err))
				}
			})
			return nil
		})
		if err != nil {
			recordErr(fmt.Errorf("discovering files under %s: %w", root, err))
		}
	}

	pool.StopAndWait()

	mu.Lock()
	discoveryErrs := errs
	mu.Unlock()
	if len(discoveryErrs) > 0 {
		for _, err := range discoveryErrs {
			logger.Warnf("file error: %v", err)
		}
		if !cfg.IgnoreFileErrors {
			return fmt.Errorf("%d file(s) failed to import; see warnings above", len(discoveryErrs))
		}
	}

	filter := walker.NewBranchFilter(cfg.Branches)
	asm := &walker.CommitAssembler{State: st, Output: supervisor}
	for branch, patchsets := range detectors.Drain() {
		if !filter.Contains(branch) {
			continue
		}
		if err := asm.Send(branch, patchsets); err != nil {
			return fmt.Errorf("sending patchsets for branch %s: %w", branch, err)
		}
	}

	tagProcessor := &walker.TagProcessor{
		State:  st,
		Output: supervisor,
		Identity: fastimport.Identity{
			Name:  cfg.TagIdentityName,
			Email: cfg.TagIdentityEmail,
			When:  time.Now(),
		},
	}
	for _, tag := range st.GetTags() {
		if err := tagProcessor.Process(tag); err != nil {
			return fmt.Errorf("processing tag %s: %w", tag, err)
		}
	}

	return nil
}

func walkFile(rw *walker.RevisionWalker, cvsroot, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	file, err := rcs.Parse(data)
	if err != nil {
		return err
	}
	return rw.Walk(walker.MungePath(cvsroot, path), file)
}
