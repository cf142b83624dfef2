package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-file-version/internal/config"
	"github.com/deploymenttheory/go-file-version/internal/fileversion"
	"github.com/deploymenttheory/go-file-version/internal/logger"
	"github.com/deploymenttheory/go-file-version/internal/scanner"
	"github.com/deploymenttheory/go-file-version/internal/storage"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "file-version",
		Short: "Read embedded version resources from Windows binaries",
		Long: `Reads the version resource (file description, file version, company,
copyright, etc.) embedded in Windows binary files (.exe, .dll, .msi, ...),
either for a single file or for a whole directory tree indexed to JSON.`,
		PersistentPreRun: setupLogging,
	}

	// Logging flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose debugging output")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().String("log-file", "", "log to file instead of stdout")

	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newScanCmd())

	if err := rootCmd.Execute(); err != nil {
		logger.Errorf("Error executing command: %v", err)
		os.Exit(1)
	}
}

// setupLogging configures the logger based on command line flags
func setupLogging(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		logger.SetLevel(logger.LevelDebug)
		logger.Infof("Debug logging enabled")
	} else {
		logger.SetLevel(logger.LevelInfo)
	}

	noColor, _ := cmd.Flags().GetBool("no-color")
	if noColor {
		logger.DisableColors()
	}

	logFile, _ := cmd.Flags().GetString("log-file")
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			logger.Errorf("Failed to open log file: %v", err)
		} else {
			logger.DisableColors()
			logger.Initialize(file, file)
			logger.Infof("Logging to file: %s", logFile)
		}
	}
}

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <path>",
		Short: "Print the version information of a single file",
		Args:  cobra.ExactArgs(1),
		Run:   runQuery,
	}

	cmd.Flags().Bool("json", false, "output as JSON")
	cmd.Flags().Bool("raw", false, "show raw UTF-16 code units instead of decoded text")
	return cmd
}

// queryOutput is the JSON shape of a single-file query
type queryOutput struct {
	Path        string                 `json:"path"`
	VersionInfo *fileversion.Info      `json:"version_info"`
	FixedInfo   *fileversion.FixedInfo `json:"fixed_info,omitempty"`
}

func runQuery(cmd *cobra.Command, args []string) {
	path := args[0]
	asJSON, _ := cmd.Flags().GetBool("json")
	asRaw, _ := cmd.Flags().GetBool("raw")

	if asRaw {
		raw, err := fileversion.QueryRaw(path)
		if err != nil {
			logger.Errorf("Query failed for %s: %v", path, err)
			os.Exit(1)
		}
		for _, f := range raw.Fields() {
			fmt.Printf("%-18s", f.Name+":")
			for _, u := range f.Units {
				fmt.Printf(" %04x", u)
			}
			fmt.Println()
		}
		return
	}

	info, err := fileversion.Query(path)
	if err != nil {
		logger.Errorf("Query failed for %s: %v", path, err)
		os.Exit(1)
	}

	// Fixed info shares the resource the string query just loaded, so
	// a failure here would be unexpected; report it and move on.
	fixed, err := fileversion.QueryFixed(path)
	if err != nil {
		logger.Debugf("No fixed info for %s: %v", path, err)
		fixed = nil
	}

	if asJSON {
		out := queryOutput{Path: path, VersionInfo: info, FixedInfo: fixed}
		js, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			logger.Errorf("Failed to encode result: %v", err)
			os.Exit(1)
		}
		fmt.Println(string(js))
		return
	}

	for _, f := range info.Fields() {
		fmt.Printf("%-18s %s\n", f.Name+":", f.Value)
	}
	if fixed != nil {
		fmt.Printf("%-18s %s\n", "fixed_version:", fixed.FileVersion)
		fmt.Printf("%-18s %s\n", "fixed_product:", fixed.ProductVersion)
	}
}

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Index version information for a directory tree",
		Args:  cobra.ExactArgs(1),
		Run:   runScan,
	}

	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file")
	cmd.Flags().StringP("output", "o", "versions.json", "output JSON file")
	cmd.Flags().StringSliceP("extensions", "e", config.DefaultExtensions, "file extensions to look for")
	cmd.Flags().StringSliceP("include", "i", []string{}, "regex patterns to include paths")
	cmd.Flags().StringSliceP("exclude", "x", []string{}, "regex patterns to exclude paths")
	cmd.Flags().Bool("scan-archives", false, "descend into zip archives")
	cmd.Flags().String("temp-dir", os.TempDir(), "temporary directory for archive extraction")
	cmd.Flags().IntP("workers", "w", 4, "number of scan workers")
	return cmd
}

func runScan(cmd *cobra.Command, args []string) {
	cfg, err := parseScanConfig(cmd, args[0])
	if err != nil {
		logger.Errorf("Error parsing configuration: %v", err)
		os.Exit(1)
	}

	overallStartTime := time.Now()

	logger.Infof("Starting scan of %s", cfg.RootDir)
	logger.Infof("Looking for file extensions: %v", cfg.FileExtensions)

	// Setup signal handling for graceful shutdown
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	store, err := storage.New(cfg.OutputFile)
	if err != nil {
		logger.Errorf("Failed to initialize storage: %v", err)
		os.Exit(1)
	}

	scan, err := scanner.New(cfg, store)
	if err != nil {
		logger.Errorf("Failed to initialize scanner: %v", err)
		os.Exit(1)
	}

	scan.Start()

	walkDone := make(chan error, 1)
	go func() {
		walkDone <- scan.Run()
	}()

	select {
	case err := <-walkDone:
		if err != nil {
			logger.Errorf("Walk error: %v", err)
		}
		scan.Wait()
		store.Close()
	case sig := <-signalChan:
		logger.Infof("Received signal %v, shutting down gracefully...", sig)
		scan.Stop()
		scan.Wait()
		store.Close()
	}

	overallDuration := time.Since(overallStartTime)

	logger.Infof("Scan completed in %v (scanner: %v)", overallDuration, scan.Duration())
	logger.Infof("Files scanned: %d", scan.Stats().FilesScanned)
	logger.Infof("Files with version info: %d", scan.Stats().WithVersionInfo)
	logger.Infof("Errors: %d", scan.Stats().Errors)
	logger.Infof("Results saved to: %s", cfg.OutputFile)
}

func parseScanConfig(cmd *cobra.Command, rootDir string) (config.Config, error) {
	cfg := config.Default()
	cfg.RootDir = rootDir

	// Config file first, flags override
	if cfgFile != "" {
		if err := config.Load(cfgFile, &cfg); err != nil {
			return config.Config{}, err
		}
	}

	if cmd.Flags().Changed("output") {
		cfg.OutputFile, _ = cmd.Flags().GetString("output")
	}
	if cmd.Flags().Changed("extensions") {
		cfg.FileExtensions, _ = cmd.Flags().GetStringSlice("extensions")
	}
	if cmd.Flags().Changed("include") {
		cfg.IncludePatterns, _ = cmd.Flags().GetStringSlice("include")
	}
	if cmd.Flags().Changed("exclude") {
		cfg.ExcludePatterns, _ = cmd.Flags().GetStringSlice("exclude")
	}
	if cmd.Flags().Changed("scan-archives") {
		cfg.ScanArchives, _ = cmd.Flags().GetBool("scan-archives")
	}
	if cmd.Flags().Changed("temp-dir") {
		cfg.TempDir, _ = cmd.Flags().GetString("temp-dir")
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers, _ = cmd.Flags().GetInt("workers")
	}

	return cfg, nil
}
