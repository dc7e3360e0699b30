package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/vmsim/batch"
	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/loader"
	"github.com/sarchlab/vmsim/monitoring"
	"github.com/sarchlab/vmsim/trace"
	"github.com/sarchlab/vmsim/vm"
)

var (
	initFileName    string
	addressFileName string
	outputFileName  string
	traceDBName     string
	useMonitor      bool
	monitorPort     int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Translate a batch of virtual addresses",
	Long: `Run loads segment and page table records from the init file, ` +
		`translates every address of the address file, and writes one ` +
		`result per line to the output file, -1 for faulted addresses.`,
	Run: runBatch,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&initFileName, "init", "init.txt",
		"file with segment and page table records")
	runCmd.Flags().StringVar(&addressFileName, "addresses", "input.txt",
		"file with the virtual addresses to translate")
	runCmd.Flags().StringVar(&outputFileName, "output", "output.txt",
		"file receiving one translation result per line")
	runCmd.Flags().StringVar(&traceDBName, "trace-db", "",
		"record translations, evictions, and allocations to this SQLite "+
			"database")
	runCmd.Flags().BoolVar(&useMonitor, "monitor", false,
		"serve the final simulation state over HTTP after the run")
	runCmd.Flags().IntVar(&monitorPort, "monitor-port", 0,
		"port of the monitoring server, 0 picks a random one or the "+
			"VMSIM_MONITOR_PORT value")
}

func runBatch(_ *cobra.Command, _ []string) {
	manager := vm.MakeBuilder().Build("VMM")

	loadTables(manager)

	runner := buildRunner(manager)

	stats, err := runner.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Batch aborted: %s\n", err)
		atexit.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Translated %d addresses, %d faulted\n",
		stats.Translated, stats.Faulted)

	// The manager is not safe for concurrent use, so the monitor only
	// starts once the batch is done mutating it. The process then stays up
	// for inspection until interrupted.
	if useMonitor {
		startMonitor(manager)
		waitForInterrupt()
	}

	atexit.Exit(0)
}

func loadTables(manager *vm.Manager) {
	initFile, err := os.Open(initFileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open init file: %s\n", err)
		atexit.Exit(1)
	}
	defer initFile.Close()

	if err := loader.LoadInit(initFile, manager); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot load init file: %s\n", err)
		atexit.Exit(1)
	}
}

func buildRunner(manager *vm.Manager) *batch.Runner {
	addressFile, err := os.Open(addressFileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open address file: %s\n", err)
		atexit.Exit(1)
	}

	outputFile, err := os.Create(outputFileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot create output file: %s\n", err)
		atexit.Exit(1)
	}

	builder := batch.MakeBuilder().
		WithManager(manager).
		WithSource(loader.NewAddressSource(addressFile)).
		WithSink(loader.NewResultSink(outputFile))

	if traceDBName != "" {
		recorder := datarecording.NewRecorder(traceDBName)
		atexit.Register(recorder.Close)

		tracer := trace.NewDBTracer(recorder)
		manager.AttachTracer(tracer)
		builder = builder.WithTracer(tracer)
	}

	return builder.Build()
}

func startMonitor(manager *vm.Manager) {
	port := monitorPort
	if port == 0 {
		port = envInt("VMSIM_MONITOR_PORT", 0)
	}

	monitor := monitoring.NewMonitor()
	if port > 0 {
		monitor = monitor.WithPortNumber(port)
	}
	monitor.RegisterManager(manager)

	url := monitor.StartServer()

	if err := browser.OpenURL(url); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open browser: %s\n", err)
	}
}

func waitForInterrupt() {
	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, os.Interrupt)
	<-interrupted
}

func envInt(name string, fallback int) int {
	value := os.Getenv(name)
	if value == "" {
		return fallback
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}

	return n
}
