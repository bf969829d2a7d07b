// Command dvedit serves editable chunked density volumes over HTTP.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/janelia-flyem/dvedit/dvid"
	"github.com/janelia-flyem/dvedit/server"
)

var (
	// Display usage if true.
	showHelp = flag.Bool("help", false, "")

	// Run in verbose mode if true.
	runVerbose = flag.Bool("verbose", false, "")

	// Address for http communication, overriding the configuration.
	httpAddress = flag.String("http", "", "")

	// Profile CPU usage using standard gotest system.
	cpuprofile = flag.String("cpuprofile", "", "")

	// Profile memory usage using standard gotest system.
	memprofile = flag.String("memprofile", "", "")

	// Number of logical CPUs to use.
	useCPU = flag.Int("numcpu", 0, "")
)

const helpMessage = `
dvedit serves chunked density volumes whose chunk border caches stay consistent
under point and box edits.

Usage: dvedit [options] <command>

      -http       =string   Address for HTTP communication.  Overrides the config file.
      -cpuprofile =string   Write CPU profile to this file.
      -memprofile =string   Write memory profile to this file on ctrl-C.
      -numcpu     =number   Number of logical CPUs to use.
      -verbose    (flag)    Run in verbose mode.
  -h, -help       (flag)    Show help message

Commands:

	about
	version
	help
	check  <config.toml>     Parse the configuration and build its volumes.
	serve  <config.toml>
`

func main() {
	flag.BoolVar(showHelp, "h", false, "Show help message")
	flag.Usage = func() { fmt.Print(helpMessage) }
	flag.Parse()

	if flag.NArg() >= 1 && strings.ToLower(flag.Args()[0]) == "help" {
		*showHelp = true
	}
	if *runVerbose {
		dvid.SetLogMode(dvid.DebugMode)
	}
	if *showHelp || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}
	if *useCPU != 0 {
		runtime.GOMAXPROCS(*useCPU)
	}

	// Capture ctrl+c and other interrupts.  Then handle graceful shutdown.
	stopSig := make(chan os.Signal, 1)
	go func() {
		for sig := range stopSig {
			log.Printf("Stop signal captured: %q.  Shutting down...\n", sig)
			if *memprofile != "" {
				log.Printf("Storing memory profiling to %s...\n", *memprofile)
				f, err := os.Create(*memprofile)
				if err != nil {
					log.Fatal(err)
				}
				pprof.WriteHeapProfile(f)
				f.Close()
			}
			if *cpuprofile != "" {
				log.Printf("Stopping CPU profiling to %s...\n", *cpuprofile)
				pprof.StopCPUProfile()
			}
			server.Shutdown()
			time.Sleep(1 * time.Second)
			os.Exit(0)
		}
	}()
	signal.Notify(stopSig, os.Interrupt, syscall.SIGTERM)

	if err := DoCommand(flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// DoCommand serves as a switchboard for commands.
func DoCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("blank command")
	}
	switch args[0] {
	case "about":
		fmt.Printf("dvedit %s\n", server.Version)
		fmt.Printf("Go %s (%s/%s), %d logical CPUs\n", runtime.Version(), runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	case "version":
		fmt.Println(server.Version)
	case "check":
		return DoCheck(args)
	case "serve":
		return DoServe(args)
	default:
		return fmt.Errorf("unknown command %q; try 'dvedit help'", args[0])
	}
	return nil
}

func configArg(args []string) (string, error) {
	if len(args) < 2 {
		return "", fmt.Errorf("%s command must be followed by the path to the TOML configuration", args[0])
	}
	return args[1], nil
}

// DoCheck loads the configuration and builds its volumes without serving them.
func DoCheck(args []string) error {
	filename, err := configArg(args)
	if err != nil {
		return err
	}
	if err := server.LoadConfig(filename); err != nil {
		return err
	}
	if err := server.Initialize(); err != nil {
		return err
	}
	for _, name := range server.VolumeNames() {
		f, err := server.GetVolume(name)
		if err != nil {
			return err
		}
		fmt.Printf("volume %q: %s chunks (%d allocated) of %s points\n", name, f.ChunkCount(), f.NumChunks(), f.PointsPerChunk())
	}
	server.Shutdown()
	return nil
}

// DoServe loads the configuration, creates its volumes and serves them until shutdown.
func DoServe(args []string) error {
	filename, err := configArg(args)
	if err != nil {
		return err
	}
	if err := server.LoadConfig(filename); err != nil {
		return err
	}
	if *httpAddress != "" {
		server.SetHTTPAddress(*httpAddress)
	}
	if err := server.Initialize(); err != nil {
		return err
	}
	return server.Serve()
}
