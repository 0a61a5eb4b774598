// Command microasm11 assembles PDP-11 source into a hex dump, a raw
// binary or a Verilog memory-init module.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdaxrom/microasm11/config"
	"github.com/pdaxrom/microasm11/encode"
	"github.com/pdaxrom/microasm11/engine"
	"github.com/pdaxrom/microasm11/image"
)

// Version information, set by git tag at build time:
//
//	go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion  = flag.Bool("version", false, "Show version information")
		verilog      = flag.Bool("verilog", false, "Write a Verilog memory-init module")
		binaryOut    = flag.Bool("binary", false, "Write the raw assembled bytes")
		hexOut       = flag.Bool("hex", false, "Write a hex dump of ADDR: bytes rows")
		caseSens     = flag.Bool("case-sensitive-symbols", false, "Treat symbol names as case sensitive")
		jmpIndirect  = flag.Bool("jmp-label-indirect", false, "Assemble a bare label operand to jmp as @label")
		cpuName      = flag.String("cpu", "", "Default CPU variant (default, dcj11, vm1, vm1g, vm2); overrides the config file")
		listPath     = flag.String("list", "", "Write an assembly listing to this path (- for standard output)")
		configPath   = flag.String("config", "", "Load configuration from this path instead of the default location")
		outPath      = flag.String("o", "", "Output file path (default: input path with its extension swapped)")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("microasm11 %s (%s)\n", Version, Commit)
		os.Exit(0)
	}

	if flag.NArg() < 1 || flag.NArg() > 2 {
		fmt.Fprintln(os.Stderr, "Usage: microasm11 [options] <source-file> [output-file]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	cpu := cfg.CPU()
	if *cpuName != "" {
		parsed, ok := encode.ParseCPU(*cpuName)
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown CPU variant: %s\n", *cpuName)
			os.Exit(1)
		}
		cpu = parsed
	}

	srcPath := flag.Arg(0)

	var listing *os.File
	listTarget := *listPath
	if listTarget == "" && cfg.Listing.Enabled {
		listTarget = swapExt(srcPath, ".lst")
	}
	if listTarget == "-" {
		listing = os.Stdout
	} else if listTarget != "" {
		listing, err = os.Create(listTarget) // #nosec G304 -- user-specified listing output path
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating listing file: %v\n", err)
			os.Exit(1)
		}
		defer listing.Close()
	}

	opts := engine.Options{
		CaseSensitiveSymbols: *caseSens || cfg.Assembler.CaseSensitiveSymbols,
		JmpLabelIndirect:     *jmpIndirect || cfg.Assembler.JmpLabelIndirect,
		DefaultCPU:           cpu,
	}
	if listing != nil {
		opts.Listing = listing
	}

	ctx := engine.NewContext(opts)
	result, asmErr := ctx.Assemble(srcPath)
	if asmErr != nil {
		fmt.Fprint(os.Stderr, asmErr.Report())
		os.Exit(1)
	}

	format := cfg.Output.Format
	if *verilog {
		format = "verilog"
	} else if *binaryOut {
		format = "binary"
	} else if *hexOut {
		format = "hex"
	}

	out := *outPath
	if out == "" && flag.NArg() == 2 {
		out = flag.Arg(1)
	}
	if out == "" {
		out = swapExt(srcPath, defaultExt(format))
	}

	f, err := os.Create(out) // #nosec G304 -- user-specified output path
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var writeErr error
	switch format {
	case "verilog":
		writeErr = image.WriteVerilog(f, result.Img)
	case "hex":
		writeErr = image.WriteHex(f, result.Img)
	default:
		writeErr = image.WriteBinary(f, result.Img)
	}
	if writeErr != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", writeErr)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func swapExt(path, ext string) string {
	trimmed := strings.TrimSuffix(path, filepath.Ext(path))
	return trimmed + ext
}

func defaultExt(format string) string {
	switch format {
	case "verilog":
		return ".v"
	case "hex":
		return ".mem"
	default:
		return ".bin"
	}
}
