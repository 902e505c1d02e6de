// Command powerflow runs a single analysis over a YAML study file and prints
// a styled report. It is the batch front end; the interactive browser lives
// in cmd/powerflow-tui.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/amberline/powerflow/pkg/analysis"
	"github.com/amberline/powerflow/pkg/config"
	"github.com/amberline/powerflow/pkg/logging"
	"github.com/amberline/powerflow/pkg/metrics"
)

// studyFile is the on-disk shape of one study: exactly one of the two
// analysis sections must be present.
type studyFile struct {
	ShortCircuit *analysis.ShortCircuitInput `yaml:"short_circuit"`
	LoadFlow     *analysis.LoadFlowInput     `yaml:"load_flow"`
}

func main() {
	inputPath := flag.String("input", "", "Study file (YAML)")
	configPath := flag.String("config", "", "Engine configuration file (YAML, optional)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (default: LOG_LEVEL env, else quiet)")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (optional)")
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: powerflow -input study.yaml [-config engine.yaml]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fatalf("loading configuration: %v", err)
		}
		cfg = loaded
	}

	opts := []analysis.Option{analysis.WithConfig(cfg)}
	switch {
	case *logLevel != "":
		opts = append(opts, analysis.WithLogger(
			logging.NewJSONLogger(os.Stderr, logging.ParseLevel(*logLevel))))
	case os.Getenv("LOG_LEVEL") != "":
		opts = append(opts, analysis.WithLogger(logging.NewDefaultLogger()))
	}

	reg := metrics.New()
	opts = append(opts, analysis.WithMetrics(reg))
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", reg.Handler())
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				fmt.Fprintf(os.Stderr, "metrics server: %v\n", err)
			}
		}()
	}

	study, err := loadStudy(*inputPath)
	if err != nil {
		fatalf("%v", err)
	}

	engine := analysis.New(opts...)
	switch {
	case study.ShortCircuit != nil:
		res, err := engine.AnalyzeShortCircuit(*study.ShortCircuit)
		if err != nil {
			fatalf("short-circuit analysis: %v", err)
		}
		fmt.Println(renderShortCircuit(res))
	case study.LoadFlow != nil:
		res, err := engine.AnalyzeLoadFlow(*study.LoadFlow)
		if err != nil {
			fatalf("load-flow analysis: %v", err)
		}
		fmt.Println(renderLoadFlow(res))
	}
}

func loadStudy(path string) (*studyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var study studyFile
	if err := yaml.Unmarshal(data, &study); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if (study.ShortCircuit == nil) == (study.LoadFlow == nil) {
		return nil, fmt.Errorf("%s: the study needs exactly one of short_circuit or load_flow", path)
	}
	return &study, nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "powerflow: "+format+"\n", args...)
	os.Exit(1)
}
