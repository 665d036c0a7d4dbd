// Package main provides the nnebind CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"k8s.io/klog/v2"

	"github.com/born-ml/nnebind/inference"
	"github.com/born-ml/nnebind/internal/pipeline"
	"github.com/born-ml/nnebind/onnx"
)

const version = "v0.1.0-dev"

func main() {
	klog.InitFlags(nil)
	flag.Usage = func() { usage(flag.CommandLine.Output()) }
	flag.Parse()

	ctx := context.Background()
	if err := run(ctx, flag.Args(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		klog.Flush()
		os.Exit(1)
	}
	klog.Flush()
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "nnebind - bind tensors to ONNX models and run them")
	fmt.Fprintf(w, "Version: %s\n\n", version)
	fmt.Fprintln(w, "Usage: nnebind [klog flags] <command> [args]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  version             Show version")
	fmt.Fprintln(w, "  runtimes            List available runtimes")
	fmt.Fprintln(w, "  inspect <model>     Print a model's inputs and outputs")
	fmt.Fprintln(w, "  run [flags]         Run a model on a screenshot")
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		usage(out)
		return nil
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(out, "nnebind %s\n", version)
		return nil
	case "runtimes":
		return runRuntimes(out)
	case "inspect":
		return runInspect(args[1:], out)
	case "run":
		return runModel(ctx, args[1:], out)
	default:
		usage(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runRuntimes(out io.Writer) error {
	names := inference.RuntimeNames()
	klog.V(2).InfoS("Fetched runtime names", "count", len(names))
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	return nil
}

func runInspect(args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: nnebind inspect <model.onnx>")
	}

	info, err := onnx.GetModelInfo(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Producer: %s %s\n", info.ProducerName, info.ProducerVersion)
	fmt.Fprintf(out, "IR version: %d\n", info.IRVersion)
	fmt.Fprintf(out, "Opset: %d\n", info.OpsetVersion)
	fmt.Fprintf(out, "Graph: %s (%d nodes, %d weights)\n", info.GraphName, info.NodeCount, info.WeightCount)
	fmt.Fprintln(out, "Inputs:")
	for _, d := range info.Signature.Inputs {
		fmt.Fprintf(out, "  %s %s [%s]\n", d.Name, d.ElemType, d.Dims)
	}
	fmt.Fprintln(out, "Outputs:")
	for _, d := range info.Signature.Outputs {
		fmt.Fprintf(out, "  %s %s [%s]\n", d.Name, d.ElemType, d.Dims)
	}
	return nil
}

func runModel(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(out)
	configPath := fs.String("config", "", "YAML configuration file")
	model := fs.String("model", "", "model path or gs:// URL (overrides config)")
	runtime := fs.String("runtime", "", "runtime name (overrides config)")
	screenshot := fs.String("screenshot", "", "PNG to run on (overrides the conventional screenshot path)")
	sharedLib := fs.String("shared-library", "", "onnxruntime shared library (overrides config)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg := inference.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = inference.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	if *model != "" {
		cfg.Model = *model
	}
	if *runtime != "" {
		cfg.Runtime = *runtime
	}
	if *screenshot != "" {
		cfg.Screenshot.Path = *screenshot
	}
	if *sharedLib != "" {
		cfg.SharedLibrary = *sharedLib
	}

	p, err := inference.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			klog.ErrorS(err, "Closing model")
		}
	}()

	outputs, err := p.Run(ctx)
	if err != nil {
		return err
	}

	for i, o := range outputs {
		st, err := pipeline.Summarize(o)
		if err != nil {
			return fmt.Errorf("output %d: %w", i, err)
		}
		fmt.Fprintf(out, "output %d [%s]: min=%g max=%g mean=%g argmax=%d\n",
			i, o.Shape(), st.Min, st.Max, st.Mean, st.ArgMax)
	}
	return nil
}
