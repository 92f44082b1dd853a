package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joseph-ayodele/post-advisor/internal/app"
	"github.com/joseph-ayodele/post-advisor/internal/common"
)

// recommend prints recommendations and an engagement estimate for post text read
// from -text, a file argument, or stdin.
func main() {
	var (
		text    = flag.String("text", "", "post text (default: read file argument or stdin)")
		times   = flag.Int("times", 1, "repeat the call N times (provider smoke test)")
		timeout = flag.Duration("timeout", 2*time.Minute, "overall deadline")
	)
	flag.Parse()

	cfg, err := common.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	body := *text
	if body == "" {
		var r io.Reader = os.Stdin
		if flag.NArg() > 0 {
			f, err := os.Open(flag.Arg(0))
			if err != nil {
				logger.Error("failed to open input", "path", flag.Arg(0), "error", err)
				os.Exit(2)
			}
			defer f.Close()
			r = f
		}
		b, err := io.ReadAll(r)
		if err != nil {
			logger.Error("failed to read input", "error", err)
			os.Exit(2)
		}
		body = string(b)
	}
	if strings.TrimSpace(body) == "" {
		fmt.Fprintln(os.Stderr, "usage: recommend [-text TEXT] [file]  (or pipe text on stdin)")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	a, err := app.Build(ctx, cfg, logger, app.Options{NoLedger: true})
	if err != nil {
		logger.Error("failed to build app", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	n := *times
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		start := time.Now()
		res := a.Processor.Analyze(ctx, body)
		logger.Info("recommend.run", "iteration", i+1, "source", res.Recommendations.Source,
			"items", len(res.Recommendations.Items), "elapsed_ms", time.Since(start).Milliseconds())
		if err := enc.Encode(res); err != nil {
			logger.Error("failed to write output", "error", err)
			os.Exit(1)
		}
	}
}
