// cmd/tools/invoke-event/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"blog-generator/internal/app"
	"blog-generator/internal/common/config"
	"blog-generator/internal/common/logger"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	eventPath := flag.String("event", "", "path to an invocation event JSON file (- for stdin)")
	topic := flag.String("topic", "", "blog topic; shorthand for an event of {\"blog_topic\": <topic>}")
	configPath := flag.String("config", "", "config file (defaults to configs/config.yaml lookup)")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	raw, err := readEvent(*eventPath, *topic)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured(*logLevel, "console")
	ctx := context.Background()

	application, err := app.New(ctx, cfg, log, app.Options{Trigger: "cli", Registerer: prometheus.NewRegistry()})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing pipeline: %v\n", err)
		os.Exit(1)
	}
	defer application.Close(ctx)

	env := application.Service.HandleRaw(ctx, raw)

	out, _ := json.MarshalIndent(env, "", "  ")
	fmt.Println(string(out))

	if env.StatusCode != 200 {
		application.Close(ctx)
		os.Exit(1)
	}
}

func readEvent(path, topic string) ([]byte, error) {
	switch {
	case topic != "" && path != "":
		return nil, fmt.Errorf("use either -event or -topic, not both")
	case topic != "":
		return json.Marshal(map[string]string{"blog_topic": topic})
	case path == "-":
		return io.ReadAll(os.Stdin)
	case path != "":
		return os.ReadFile(path)
	default:
		return nil, fmt.Errorf("one of -event or -topic is required")
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}
