package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/openai/openai-go/v3/option"

	gatewaysmoke "github.com/juburr/gateway-smoke"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type (
	// cmd corresponds to the top-level `gateway-smoke` command.
	cmd struct {
		Globals globals `embed:""`

		Version struct{}  `cmd:"" help:"Show version."`
		Chat    cmdChat   `cmd:"" help:"Run the chat-completion smoke probe."`
		Vision  cmdVision `cmd:"" help:"Run the vision smoke probe."`
		Agent   cmdAgent  `cmd:"" help:"Run a chat probe as one of the built-in agents."`
		All     cmdAll    `cmd:"" default:"withargs" help:"Run every smoke probe in order."`
	}
	// globals are flags shared by every probe command.
	globals struct {
		EnvFile            string            `name:"env-file" help:"Optional .env file with client_id / client_secret." default:".env" type:"path"`
		Debug              bool              `help:"Enable debug logging emitted to stderr."`
		InsecureSkipVerify bool              `name:"insecure-skip-verify" help:"Disable TLS certificate verification."`
		Timeout            time.Duration     `help:"Per-request timeout, 0 for none."`
		Header             map[string]string `help:"Extra request header as Name=value. Repeatable."`
	}
	cmdChat struct {
		Question string `help:"Question sent to the chat deployment." default:"${question}"`
	}
	cmdVision struct {
		Image       string `help:"Image file sent to the vision deployment (defaults to GATEWAY_SMOKE_IMAGE_PATH). Windows-style paths are accepted."`
		Instruction string `help:"Instruction sent with the image." default:"${instruction}"`
	}
	cmdAgent struct {
		Persona  string `help:"Built-in agent to speak as." enum:"${agents}" default:"research"`
		Question string `help:"Question sent to the agent." default:"${question}"`
	}
	cmdAll struct {
		Chat   cmdChat   `embed:""`
		Vision cmdVision `embed:""`
	}
)

type runFn func(ctx context.Context, g globals, probes []probeFactory, stdout, stderr io.Writer) error

// probeFactory defers probe construction until the configuration is loaded.
type probeFactory func(cfg gatewaysmoke.Config) gatewaysmoke.Probe

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	doMain(ctx, os.Stdout, os.Stderr, os.Args[1:], os.Exit, run)
}

// doMain is the main entry point for the CLI. It parses the command line arguments and executes the appropriate command.
//
//   - stdout is the writer to use for standard output. Mainly for testing.
//   - stderr is the writer to use for standard error. Mainly for testing.
//   - `args` are the command line arguments without the program name.
//   - exitFn is the function to call to exit the program. Mainly for testing.
//   - rf is the function that runs the probes. Mainly for testing.
func doMain(ctx context.Context, stdout, stderr io.Writer, args []string, exitFn func(int), rf runFn) {
	var c cmd
	parser, err := kong.New(&c,
		kong.Name("gateway-smoke"),
		kong.Description("Smoke tests for the chat/vision API gateway."),
		kong.Writers(stdout, stderr),
		kong.Exit(exitFn),
		kong.Vars{
			"question":    gatewaysmoke.DefaultChatQuestion,
			"instruction": gatewaysmoke.DefaultVisionInstruction,
			"agents":      strings.Join(gatewaysmoke.AgentNames(), ","),
		},
	)
	if err != nil {
		log.Fatalf("Error creating parser: %v", err)
	}
	parsed, err := parser.Parse(args)
	parser.FatalIfErrorf(err)

	var probes []probeFactory
	switch parsed.Command() {
	case "version":
		_, _ = fmt.Fprintf(stdout, "gateway-smoke: %s\n", version)
		return
	case "chat":
		probes = []probeFactory{chatFactory(c.Chat.Question)}
	case "vision":
		probes = []probeFactory{visionFactory(c.Vision.Image, c.Vision.Instruction)}
	case "agent":
		probes = []probeFactory{agentFactory(c.Agent.Persona, c.Agent.Question)}
	case "all":
		probes = []probeFactory{
			chatFactory(c.All.Chat.Question),
			visionFactory(c.All.Vision.Image, c.All.Vision.Instruction),
		}
	}

	if err := rf(ctx, c.Globals, probes, stdout, stderr); err != nil {
		_, _ = fmt.Fprintf(stderr, "gateway-smoke: %v\n", err)
		exitFn(1)
	}
}

func chatFactory(question string) probeFactory {
	return func(cfg gatewaysmoke.Config) gatewaysmoke.Probe {
		return gatewaysmoke.ChatProbe(cfg.ChatEndpoint(), question)
	}
}

func visionFactory(image, instruction string) probeFactory {
	return func(cfg gatewaysmoke.Config) gatewaysmoke.Probe {
		path := image
		if path == "" {
			path = cfg.ImagePath
		}
		return gatewaysmoke.VisionProbe(cfg.VisionEndpoint(), gatewaysmoke.ResolveImagePath("", path), instruction)
	}
}

func agentFactory(persona, question string) probeFactory {
	return func(cfg gatewaysmoke.Config) gatewaysmoke.Probe {
		agent, err := gatewaysmoke.AgentByName(persona)
		if err != nil {
			return gatewaysmoke.Probe{
				Name:     gatewaysmoke.AgentProbeName,
				Endpoint: cfg.ChatEndpoint(),
				Build:    func() ([]byte, error) { return nil, err },
			}
		}
		return gatewaysmoke.AgentProbe(cfg.ChatEndpoint(), agent, question)
	}
}

// run loads configuration, runs the probes in order and prints one line per
// probe. It returns an error when any probe failed.
func run(ctx context.Context, g globals, factories []probeFactory, stdout, stderr io.Writer) error {
	cfg, err := gatewaysmoke.LoadConfigWithEnvFile(g.EnvFile, true)
	if err != nil {
		return err
	}
	if g.InsecureSkipVerify {
		cfg.InsecureSkipVerify = true
	}
	if g.Timeout > 0 {
		cfg.Timeout = g.Timeout
	}

	level := slog.LevelInfo
	if g.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	opts := append([]gatewaysmoke.Option{gatewaysmoke.WithLogger(logger)}, cfg.ClientOptions()...)
	if len(g.Header) > 0 {
		headers := make([]option.RequestOption, 0, len(g.Header))
		for name, value := range g.Header {
			headers = append(headers, option.WithHeader(name, value))
		}
		opts = append(opts, gatewaysmoke.WithRequestOptions(headers...))
	}
	client := gatewaysmoke.New(opts...)

	probes := make([]gatewaysmoke.Probe, 0, len(factories))
	for _, newProbe := range factories {
		probes = append(probes, newProbe(cfg))
	}

	results := client.RunAll(ctx, probes...)
	failed := 0
	for _, r := range results {
		status := "PASS"
		if !r.Passed() {
			status = "FAIL"
			failed++
		}
		_, _ = fmt.Fprintf(stdout, "%s\t%s\tstatus=%d\tduration=%s",
			status, r.Probe, r.StatusCode, r.Duration.Round(time.Millisecond))
		if r.Model != "" {
			_, _ = fmt.Fprintf(stdout, "\tmodel=%s\ttokens=%d", r.Model, r.TotalTokens)
		}
		_, _ = fmt.Fprintln(stdout)
		if r.Err != nil {
			_, _ = fmt.Fprintf(stdout, "\t%v\n", r.Err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d probes failed", failed, len(results))
	}
	return nil
}
