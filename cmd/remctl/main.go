// Command remctl runs a command on a remote remctl server.
//
// The command's output is written to standard output unchanged and remctl
// exits with the command's status. Protocol, authentication and network
// failures are reported on standard error with exit status 255.
//
// Usage:
//
//	remctl [flags] host command [args...]
//	remctl [flags] -interactive host
//
// Flags:
//
//	-p int                 Server port (default 4444)
//	-s string              Server principal (default host/<canonical host>)
//	-config string         YAML configuration file
//	-k string              Keytab to authenticate with (requires -client)
//	-client string         Client principal for -k
//	-ccache string         Ticket cache (default $KRB5CCNAME or /tmp/krb5cc_<uid>)
//	-krb5-conf string      Kerberos configuration (default $KRB5_CONFIG or /etc/krb5.conf)
//	-timeout duration      Bound on the exchange after connecting
//	-optional-mic          Accept servers that skip the command MIC
//	-log-level string      Log level: debug, info, warn, error (default "warn")
//	-protocol-log string   File path for protocol event logging (CBOR format)
//	-interactive           Read commands from a prompt
//
// Examples:
//
//	# Run a command with the ticket cache
//	remctl shell.example.org accounts show alice
//
//	# Authenticate from a keytab against a non-default port
//	remctl -k /etc/remctl.keytab -client service/backup@EXAMPLE.ORG -p 4373 backup.example.org backup run
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/remctl-protocol/remctl-go/cmd/remctl/interactive"
	"github.com/remctl-protocol/remctl-go/pkg/config"
	"github.com/remctl-protocol/remctl-go/pkg/gss/krb5"
	remctllog "github.com/remctl-protocol/remctl-go/pkg/log"
	"github.com/remctl-protocol/remctl-go/pkg/remctl"
)

// exitFailure is the status for failures that produced no command status.
const exitFailure = 255

// Options holds the command-line flags. Set flags override the
// configuration file.
type Options struct {
	ConfigFile  string
	Port        int
	Principal   string
	Keytab      string
	Client      string
	CCache      string
	Krb5Conf    string
	Timeout     time.Duration
	OptionalMIC bool
	LogLevel    string
	ProtocolLog string
	Interactive bool
}

var opts Options

func init() {
	flag.StringVar(&opts.ConfigFile, "config", "", "YAML configuration file")
	flag.IntVar(&opts.Port, "p", 0, "Server port (default 4444)")
	flag.StringVar(&opts.Principal, "s", "", "Server principal (default host/<canonical host>)")
	flag.StringVar(&opts.Keytab, "k", "", "Keytab to authenticate with (requires -client)")
	flag.StringVar(&opts.Client, "client", "", "Client principal for -k")
	flag.StringVar(&opts.CCache, "ccache", "", "Ticket cache (default $KRB5CCNAME or /tmp/krb5cc_<uid>)")
	flag.StringVar(&opts.Krb5Conf, "krb5-conf", "", "Kerberos configuration (default $KRB5_CONFIG or /etc/krb5.conf)")
	flag.DurationVar(&opts.Timeout, "timeout", 0, "Bound on the exchange after connecting")
	flag.BoolVar(&opts.OptionalMIC, "optional-mic", false, "Accept servers that skip the command MIC")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn, error (default \"warn\")")
	flag.StringVar(&opts.ProtocolLog, "protocol-log", "", "File path for protocol event logging (CBOR format)")
	flag.BoolVar(&opts.Interactive, "interactive", false, "Read commands from a prompt")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  remctl [flags] host command [args...]\n  remctl [flags] -interactive host\n\nFlags:\n")
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	os.Exit(run(flag.Args()))
}

func run(args []string) int {
	log.SetFlags(0)
	log.SetPrefix("remctl: ")

	cfg, err := loadConfig(opts, args)
	if err != nil {
		log.Print(err)
		return exitFailure
	}
	if cfg.Server.Host == "" || (!opts.Interactive && len(args) < 2) {
		flag.Usage()
		return exitFailure
	}
	level, _ := config.ParseLevel(cfg.Logging.Level)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if level <= slog.LevelDebug {
		log.SetFlags(log.Ltime | log.Lmicroseconds)
	}

	clientConfig := cfg.ClientConfig()
	clientConfig.Logger = logger

	// Protocol events go to the capture file and, at debug level, to the
	// operational log as well.
	var sinks []remctllog.Logger
	if cfg.Logging.ProtocolLog != "" {
		fileLogger, err := remctllog.NewFileLogger(cfg.Logging.ProtocolLog)
		if err != nil {
			log.Printf("protocol log: %v", err)
			return exitFailure
		}
		defer fileLogger.Close()
		sinks = append(sinks, fileLogger)
	}
	if level <= slog.LevelDebug {
		sinks = append(sinks, remctllog.NewSlogAdapter(logger))
	}
	switch len(sinks) {
	case 0:
	case 1:
		clientConfig.ProtocolLogger = sinks[0]
	default:
		clientConfig.ProtocolLogger = remctllog.NewMultiLogger(sinks...)
	}

	krbConfig := cfg.KerberosConfig()
	krbConfig.Logger = logger
	provider, err := krb5.Login(krbConfig)
	if err != nil {
		log.Print(err)
		return exitFailure
	}
	defer provider.Close()

	client, err := remctl.NewClient(provider, clientConfig)
	if err != nil {
		log.Print(err)
		return exitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.Interactive {
		shell, err := interactive.New(client, cfg.Server.Host)
		if err != nil {
			log.Print(err)
			return exitFailure
		}
		log.SetOutput(shell.Stdout())
		return shell.Run(ctx)
	}

	return runOnce(ctx, client, args[1:], os.Stdout)
}

// runOnce runs one command and returns the process exit status.
func runOnce(ctx context.Context, runner interactive.Runner, command []string, stdout io.Writer) int {
	argv := make([][]byte, len(command))
	for i, a := range command {
		argv[i] = []byte(a)
	}

	result, err := runner.Run(ctx, argv)
	if err != nil {
		log.Print(strings.TrimPrefix(err.Error(), "remctl: "))
		return exitFailure
	}
	if _, err := stdout.Write(result.Message); err != nil {
		log.Printf("write output: %v", err)
		return exitFailure
	}
	return int(result.Status)
}

// loadConfig merges the configuration file, the flags that were set and
// the host argument.
func loadConfig(o Options, args []string) (*config.Config, error) {
	cfg := config.Default()
	if o.ConfigFile != "" {
		loaded, err := config.Load(o.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if len(args) > 0 {
		cfg.Server.Host = args[0]
	}
	if o.Port != 0 {
		cfg.Server.Port = o.Port
	}
	if o.Principal != "" {
		cfg.Server.Principal = o.Principal
	}
	if o.Keytab != "" {
		cfg.Kerberos.Keytab = o.Keytab
	}
	if o.Client != "" {
		cfg.Kerberos.Client = o.Client
	}
	if o.CCache != "" {
		cfg.Kerberos.CCache = o.CCache
	}
	if o.Krb5Conf != "" {
		cfg.Kerberos.Config = o.Krb5Conf
	}
	if o.Timeout != 0 {
		cfg.Timeouts.IO = config.Duration(o.Timeout)
	}
	if o.OptionalMIC {
		cfg.Protocol.OptionalRequestMIC = true
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if o.ProtocolLog != "" {
		cfg.Logging.ProtocolLog = o.ProtocolLog
	}

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrInvalidConfig) && o.ConfigFile != "" {
			return nil, fmt.Errorf("%s: %w", o.ConfigFile, err)
		}
		return nil, err
	}
	return cfg, nil
}
