package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"rlwe-kex/pkg/config"
	"rlwe-kex/pkg/logger"
)

var (
	Version   = "DEV"
	BuildTime = "unknown"
)

const (
	configFlag = "config"
	nFlag      = "n"
	qFlag      = "q"
	sourceFlag = "source"
	seedFlag   = "seed"
	formatFlag = "format"

	publicKeyFlag  = "public-key"
	privateKeyFlag = "private-key"
	ciphertextFlag = "ciphertext"
)

func main() {
	app := newApp(os.Stdout)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "rlwe: %v\n", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	app := &cli.App{}
	app.Name = "rlwe"
	app.Usage = "Ring key exchange over a butterfly transform"
	app.UsageText = "rlwe [global options] command [command options]"
	app.Version = fmt.Sprintf("%s (built %s)", Version, BuildTime)
	app.Writer = out
	app.Flags = flags()
	app.Commands = commands()
	return app
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    configFlag,
			Usage:   "YAML configuration file",
			EnvVars: []string{"RLWE_CONFIG"},
		},
		&cli.IntFlag{
			Name:  nFlag,
			Usage: "ring dimension, a power of two",
		},
		&cli.Uint64Flag{
			Name:  qFlag,
			Usage: "prime modulus",
		},
		&cli.StringFlag{
			Name:  sourceFlag,
			Usage: "random source: prng or xof",
		},
		&cli.StringFlag{
			Name:    seedFlag,
			Usage:   "seed for a reproducible random source",
			EnvVars: []string{"RLWE_SEED"},
		},
		&cli.StringFlag{
			Name:  logger.LogLevelFlag,
			Usage: "log level: debug, info, warn, error",
		},
	}
}

func formatFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  formatFlag,
			Usage: "array encoding: json or hex",
			Value: formatJSON,
		},
	}
}

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "params",
			Usage:  "Validate and print the ring parameters",
			Action: runParams,
		},
		{
			Name:   "keygen",
			Usage:  "Generate a key pair",
			Flags:  formatFlags(),
			Action: runKeygen,
		},
		{
			Name:  "encapsulate",
			Usage: "Encapsulate against a hex-packed public key",
			Flags: append(formatFlags(), &cli.StringFlag{
				Name:  publicKeyFlag,
				Usage: "peer public key as printed by keygen --format hex",
			}),
			Action: runEncapsulate,
		},
		{
			Name:  "decapsulate",
			Usage: "Recover the receiver secret from a hex-packed ciphertext and private key",
			Flags: append(formatFlags(),
				&cli.StringFlag{
					Name:  ciphertextFlag,
					Usage: "ciphertext as printed by encapsulate --format hex",
				},
				&cli.StringFlag{
					Name:  privateKeyFlag,
					Usage: "private key as printed by keygen --format hex",
				},
			),
			Action: runDecapsulate,
		},
		{
			Name:   "exchange",
			Usage:  "Run key generation, encapsulation and decapsulation and compare the secrets",
			Flags:  formatFlags(),
			Action: runExchange,
		},
		{
			Name:  "bench",
			Usage: "Run many exchanges concurrently over shared tables",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "sessions",
					Usage: "number of exchanges",
					Value: 100,
				},
				&cli.IntFlag{
					Name:  "workers",
					Usage: "exchanges run at once",
					Value: 4,
				},
			},
			Action: runBench,
		},
	}
}

// settings loads the config file and applies flag overrides.
func settings(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String(configFlag))
	if err != nil {
		return config.Config{}, err
	}
	if c.IsSet(nFlag) {
		cfg.N = c.Int(nFlag)
	}
	if c.IsSet(qFlag) {
		cfg.Q = c.Uint64(qFlag)
	}
	if c.IsSet(sourceFlag) {
		cfg.Source = c.String(sourceFlag)
	}
	if c.IsSet(seedFlag) {
		cfg.Seed = c.String(seedFlag)
	}
	if c.IsSet(logger.LogLevelFlag) {
		cfg.LogLevel = c.String(logger.LogLevelFlag)
	}
	return cfg, nil
}
