package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"rlwe-kex/pkg/config"
	"rlwe-kex/pkg/encoding"
	"rlwe-kex/pkg/kex"
	"rlwe-kex/pkg/logger"
	"rlwe-kex/pkg/ntt"
	"rlwe-kex/pkg/params"
	"rlwe-kex/pkg/poly"
)

const (
	formatJSON = "json"
	formatHex  = "hex"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type paramsReport struct {
	N        int    `json:"n"`
	Q        uint64 `json:"q"`
	Stages   int    `json:"stages"`
	WordSize int    `json:"wordSize"`
}

type keygenReport struct {
	PrivateKey interface{} `json:"privateKey"`
	PublicKey  interface{} `json:"publicKey"`
}

type encapsulateReport struct {
	Ciphertext   interface{} `json:"ciphertext"`
	SenderSecret interface{} `json:"senderSecret"`
}

type decapsulateReport struct {
	ReceiverSecret interface{} `json:"receiverSecret"`
}

type exchangeReport struct {
	Session        string      `json:"session"`
	PrivateKey     interface{} `json:"privateKey"`
	PublicKey      interface{} `json:"publicKey"`
	Ciphertext     interface{} `json:"ciphertext"`
	SenderSecret   interface{} `json:"senderSecret"`
	ReceiverSecret interface{} `json:"receiverSecret"`
	Match          bool        `json:"match"`
}

type benchReport struct {
	Sessions int    `json:"sessions"`
	Workers  int    `json:"workers"`
	Matched  int    `json:"matched"`
	Elapsed  string `json:"elapsed"`
}

// transcript is one full run of the protocol.
type transcript struct {
	keys           *kex.KeyPair
	enc            *kex.Encapsulation
	receiverSecret poly.Poly
	match          bool
}

// setup validates the parameters before any table or key is built.
func setup(c *cli.Context) (config.Config, params.Params, *zerolog.Logger, error) {
	cfg, err := settings(c)
	if err != nil {
		return config.Config{}, params.Params{}, nil, err
	}
	p, err := cfg.Params()
	if err != nil {
		return config.Config{}, params.Params{}, nil, err
	}
	log := logger.Create(cfg.LogLevel)
	log.Debug().Int("n", p.N).Uint64("q", p.Q).Str("source", cfg.Source).Msg("parameters validated")
	return cfg, p, log, nil
}

// tablesFor shares the process-wide tables when p is the default set.
func tablesFor(p params.Params) *ntt.Tables {
	if p == params.Default() {
		return ntt.DefaultTables()
	}
	return ntt.NewTables(p)
}

func newScheme(cfg config.Config, engine *ntt.Engine, log *zerolog.Logger) (*kex.Scheme, error) {
	src, err := cfg.NewSource(engine.Params().Q)
	if err != nil {
		return nil, err
	}
	return kex.New(engine, src, log), nil
}

// schemeFor validates the format and builds a scheme for the command.
func schemeFor(c *cli.Context) (*kex.Scheme, func(poly.Poly) interface{}, *zerolog.Logger, error) {
	cfg, p, log, err := setup(c)
	if err != nil {
		return nil, nil, nil, err
	}
	s, err := newScheme(cfg, ntt.NewEngine(tablesFor(p)), log)
	if err != nil {
		return nil, nil, nil, err
	}
	enc, err := arrayEncoder(c.String(formatFlag), s)
	if err != nil {
		return nil, nil, nil, err
	}
	return s, enc, log, nil
}

func runExchangeOnce(s *kex.Scheme) (*transcript, error) {
	keys, err := s.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	enc, err := s.Encapsulate(keys.Public())
	if err != nil {
		return nil, err
	}
	secret, err := s.Decapsulate(enc.Ciphertext, keys.PrivateKey)
	if err != nil {
		return nil, err
	}
	return &transcript{
		keys:           keys,
		enc:            enc,
		receiverSecret: secret,
		match:          poly.ConstantTimeEqual(enc.SharedSecret, secret),
	}, nil
}

func runParams(c *cli.Context) error {
	_, p, _, err := setup(c)
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, paramsReport{
		N:        p.N,
		Q:        p.Q,
		Stages:   p.LogN(),
		WordSize: encoding.WordSize(p.Q),
	})
}

func runKeygen(c *cli.Context) error {
	s, enc, _, err := schemeFor(c)
	if err != nil {
		return err
	}
	keys, err := s.GenerateKeyPair()
	if err != nil {
		return err
	}
	defer keys.Destroy()
	return writeJSON(c.App.Writer, keygenReport{
		PrivateKey: enc(keys.PrivateKey),
		PublicKey:  enc(keys.PublicKey),
	})
}

func runEncapsulate(c *cli.Context) error {
	s, enc, _, err := schemeFor(c)
	if err != nil {
		return err
	}
	pk, err := decodeHex(s, c.String(publicKeyFlag), publicKeyFlag)
	if err != nil {
		return err
	}
	e, err := s.Encapsulate(pk)
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, encapsulateReport{
		Ciphertext:   enc(e.Ciphertext),
		SenderSecret: enc(e.SharedSecret),
	})
}

func runDecapsulate(c *cli.Context) error {
	s, enc, _, err := schemeFor(c)
	if err != nil {
		return err
	}
	ct, err := decodeHex(s, c.String(ciphertextFlag), ciphertextFlag)
	if err != nil {
		return err
	}
	sk, err := decodeHex(s, c.String(privateKeyFlag), privateKeyFlag)
	if err != nil {
		return err
	}
	defer sk.Zero()
	secret, err := s.Decapsulate(ct, sk)
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, decapsulateReport{ReceiverSecret: enc(secret)})
}

func runExchange(c *cli.Context) error {
	cfg, p, log, err := setup(c)
	if err != nil {
		return err
	}
	id := uuid.New().String()
	sessionLog := log.With().Str("session", id).Logger()
	s, err := newScheme(cfg, ntt.NewEngine(tablesFor(p)), &sessionLog)
	if err != nil {
		return err
	}
	enc, err := arrayEncoder(c.String(formatFlag), s)
	if err != nil {
		return err
	}
	t, err := runExchangeOnce(s)
	if err != nil {
		return err
	}
	defer t.keys.Destroy()
	sessionLog.Info().Bool("match", t.match).Msg("exchange complete")
	return writeJSON(c.App.Writer, exchangeReport{
		Session:        id,
		PrivateKey:     enc(t.keys.PrivateKey),
		PublicKey:      enc(t.keys.PublicKey),
		Ciphertext:     enc(t.enc.Ciphertext),
		SenderSecret:   enc(t.enc.SharedSecret),
		ReceiverSecret: enc(t.receiverSecret),
		Match:          t.match,
	})
}

func runBench(c *cli.Context) error {
	cfg, p, log, err := setup(c)
	if err != nil {
		return err
	}
	sessions := c.Int("sessions")
	workers := c.Int("workers")
	if sessions <= 0 || workers <= 0 {
		return errors.Errorf("sessions (%d) and workers (%d) must be positive", sessions, workers)
	}

	// One engine for every session: the tables are read-only.
	engine := ntt.NewEngine(tablesFor(p))
	matched := make([]bool, sessions)

	var g errgroup.Group
	g.SetLimit(workers)
	start := time.Now()
	for i := 0; i < sessions; i++ {
		i := i
		g.Go(func() error {
			sessionCfg := cfg
			if cfg.Seed != "" {
				sessionCfg.Seed = fmt.Sprintf("%s/%d", cfg.Seed, i)
			}
			sessionLog := log.With().Str("session", uuid.New().String()).Int("index", i).Logger()
			s, err := newScheme(sessionCfg, engine, &sessionLog)
			if err != nil {
				return err
			}
			t, err := runExchangeOnce(s)
			if err != nil {
				return errors.Wrapf(err, "session %d", i)
			}
			t.keys.Destroy()
			matched[i] = t.match
			sessionLog.Debug().Bool("match", t.match).Msg("exchange complete")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	count := 0
	for _, m := range matched {
		if m {
			count++
		}
	}
	log.Info().Int("sessions", sessions).Int("matched", count).Dur("elapsed", elapsed).Msg("bench complete")
	return writeJSON(c.App.Writer, benchReport{
		Sessions: sessions,
		Workers:  workers,
		Matched:  count,
		Elapsed:  elapsed.String(),
	})
}

// arrayEncoder returns how polynomials appear in reports: JSON arrays, or
// hex strings of the scheme's fixed-width packing.
func arrayEncoder(format string, s *kex.Scheme) (func(poly.Poly) interface{}, error) {
	switch format {
	case formatJSON, "":
		return func(p poly.Poly) interface{} { return p }, nil
	case formatHex:
		return func(p poly.Poly) interface{} {
			return hex.EncodeToString(s.Marshal(p))
		}, nil
	default:
		return nil, errors.Errorf("unknown format %q", format)
	}
}

// decodeHex reads one polynomial in the hex form arrayEncoder writes.
func decodeHex(s *kex.Scheme, value, flag string) (poly.Poly, error) {
	if value == "" {
		return nil, errors.Errorf("--%s is required", flag)
	}
	bs, err := hex.DecodeString(value)
	if err != nil {
		return nil, errors.Wrapf(encoding.ErrEncoding, "--%s: %v", flag, err)
	}
	p, err := s.Unmarshal(bs)
	if err != nil {
		return nil, errors.Wrapf(err, "--%s", flag)
	}
	return p, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "writing report")
}
