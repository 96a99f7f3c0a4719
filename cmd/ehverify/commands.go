package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/DeckerSU/equihashverify/pkg/core/consensus"
	"github.com/DeckerSU/equihashverify/pkg/core/equihash"
	"github.com/DeckerSU/equihashverify/pkg/core/types"
	"github.com/DeckerSU/equihashverify/pkg/rpc"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

var verifyCommand = cli.Command{
	Name:      "verify",
	Usage:     "check one header/solution pair",
	ArgsUsage: " ",
	Flags: []cli.Flag{
		cli.StringFlag{Name: "header", Usage: "140-byte block header, hex"},
		cli.StringFlag{Name: "solution", Usage: "packed solution, hex"},
		cli.UintFlag{Name: "n", Usage: "Equihash n (default from config)"},
		cli.UintFlag{Name: "k", Usage: "Equihash k (default from config)"},
	},
	Action: runVerify,
}

var paramsCommand = cli.Command{
	Name:   "params",
	Usage:  "list the supported parameter sets",
	Action: runParams,
}

var serveCommand = cli.Command{
	Name:  "serve",
	Usage: "run the HTTP verification API",
	Flags: []cli.Flag{
		cli.StringFlag{Name: "addr", Usage: "listen address (default from config)"},
	},
	Action: runServe,
}

func runVerify(c *cli.Context) error {
	cfg := loadedConfig(c)

	header, err := decodeHexFlag("header", c.String("header"))
	if err != nil {
		return err
	}
	solution, err := decodeHexFlag("solution", c.String("solution"))
	if err != nil {
		return err
	}

	n, k := cfg.Equihash.N, cfg.Equihash.K
	if c.IsSet("n") || c.IsSet("k") {
		if !c.IsSet("n") || !c.IsSet("k") {
			return fmt.Errorf("--n and --k must be given together")
		}
		var err error
		if n, err = uint32Flag(c, "n"); err != nil {
			return err
		}
		if k, err = uint32Flag(c, "k"); err != nil {
			return err
		}
	}

	logHeader(header)

	v, err := equihash.NewVerifier(n, k)
	if err != nil {
		return err
	}

	valid := true
	if err := v.Check(header, solution); err != nil {
		logrus.WithError(err).Debug("Solution rejected")
		valid = false
	}

	fmt.Fprintln(c.App.Writer, valid)
	if !valid {
		return cli.NewExitError("", 1)
	}
	return nil
}

func runParams(c *cli.Context) error {
	def, err := loadedConfig(c).Params()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "N\tK\tCOLLISION BITS\tINDICES\tINDEX BITS\tHASH OUTPUT\tSOLUTION BYTES\t")
	for _, p := range equihash.SupportedParams() {
		mark := ""
		if p.Set == def.Set {
			mark = "(default)"
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			p.N, p.K, p.CollisionBitLength, p.IndicesPerSolution, p.IndexBitLength,
			p.HashOutput, p.SolutionWidth, mark)
	}
	return w.Flush()
}

func runServe(c *cli.Context) error {
	cfg := loadedConfig(c)
	if addr := c.String("addr"); addr != "" {
		cfg.RPC.Addr = addr
	}

	log := logrus.StandardLogger()
	registry, err := consensus.NewRegistry(cfg, log)
	if err != nil {
		return err
	}
	defer registry.Close()

	server := rpc.NewServer(registry, cfg.Workers, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.RPC.Addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	return <-errCh
}

// uint32Flag reads a uint flag that must fit in 32 bits.
func uint32Flag(c *cli.Context, name string) (uint32, error) {
	v := c.Uint(name)
	if uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("--%s: %d does not fit in 32 bits", name, v)
	}
	return uint32(v), nil
}

// decodeHexFlag decodes a required hex flag, accepting an optional 0x prefix.
func decodeHexFlag(name, value string) ([]byte, error) {
	if value == "" {
		return nil, fmt.Errorf("--%s is required", name)
	}
	value = strings.TrimPrefix(strings.TrimPrefix(value, "0x"), "0X")
	b, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return b, nil
}

func logHeader(header []byte) {
	if !logrus.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	h, err := types.ParseHeader(header)
	if err != nil {
		logrus.WithField("len", len(header)).Debug("Header is not in block layout")
		return
	}
	logrus.WithFields(logrus.Fields{
		"version": h.Version,
		"prev":    h.PrevBlockHash,
		"time":    h.Timestamp(),
		"bits":    fmt.Sprintf("%08x", h.Bits),
		"nonce":   h.Nonce,
	}).Debug("Verifying header")
}
