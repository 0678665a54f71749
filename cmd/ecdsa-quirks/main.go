// ecdsa-quirks generates a secp256k1 key pair and one signature that is valid
// for two different messages.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/inconshreveable/log15"
	"github.com/mahdiidarabi/ecdsa-quirks/pkg/ecdsaquirks"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var (
	Message1Flag = &cli.StringFlag{
		Name:    "message1",
		Aliases: []string{"m1"},
		Usage:   "First message to sign",
		EnvVars: []string{"QUIRKS_MESSAGE1"},
	}
	Message2Flag = &cli.StringFlag{
		Name:    "message2",
		Aliases: []string{"m2"},
		Usage:   "Second message to sign",
		EnvVars: []string{"QUIRKS_MESSAGE2"},
	}
	EIP191Flag = &cli.BoolFlag{
		Name:    "eip191",
		Usage:   "Hash messages with the Ethereum signed message prefix",
		EnvVars: []string{"QUIRKS_EIP191"},
	}
	SeedFlag = &cli.StringFlag{
		Name:  "seed",
		Usage: "Derive the nonce from this seed and both messages (reproducible output)",
	}
	JSONFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print the result as a JSON bundle",
	}
	InputFlag = &cli.StringFlag{
		Name:     "input",
		Aliases:  []string{"i"},
		Usage:    "Path to a JSON bundle (object or array)",
		Required: true,
	}
	VerbosityFlag = &cli.IntFlag{
		Name:    "verbosity",
		Usage:   "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug",
		Value:   int(log15.LvlWarn),
		EnvVars: []string{"QUIRKS_VERBOSITY"},
	}
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "ecdsa-quirks",
		Usage: "Generate the same ECDSA signature for two different messages",
		Flags: []cli.Flag{
			Message1Flag,
			Message2Flag,
			EIP191Flag,
			SeedFlag,
			JSONFlag,
			VerbosityFlag,
		},
		Action: quirkCmd,
		Commands: []*cli.Command{
			{
				Name:      "verify",
				Usage:     "Check that a bundle's signatures recover to its address",
				ArgsUsage: "--input <file>",
				Flags:     []cli.Flag{InputFlag, VerbosityFlag},
				Action:    verifyCmd,
			},
			{
				Name:      "expose",
				Usage:     "Recover the private key of a bundle from its two signatures",
				ArgsUsage: "--input <file>",
				Flags:     []cli.Flag{InputFlag, VerbosityFlag},
				Action:    exposeCmd,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func quirkCmd(ctx *cli.Context) error {
	message1, message2 := ctx.String(Message1Flag.Name), ctx.String(Message2Flag.Name)
	if message1 == "" || message2 == "" {
		cli.ShowAppHelp(ctx)
		fmt.Fprintln(ctx.App.Writer, "\nSpecify both messages to generate the signature for")
		return ecdsaquirks.ErrMissingMessage
	}

	client := ecdsaquirks.NewClient().
		WithHashMode(ecdsaquirks.HashModeFor(ctx.Bool(EIP191Flag.Name))).
		WithLogger(newLogger(ctx))
	if seed := ctx.String(SeedFlag.Name); seed != "" {
		client = client.WithNonceSource(ecdsaquirks.NewSeededNonceSource([]byte(seed)))
	}

	res, err := client.Quirk(ctx.Context, message1, message2)
	if err != nil {
		return err
	}

	if ctx.Bool(JSONFlag.Name) {
		return ecdsaquirks.NewBundle(res).WriteJSON(ctx.App.Writer)
	}
	return printQuirked(ctx.App.Writer, res)
}

func verifyCmd(ctx *cli.Context) error {
	parser := &ecdsaquirks.JSONParser{}
	bundles, err := parser.ParseBundles(ctx.String(InputFlag.Name))
	if err != nil {
		return err
	}
	if len(bundles) == 0 {
		return errors.New("no bundles found")
	}

	client := ecdsaquirks.NewClient().WithLogger(newLogger(ctx))
	w := ctx.App.Writer
	for i, bundle := range bundles {
		if len(bundles) > 1 {
			fmt.Fprintf(w, "Bundle %d\n", i)
		}
		if err := client.Verify(ctx.Context, bundle); err != nil {
			return errors.Wrapf(err, "bundle %d", i)
		}
		fmt.Fprintf(w, "Address: %s\n", bundle.Address)
		fmt.Fprintln(w, "Signature1: OK")
		fmt.Fprintln(w, "Signature2: OK")
	}
	return nil
}

func exposeCmd(ctx *cli.Context) error {
	parser := &ecdsaquirks.JSONParser{}
	bundles, err := parser.ParseBundles(ctx.String(InputFlag.Name))
	if err != nil {
		return err
	}
	if len(bundles) == 0 {
		return errors.New("no bundles found")
	}

	client := ecdsaquirks.NewClient().WithLogger(newLogger(ctx))
	w := ctx.App.Writer
	for i, bundle := range bundles {
		exposure, err := client.Expose(ctx.Context, bundle)
		if err != nil {
			return errors.Wrapf(err, "bundle %d", i)
		}
		fmt.Fprintf(w, "Address: %s\n", bundle.Address)
		fmt.Fprintf(w, "Private key: %s\n", hexutil.Encode(math.PaddedBigBytes(exposure.PrivateKey, 32)))
		fmt.Fprintf(w, "Relation: %s\n", exposure.Relation.Name)
	}
	return nil
}

// printQuirked writes the human readable form of a result.
func printQuirked(w io.Writer, res *ecdsaquirks.Result) error {
	_, err := fmt.Fprintf(w, "Private key: %s\nAddress: %s\n\nMessage1: %s\nSignature1: %s\n\nMessage2: %s\nSignature2: %s\n",
		res.PrivateKeyHex(),
		res.Address.Hex(),
		res.Message1,
		res.Signature1.Hex(),
		res.Message2,
		res.Signature2.Hex(),
	)
	return err
}

func newLogger(ctx *cli.Context) log15.Logger {
	logger := log15.New("cmd", ctx.App.Name)
	lvl := log15.Lvl(ctx.Int(VerbosityFlag.Name))
	logger.SetHandler(log15.LvlFilterHandler(lvl, log15.StreamHandler(ctx.App.ErrWriter, log15.TerminalFormat())))
	return logger
}
