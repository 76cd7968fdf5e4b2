package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/smallyu/go-nativekeys/internal/config"
	"github.com/smallyu/go-nativekeys/internal/crypto/curves"
	"github.com/smallyu/go-nativekeys/internal/crypto/hashes"
	"github.com/smallyu/go-nativekeys/pkg/nativeutils"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	configPath string
	v          *viper.Viper
	utils      *nativeutils.Utils
	out        io.Writer
}

// newRootCmd builds the command tree. The returned func releases what the
// invocation opened and must run after Execute, whether or not it failed.
func newRootCmd(out io.Writer) (*cobra.Command, func()) {
	a := &app{v: config.New(), out: out}

	root := &cobra.Command{
		Use:   "nativekeys",
		Short: "secp256k1 and Ed25519 key utilities",
		Long: `nativekeys derives public keys, Ethereum addresses, Keccak-256 digests,
HMAC-SHA512 tags and BIP32 extended keys.

Hex arguments may carry a 0x prefix. Settings come from --config, then
NATIVEKEYS_* environment variables, then the flags below.

Examples:
  nativekeys pubkey 0x0000000000000000000000000000000000000000000000000000000000000001
  nativekeys address --checksum 0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798
  nativekeys --curve btcec bip32 derive --mnemonic "..." --path "m/44'/60'/0'/0/0"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (yaml, json or toml)")
	pf.String("curve", curves.DefaultBackend, fmt.Sprintf("curve backend %v", curves.Backends()))
	pf.String("hash", hashes.DefaultBackend, fmt.Sprintf("hash backend %v", hashes.Backends()))
	pf.String("log-level", "", "log level: debug|info|warn|error")
	pf.String("log-format", "", "log format: console|logfmt|json")

	for key, flag := range map[string]string{
		"curve":      "curve",
		"hash":       "hash",
		"log.level":  "log-level",
		"log.format": "log-format",
	} {
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.SetOut(out)
	root.AddCommand(
		a.pubkeyCmd(),
		a.addressCmd(),
		a.keccakCmd(),
		a.digestCmd(),
		a.hmacCmd(),
		a.ed25519Cmd(),
		a.bip32Cmd(),
	)
	return root, a.close
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Read(a.v, a.configPath)
	if err != nil {
		return err
	}
	a.utils, err = nativeutils.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init %s: %w", cmd.Name(), err)
	}
	return nil
}

func (a *app) close() {
	if a.utils != nil {
		_ = a.utils.Close()
	}
}

func (a *app) println(v ...any) {
	fmt.Fprintln(a.out, v...)
}
