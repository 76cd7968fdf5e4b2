package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smallyu/go-nativekeys/internal/bip32"
	"github.com/smallyu/go-nativekeys/internal/crypto/hashes"
	"github.com/smallyu/go-nativekeys/internal/crypto/hexcodec"
)

func decodeArg(s string) ([]byte, error) {
	return hexcodec.DecodeAny(hexcodec.TrimPrefix(strings.TrimSpace(s)))
}

func (a *app) pubkeyCmd() *cobra.Command {
	var uncompressed bool
	cmd := &cobra.Command{
		Use:   "pubkey <private-key-hex>",
		Short: "Derive the secp256k1 public key of a private key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := a.utils.ToPublicKey(hexcodec.TrimPrefix(args[0]), !uncompressed)
			if err != nil {
				return err
			}
			a.println(hexcodec.Encode(pub))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&uncompressed, "uncompressed", "u", false, "print the 65-byte uncompressed form")
	return cmd
}

func (a *app) addressCmd() *cobra.Command {
	var (
		raw      bool
		checksum bool
	)
	cmd := &cobra.Command{
		Use:   "address <public-key-hex>",
		Short: "Derive the Ethereum address of a public key",
		Long: `Derive the Ethereum address of a public key.

By default the key may be 33-byte compressed, 65-byte uncompressed or 64-byte
raw X||Y. With --raw only the 64-byte form is accepted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := decodeArg(args[0])
			if err != nil {
				return err
			}
			if checksum {
				s, err := a.utils.ChecksumAddress(pub, !raw)
				if err != nil {
					return err
				}
				a.println(s)
				return nil
			}
			addr, err := a.utils.PubToAddress(pub, !raw)
			if err != nil {
				return err
			}
			a.println("0x" + hexcodec.Encode(addr))
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "require a 64-byte X||Y key")
	cmd.Flags().BoolVar(&checksum, "checksum", false, "print the EIP-55 mixed-case form")
	return cmd
}

func (a *app) keccakCmd() *cobra.Command {
	var text bool
	cmd := &cobra.Command{
		Use:   "keccak <hex|text>",
		Short: "Legacy Keccak-256 digest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				sum []byte
				err error
			)
			if text {
				sum = a.utils.Keccak256FromBytes([]byte(args[0]))
			} else {
				sum, err = a.utils.Keccak256(hexcodec.TrimPrefix(args[0]))
			}
			if err != nil {
				return err
			}
			a.println(hexcodec.Encode(sum))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&text, "text", "t", false, "hash the argument as UTF-8 text")
	return cmd
}

func (a *app) digestCmd() *cobra.Command {
	var alg string
	cmd := &cobra.Command{
		Use:   "digest <hex>",
		Short: "Digest with any registered hash algorithm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := decodeArg(args[0])
			if err != nil {
				return err
			}
			sum, err := hashes.Sum(a.utils.HashProvider(), alg, data)
			if err != nil {
				return err
			}
			a.println(hexcodec.Encode(sum))
			return nil
		},
	}
	cmd.Flags().StringVarP(&alg, "algorithm", "a", hashes.SHA512,
		fmt.Sprintf("one of %q", hashes.Algorithms()))
	return cmd
}

func (a *app) hmacCmd() *cobra.Command {
	var (
		keyHex string
		check  bool
	)
	cmd := &cobra.Command{
		Use:   "hmac --key <hex> <data-hex>",
		Short: "HMAC-SHA512 tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := decodeArg(keyHex)
			if err != nil {
				return fmt.Errorf("key: %w", err)
			}
			data, err := decodeArg(args[0])
			if err != nil {
				return fmt.Errorf("data: %w", err)
			}
			var mac []byte
			if check {
				if mac, err = a.utils.HmacSha512Checked(key, data); err != nil {
					return err
				}
			} else {
				mac = a.utils.HmacSha512(key, data)
			}
			a.println(hexcodec.Encode(mac))
			return nil
		},
	}
	cmd.Flags().StringVarP(&keyHex, "key", "k", "", "MAC key in hex")
	cmd.Flags().BoolVar(&check, "check", false, "cross-check against the hash backend")
	return cmd
}

func (a *app) ed25519Cmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ed25519 <seed-hex>",
		Short: "Derive the Ed25519 public key of a 32-byte seed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := decodeArg(args[0])
			if err != nil {
				return err
			}
			pub, err := a.utils.Ed25519PublicKeyFromBytes(seed)
			if err != nil {
				return err
			}
			a.println(hexcodec.Encode(pub))
			return nil
		},
	}
}

func (a *app) bip32Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bip32",
		Short: "BIP32 hierarchical deterministic keys",
	}
	cmd.AddCommand(a.bip32MnemonicCmd(), a.bip32DeriveCmd(), a.bip32InspectCmd())
	return cmd
}

func (a *app) bip32MnemonicCmd() *cobra.Command {
	var words int
	cmd := &cobra.Command{
		Use:   "mnemonic",
		Short: "Generate a BIP39 mnemonic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if words%3 != 0 {
				return fmt.Errorf("word count %d is not a multiple of 3", words)
			}
			m, err := bip32.NewMnemonic(words / 3 * 32)
			if err != nil {
				return err
			}
			a.println(m)
			return nil
		},
	}
	cmd.Flags().IntVarP(&words, "words", "w", 12, "12, 15, 18, 21 or 24")
	return cmd
}

func (a *app) bip32DeriveCmd() *cobra.Command {
	var (
		mnemonic   string
		passphrase string
		seedHex    string
		path       string
	)
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive an extended key from a mnemonic or seed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				seed []byte
				err  error
			)
			switch {
			case mnemonic != "" && seedHex != "":
				return errors.New("--mnemonic and --seed are mutually exclusive")
			case mnemonic != "":
				seed, err = bip32.SeedFromMnemonic(mnemonic, passphrase)
			case seedHex != "":
				seed, err = decodeArg(seedHex)
			default:
				return errors.New("one of --mnemonic or --seed is required")
			}
			if err != nil {
				return err
			}
			defer clear(seed)

			master, err := a.utils.Keychain().NewMaster(seed)
			if err != nil {
				return err
			}
			node, err := master.DerivePath(path)
			if err != nil {
				return err
			}
			return a.printNode(node)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&mnemonic, "mnemonic", "m", "", "BIP39 mnemonic")
	f.StringVar(&passphrase, "passphrase", "", "BIP39 passphrase")
	f.StringVar(&seedHex, "seed", "", "raw seed in hex (16 to 64 bytes)")
	f.StringVarP(&path, "path", "p", "m", "derivation path, e.g. m/44'/60'/0'/0/0")
	return cmd
}

func (a *app) bip32InspectCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "inspect <xprv|xpub>",
		Short: "Decode an extended key and optionally derive below it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := a.utils.Keychain().Parse(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			if k, err = k.DerivePath(path); err != nil {
				return err
			}
			return a.printNode(k)
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "m", "relative derivation path")
	return cmd
}

func (a *app) printNode(k *bip32.ExtendedKey) error {
	pub, err := k.PublicKey()
	if err != nil {
		return err
	}
	addr, err := a.utils.ChecksumAddress(pub, true)
	if err != nil {
		return err
	}
	fp, err := k.Fingerprint()
	if err != nil {
		return err
	}

	a.println("depth:      ", k.Depth)
	a.println("child:      ", k.ChildNumber)
	a.println("fingerprint:", hexcodec.Encode(fp[:]))
	if k.IsPrivate() {
		a.println("xprv:       ", k.String())
		priv, err := k.PrivateKey()
		if err != nil {
			return err
		}
		a.println("private:    ", hexcodec.Encode(priv))
		clear(priv)
	}
	xpub, err := k.Neuter()
	if err != nil {
		return err
	}
	a.println("xpub:       ", xpub.String())
	a.println("public:     ", hexcodec.Encode(pub))
	a.println("address:    ", addr)
	return nil
}
