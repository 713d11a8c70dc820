package cmd

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"
)

// InspectCommand prints key metadata without decrypting anything
type InspectCommand struct {
	cli *Cli
	cmd *cobra.Command

	key string
	pub string
}

type publicKeyInfo struct {
	Curve       string `json:"curve"`
	Fingerprint string `json:"fingerprint"`
	PointSize   int    `json:"point_size"`
	X           string `json:"x"`
	Y           string `json:"y"`
}

// NewInspectCommand new inspect cmd
func NewInspectCommand(cli *Cli) *cobra.Command {
	i := &InspectCommand{cli: cli}
	i.cmd = &cobra.Command{
		Use:     "inspect",
		Short:   "Show keystore metadata or public key details.",
		Example: "eccrypt inspect --key key.json",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return i.inspect(cmd)
		},
	}
	i.cmd.Flags().StringVar(&i.key, "key", "", "keystore path")
	i.cmd.Flags().StringVar(&i.pub, "pub", "", "public key file")
	return i.cmd
}

func (i *InspectCommand) inspect(cmd *cobra.Command) error {
	var out interface{}

	switch {
	case i.key != "":
		store, err := i.cli.KeyStore(i.key)
		if err != nil {
			return err
		}
		meta, err := store.GetMetadata()
		if err != nil {
			return err
		}
		out = meta
	case i.pub != "":
		key, err := readPublicKey(i.pub)
		if err != nil {
			return err
		}
		out = publicKeyInfo{
			Curve:       key.Curve().Name(),
			Fingerprint: key.Fingerprint(),
			PointSize:   key.Curve().PointSize(),
			X:           key.PublicPoint().X().Text(16),
			Y:           key.PublicPoint().Y().Text(16),
		}
	default:
		return errors.New("one of --key or --pub is required")
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func init() {
	AddCommand(NewInspectCommand)
}
