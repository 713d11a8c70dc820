package cmd

import (
	"github.com/spf13/cobra"
)

// EncryptCommand encrypts to a public key
type EncryptCommand struct {
	cli *Cli
	cmd *cobra.Command

	pub string
	in  string
	out string
}

// NewEncryptCommand new encrypt cmd
func NewEncryptCommand(cli *Cli) *cobra.Command {
	e := &EncryptCommand{cli: cli}
	e.cmd = &cobra.Command{
		Use:     "encrypt",
		Short:   "Encrypt a file to a public key. The output is not authenticated.",
		Example: "eccrypt encrypt --pub key.pub --in message.txt --out message.enc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.encrypt(cmd)
		},
	}
	e.cmd.Flags().StringVar(&e.pub, "pub", "", "recipient public key file")
	e.cmd.Flags().StringVar(&e.in, "in", "-", "plaintext path, - for stdin")
	e.cmd.Flags().StringVar(&e.out, "out", "-", "ciphertext path, - for stdout")
	_ = e.cmd.MarkFlagRequired("pub")
	return e.cmd
}

func (e *EncryptCommand) encrypt(cmd *cobra.Command) error {
	recipient, err := readPublicKey(e.pub)
	if err != nil {
		return err
	}

	cr, err := e.cli.Cryptor(recipient.Curve().Name())
	if err != nil {
		return err
	}

	plaintext, err := e.cli.readInput(cmd, e.in)
	if err != nil {
		return err
	}

	ciphertext, err := cr.Encrypt(plaintext, recipient)
	if err != nil {
		return err
	}

	return e.cli.writeOutput(cmd, e.out, ciphertext, 0644)
}

func init() {
	AddCommand(NewEncryptCommand)
}
