package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/taurusgroup/dilizium/pkg/hash"
	"github.com/taurusgroup/dilizium/protocols/dilizium"
)

func newRootCommand() *cobra.Command {
	c := &cobra.Command{
		Use:           "dilizium",
		Short:         "Two-party lattice signatures",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	addGlobalFlags(c.PersistentFlags())
	c.AddCommand(
		keygenCommand(),
		signCommand(),
		verifyCommand(),
		benchCommand(),
	)
	return c
}

func keygenCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "keygen",
		Short: "Derives the joint public key from two seeds, generating missing seeds",
		RunE:  keygenFunc,
	}
	addSeedFlags(c.Flags())
	return c
}

func keygenFunc(c *cobra.Command, _ []string) error {
	env, err := parseEnvironment(c)
	if err != nil {
		return err
	}
	defer env.close()

	flags := c.Flags()
	if err = fillSeeds(flags); err != nil {
		return err
	}

	start := time.Now()
	k1, _, err := env.keys(flags)
	if err != nil {
		return err
	}
	env.log.Info().Dur("took", time.Since(start)).Msg("keygen")

	h := hash.New()
	if err = h.WriteAny(k1.PublicKey()); err != nil {
		return err
	}
	seed1, _ := flags.GetString(Seed1Key)
	seed2, _ := flags.GetString(Seed2Key)
	fmt.Fprintf(c.OutOrStdout(), "seed1: %s\nseed2: %s\npublic key: %x\n", seed1, seed2, h.Sum()[:16])
	return nil
}

func signCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "sign",
		Short: "Runs the signing protocol between both parties and writes the signature",
		RunE:  signFunc,
	}
	flags := c.Flags()
	addSeedFlags(flags)
	flags.String(MessageKey, "", "Message to sign")
	flags.String(SignatureKey, "signature.cbor", "File the signature is written to")
	return c
}

func signFunc(c *cobra.Command, _ []string) error {
	env, err := parseEnvironment(c)
	if err != nil {
		return err
	}
	defer env.close()

	flags := c.Flags()
	k1, k2, err := env.keys(flags)
	if err != nil {
		return err
	}
	message, err := flags.GetString(MessageKey)
	if err != nil {
		return err
	}
	path, err := flags.GetString(SignatureKey)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := dilizium.SignLocal(c.Context(), k1, k2, []byte(message),
		dilizium.WithParams(env.params),
		dilizium.WithPool(env.pool),
		dilizium.WithLogger(env.log),
	)
	if err != nil {
		return err
	}
	env.log.Info().Dur("took", time.Since(start)).Int("rejections", result.Signature.Rejections).Msg("sign")

	data, err := result.Signature.MarshalBinary()
	if err != nil {
		return err
	}
	if err = writeFile(path, data); err != nil {
		return err
	}
	fmt.Fprintf(c.OutOrStdout(), "signed after %d rejections, %d bytes written to %s\n", result.Signature.Rejections, len(data), path)
	return nil
}

func verifyCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "verify",
		Short: "Verifies a signature under the joint public key of two seeds",
		RunE:  verifyFunc,
	}
	flags := c.Flags()
	addSeedFlags(flags)
	flags.String(MessageKey, "", "Signed message")
	flags.String(SignatureKey, "signature.cbor", "File the signature is read from")
	return c
}

func verifyFunc(c *cobra.Command, _ []string) error {
	env, err := parseEnvironment(c)
	if err != nil {
		return err
	}
	defer env.close()

	flags := c.Flags()
	k1, _, err := env.keys(flags)
	if err != nil {
		return err
	}
	message, err := flags.GetString(MessageKey)
	if err != nil {
		return err
	}
	path, err := flags.GetString(SignatureKey)
	if err != nil {
		return err
	}
	data, err := readFile(path)
	if err != nil {
		return err
	}

	var sig dilizium.Signature
	if err = sig.UnmarshalBinary(data); err != nil {
		return err
	}
	if !dilizium.Verify(env.params, k1.PublicKey(), []byte(message), &sig) {
		return errInvalidSignature
	}
	fmt.Fprintln(c.OutOrStdout(), "valid signature")
	return nil
}
