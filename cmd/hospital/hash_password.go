package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hospitalmgmt/hospital-api/internal/core/credential"
)

func newHashPasswordCmd() *cobra.Command {
	var (
		password string
		cost     int
	)
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print the bcrypt digest of a password",
		Long: "Print the bcrypt digest of a password using BCRYPT_COST. " +
			"Without --password the first line of stdin is read.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("cost") {
				cfg, _, err := bootstrap(cmd.Context())
				if err != nil {
					return err
				}
				cost = cfg.Session.BcryptCost
			}
			if password == "" {
				line, err := readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = line
			}
			if password == "" {
				return errors.New("password is empty")
			}

			encoder, err := credential.NewBcryptEncoder(cost)
			if err != nil {
				return err
			}
			digest, err := encoder.Hash(password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), digest)
			return err
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "plaintext to hash (read from stdin when empty)")
	cmd.Flags().IntVar(&cost, "cost", credential.DefaultCost, "bcrypt cost, overrides BCRYPT_COST")
	return cmd
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
