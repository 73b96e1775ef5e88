package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"futures-assist/internal/auth"
)

var genhashCmd = &cobra.Command{
	Use:   "genhash <password>",
	Short: "Generate a bcrypt hash for the operators table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}
