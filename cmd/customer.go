package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var customerArgs struct {
	email, password, first, last string
}

var customerCreateCmd = &cobra.Command{
	Use:   "customer:create",
	Short: "Create a customer account",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		app, err := Bootstrap(ctx)
		if err != nil {
			return err
		}
		defer app.Close()
		c, err := app.Deps.Sessions.Register(ctx, customerArgs.email, customerArgs.password, customerArgs.first, customerArgs.last)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "customer %d created: %s\n", c.CustomerID, c.Email)
		return nil
	},
}

func init() {
	f := customerCreateCmd.Flags()
	f.StringVar(&customerArgs.email, "email", "", "Email (required)")
	f.StringVar(&customerArgs.password, "password", "", "Password (required)")
	f.StringVar(&customerArgs.first, "first-name", "", "First name")
	f.StringVar(&customerArgs.last, "last-name", "", "Last name")
	_ = customerCreateCmd.MarkFlagRequired("email")
	_ = customerCreateCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(customerCreateCmd)
}
