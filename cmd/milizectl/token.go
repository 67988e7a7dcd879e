// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/milize/internal/platform/constants"
	"github.com/taibuivan/milize/internal/platform/sec"
	"github.com/taibuivan/milize/internal/platform/validate"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Manage bearer tokens for the command surface",
	}

	var (
		name      string
		authority string
		ttl       time.Duration
	)
	mint := &cobra.Command{
		Use:   "mint <discord-id>",
		Short: "Sign a token for a collaborator or the chat front end",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			validator := &validate.Validator{}
			validator.Snowflake("discord-id", args[0])
			if err := validator.Err(); err != nil {
				return err
			}
			level, err := sec.ParseAuthority(authority)
			if err != nil {
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			tokens, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
			if err != nil {
				return err
			}

			token, err := tokens.Mint(args[0], name, level, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	mint.Flags().StringVar(&name, "name", "", "Display name carried in the token")
	mint.Flags().StringVar(&authority, "authority", sec.AuthorityMember.String(), "member, project_manager or owner")
	mint.Flags().DurationVar(&ttl, "ttl", constants.ServiceTokenTTL, "Token lifetime")
	tokenCmd.AddCommand(mint)

	return tokenCmd
}
