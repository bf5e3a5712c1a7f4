package main

import (
	"context"
	"fmt"
	"shoptogether/internal/config"
	"shoptogether/pkg/logger"
	"shoptogether/pkg/token"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// JWTCommand constructs the 'jwt' subcommand that generates a signed RS256 JWT
// for a given subject (user ID) and TTL using the configured private key.
func JWTCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jwt",
		Short: "Generates JWT token for given user ID",
		Run: func(cmd *cobra.Command, args []string) {
			subject, _ := cmd.Flags().GetString("subject")
			TTL, _ := cmd.Flags().GetDuration("ttl")

			tokens, err := token.New(cfg.JWT.PrivateKey, cfg.JWT.PublicKey, cfg.JWT.TTL)
			if err != nil {
				logger.Fatal(context.Background(), "could not load JWT keys", zap.Error(err))
			}

			signed, _, err := tokens.Issue(subject, TTL)
			if err != nil {
				logger.Fatal(context.Background(), "could not sign JWT", zap.Error(err))
			}

			fmt.Println(signed) //nolint: forbidigo
		},
	}

	cmd.Flags().String("subject", "", "JWT subject (user ID)")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token TTL (e.g., 30s, 15m, 1h)")
	_ = cmd.MarkFlagRequired("subject")

	cmd.AddCommand(&cobra.Command{
		Use:   "keygen",
		Short: "Prints a new RSA private key for JWT_PRIVATE_KEY",
		Run: func(cmd *cobra.Command, args []string) {
			key, err := token.GeneratePrivateKeyPEM()
			if err != nil {
				logger.Fatal(context.Background(), "could not generate key", zap.Error(err))
			}

			fmt.Print(key) //nolint: forbidigo
		},
	})

	return cmd
}
