// Package claims holds CLI commands for inspecting and seeding the claims
// database outside the web server.
package claims

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/detachd/portal/internal/errors"
	"github.com/detachd/portal/internal/models"
	"github.com/detachd/portal/internal/random"
	"github.com/detachd/portal/internal/repositories"
	"github.com/detachd/portal/internal/sqlite"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "claims",
	Title: "Claims commands",
}

const seedUserEmail = "demo@detachd.example"

func openDatabase(ctx context.Context) (*sqlite.Database, *slog.Logger, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	url, ok := os.LookupEnv("DETACHD_SQLITE_URL")
	if !ok {
		url = "./detachd.sqlite"
	}
	dbs, err := sqlite.NewDatabase(ctx, url, logger)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open database", slog.String("url", url))
	}
	return dbs, logger, nil
}

var List = &cobra.Command{
	Use:     "list",
	Short:   "List all claims in the database",
	GroupID: Group.ID,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		dbs, logger, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = dbs.Close()
		}()

		records, err := repositories.NewClaimRepository(dbs, logger).ListAll(ctx)
		if err != nil {
			return errors.Wrap(err, "list claims")
		}

		writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(writer, "NUMBER\tPOLICYHOLDER\tTYPE\tSTATUS\tPRIORITY\tAMOUNT")
		for _, record := range records {
			_, _ = fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%.2f\n",
				record.ClaimNumber, record.PolicyholderName, record.ClaimType,
				record.Status, record.Priority, record.AmountClaimed)
		}
		return errors.Wrap(writer.Flush(), "flush output")
	},
}

var Seed = &cobra.Command{
	Use:     "seed",
	Short:   "Seed the database with demonstration claims",
	GroupID: Group.ID,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		dbs, logger, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = dbs.Close()
		}()

		users := repositories.NewUserRepository(dbs, logger)
		user, err := users.GetByEmail(ctx, seedUserEmail)
		if err != nil {
			return errors.Wrap(err, "look up seed user")
		}
		if user == nil {
			// The seed account is not meant for logging in.
			password, err := random.Letters(32)
			if err != nil {
				return errors.Wrap(err, "generate password")
			}
			if user, err = users.Register(ctx, seedUserEmail, password, "Demo Policyholder",
				models.RolePolicyholder); err != nil {
				return errors.Wrap(err, "register seed user")
			}
		}

		claimRepository := repositories.NewClaimRepository(dbs, logger)
		for _, template := range repositories.DemoClaims() {
			claim, err := claimRepository.Create(ctx, repositories.NewClaim{
				UserID:           user.ID,
				PolicyholderName: template.PolicyholderName,
				ClaimType:        template.ClaimType,
				Status:           models.SubmissionStatus(template.RiskScore),
				AmountClaimed:    template.AmountClaimed,
				Description:      template.Description,
				RiskScore:        template.RiskScore,
			})
			if err != nil {
				return errors.Wrap(err, "create claim", slog.String("policyholder", template.PolicyholderName))
			}
			cmd.Printf("seeded %s for %s\n", claim.ClaimNumber, claim.PolicyholderName)
		}
		return nil
	},
}
