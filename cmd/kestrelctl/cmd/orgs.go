package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kestrelhq/kestrel/internal/command"
	"github.com/kestrelhq/kestrel/internal/cqrs"
	"github.com/kestrelhq/kestrel/internal/events"
	"github.com/kestrelhq/kestrel/internal/query"
	"github.com/kestrelhq/kestrel/internal/repository"
)

var (
	orgsListPage    int
	orgsListPerPage int

	orgCreateName  string
	orgCreateSlug  string
	orgCreateEmail string
	orgCreatePhone string
)

var orgsCmd = &cobra.Command{
	Use:   "orgs",
	Short: "Manage organizations",
}

var orgsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List organizations across the whole platform",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, rdb, err := connect()
		if err != nil {
			return err
		}
		defer db.Close()
		defer rdb.Close()

		queries := query.NewOrganizationQueryService(repository.NewOrganizationReadRepository(db, rdb.Client))
		page, err := queries.ListOrganizations(cqrs.ListOrganizationsQuery{
			Page:    orgsListPage,
			PerPage: orgsListPerPage,
		})
		if err != nil {
			return fmt.Errorf("failed to list organizations: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSLUG\tACTIVE\tCREATED")
		for _, org := range page.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n",
				org.ID, org.Name, org.Slug, org.Active, org.CreatedAt.Format(time.RFC3339))
		}
		w.Flush()
		fmt.Printf("page %d of %d (%d organizations)\n", page.Page, page.TotalPages, page.Total)

		return nil
	},
}

var orgsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an organization with its built-in user types",
	RunE: func(cmd *cobra.Command, args []string) error {
		if orgCreateName == "" {
			return fmt.Errorf("--name flag is required")
		}
		if orgCreateEmail == "" {
			return fmt.Errorf("--email flag is required")
		}

		cfg, db, rdb, err := connect()
		if err != nil {
			return err
		}
		defer db.Close()
		defer rdb.Close()

		commands := command.NewOrganizationCommandService(
			repository.NewOrganizationWriteRepository(db),
			repository.NewOrganizationReadRepository(db, rdb.Client),
			repository.NewUserTypeWriteRepository(db),
			repository.NewSessionRepository(db, rdb.Client, cfg.SessionCacheTTL),
			events.NewPublisher(rdb.Client),
		)

		org, err := commands.CreateOrganization(cqrs.CreateOrganizationCommand{
			Name:        orgCreateName,
			Slug:        orgCreateSlug,
			Email:       orgCreateEmail,
			PhoneNumber: orgCreatePhone,
		})
		if err != nil {
			return fmt.Errorf("failed to create organization: %w", err)
		}

		fmt.Printf("Organization created\n")
		fmt.Printf("ID:   %s\n", org.ID)
		fmt.Printf("Name: %s\n", org.Name)
		fmt.Printf("Slug: %s\n", org.Slug)
		fmt.Println("Seeded user types: admin, member (default)")

		return nil
	},
}

func init() {
	orgsListCmd.Flags().IntVar(&orgsListPage, "page", 1, "Page number")
	orgsListCmd.Flags().IntVar(&orgsListPerPage, "per-page", 20, "Organizations per page")

	orgsCreateCmd.Flags().StringVar(&orgCreateName, "name", "", "Organization name (required)")
	orgsCreateCmd.Flags().StringVar(&orgCreateSlug, "slug", "", "URL slug (derived from the name when omitted)")
	orgsCreateCmd.Flags().StringVar(&orgCreateEmail, "email", "", "Contact email (required)")
	orgsCreateCmd.Flags().StringVar(&orgCreatePhone, "phone", "", "Contact phone number")

	orgsCmd.AddCommand(orgsListCmd)
	orgsCmd.AddCommand(orgsCreateCmd)
}
