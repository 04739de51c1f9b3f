package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kestrelhq/kestrel/internal/command"
	"github.com/kestrelhq/kestrel/internal/cqrs"
	"github.com/kestrelhq/kestrel/internal/events"
	"github.com/kestrelhq/kestrel/internal/repository"
)

var (
	userCreateOrg      string
	userCreateName     string
	userCreateEmail    string
	userCreatePassword string
	userCreatePhone    string
	userCreateType     string
	userCreateStdin    bool
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users",
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user in an existing organization",
	Long: `Create a user directly in the database, typically to bootstrap an
organization admin. The user type is resolved by name within the organization.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if userCreateOrg == "" {
			return fmt.Errorf("--org flag is required")
		}
		if userCreateName == "" {
			return fmt.Errorf("--name flag is required")
		}
		if userCreateEmail == "" {
			return fmt.Errorf("--email flag is required")
		}

		password := userCreatePassword
		if userCreateStdin {
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Print("Enter password: ")
			if scanner.Scan() {
				password = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}
		if password == "" {
			return fmt.Errorf("password is required (use --password or --stdin)")
		}
		if len(password) < 8 {
			return fmt.Errorf("password must be at least 8 characters")
		}

		cfg, db, rdb, err := connect()
		if err != nil {
			return err
		}
		defer db.Close()
		defer rdb.Close()

		typeRepo := repository.NewUserTypeWriteRepository(db)
		userType, err := typeRepo.GetByName(userCreateOrg, userCreateType)
		if err != nil {
			return fmt.Errorf("failed to resolve user type %q in %s: %w", userCreateType, userCreateOrg, err)
		}

		commands := command.NewUserCommandService(
			repository.NewUserWriteRepository(db),
			repository.NewUserReadRepository(db, rdb.Client),
			typeRepo,
			repository.NewOrganizationWriteRepository(db),
			repository.NewSessionRepository(db, rdb.Client, cfg.SessionCacheTTL),
			events.NewPublisher(rdb.Client),
		)

		user, err := commands.CreateUser(cqrs.CreateUserCommand{
			OrganizationID: userCreateOrg,
			UserTypeID:     userType.ID,
			Name:           userCreateName,
			Email:          userCreateEmail,
			Password:       password,
			PhoneNumber:    userCreatePhone,
		})
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		fmt.Printf("User created\n")
		fmt.Printf("ID:    %s\n", user.ID)
		fmt.Printf("Email: %s\n", user.Email)
		fmt.Printf("Type:  %s\n", userType.Name)

		return nil
	},
}

func init() {
	usersCreateCmd.Flags().StringVar(&userCreateOrg, "org", "", "Organization ID (required)")
	usersCreateCmd.Flags().StringVar(&userCreateName, "name", "", "Display name (required)")
	usersCreateCmd.Flags().StringVar(&userCreateEmail, "email", "", "Email address (required)")
	usersCreateCmd.Flags().StringVar(&userCreatePassword, "password", "", "Password (use --stdin to avoid shell history)")
	usersCreateCmd.Flags().StringVar(&userCreatePhone, "phone", "", "Phone number")
	usersCreateCmd.Flags().StringVar(&userCreateType, "type", "admin", "User type name within the organization")
	usersCreateCmd.Flags().BoolVar(&userCreateStdin, "stdin", false, "Read the password from stdin")

	usersCmd.AddCommand(usersCreateCmd)
}
