package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goatflow/goatflow-go/goatflow"
)

var (
	userRole   string
	userSearch string
	usersPage  int
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage GoatFlow users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE:  runUsersList,
}

var queuesCmd = &cobra.Command{
	Use:   "queues",
	Short: "List ticket queues",
	RunE:  runQueuesList,
}

func init() {
	usersListCmd.Flags().StringVar(&userRole, "role", "", "filter by role (admin/agent/user)")
	usersListCmd.Flags().StringVar(&userSearch, "search", "", "search by name or email")
	usersListCmd.Flags().IntVar(&usersPage, "page", 1, "page to fetch")

	usersCmd.AddCommand(usersListCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(queuesCmd)
}

func runUsersList(cmd *cobra.Command, args []string) error {
	list, err := client.Users.List(cmd.Context(), goatflow.UserListOptions{
		Page:   usersPage,
		Role:   userRole,
		Search: userSearch,
	})
	if err != nil {
		return err
	}

	if len(list.Items) == 0 {
		fmt.Println("No users found.")
		return nil
	}

	fmt.Println(strings.Repeat("-", 80))
	fmt.Printf("%-6s %-30s %-28s %-8s %s\n", "ID", "NAME", "EMAIL", "ROLE", "ACTIVE")
	fmt.Println(strings.Repeat("-", 80))
	for i := range list.Items {
		u := &list.Items[i]
		fmt.Printf("%-6d %-30s %-28s %-8s %t\n", u.ID, u.FullName(), u.Email, u.Role, u.IsActive)
	}
	fmt.Printf("\nPage %d of %d (%d users total)\n", list.Page, list.TotalPages, list.TotalCount)

	return nil
}

func runQueuesList(cmd *cobra.Command, args []string) error {
	queues, err := client.Queues.List(cmd.Context())
	if err != nil {
		return err
	}

	if len(queues) == 0 {
		fmt.Println("No queues found.")
		return nil
	}

	for _, q := range queues {
		fmt.Printf("• %s (ID: %d)", q.Name, q.ID)
		if !q.IsActive {
			fmt.Printf(" [INACTIVE]")
		}
		fmt.Println()
		if q.Description != "" {
			fmt.Printf("  %s\n", q.Description)
		}
	}

	return nil
}
