package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goatflow/goatflow-go/goatflow"
)

var (
	ticketStatus   []string
	ticketPriority []string
	ticketQueueID  int64
	ticketSearch   string
	ticketTags     []string
	listPage       int
	listPageSize   int

	createTitle       string
	createDescription string
	createPriority    string
	createType        string
	createQueueID     int64
	createTags        []string
)

// ticketsCmd groups the ticket subcommands
var ticketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "Manage GoatFlow tickets",
}

var ticketsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tickets matching the given filters",
	RunE:  runTicketsList,
}

var ticketsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a single ticket with its messages",
	Args:  cobra.ExactArgs(1),
	RunE:  runTicketsGet,
}

var ticketsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new ticket",
	RunE:  runTicketsCreate,
}

func init() {
	ticketsListCmd.Flags().StringSliceVarP(&ticketStatus, "status", "s", nil, "filter by status (new/open/pending/resolved/closed)")
	ticketsListCmd.Flags().StringSliceVar(&ticketPriority, "priority", nil, "filter by priority (low/normal/high/urgent)")
	ticketsListCmd.Flags().Int64Var(&ticketQueueID, "queue", 0, "filter by queue ID")
	ticketsListCmd.Flags().StringVar(&ticketSearch, "search", "", "free-text search")
	ticketsListCmd.Flags().StringSliceVar(&ticketTags, "tag", nil, "filter by tag")
	ticketsListCmd.Flags().IntVar(&listPage, "page", 1, "page to fetch")
	ticketsListCmd.Flags().IntVar(&listPageSize, "page-size", goatflow.DefaultPageSize, "results per page")

	ticketsCreateCmd.Flags().StringVarP(&createTitle, "title", "t", "", "ticket title (required)")
	ticketsCreateCmd.Flags().StringVarP(&createDescription, "description", "d", "", "ticket description (required)")
	ticketsCreateCmd.Flags().StringVar(&createPriority, "priority", "", "priority (low/normal/high/urgent)")
	ticketsCreateCmd.Flags().StringVar(&createType, "type", "", "ticket type (incident/problem/question/task)")
	ticketsCreateCmd.Flags().Int64Var(&createQueueID, "queue", 0, "queue ID")
	ticketsCreateCmd.Flags().StringSliceVar(&createTags, "tag", nil, "tag to attach (repeatable)")
	ticketsCreateCmd.MarkFlagRequired("title")
	ticketsCreateCmd.MarkFlagRequired("description")

	ticketsCmd.AddCommand(ticketsListCmd)
	ticketsCmd.AddCommand(ticketsGetCmd)
	ticketsCmd.AddCommand(ticketsCreateCmd)
	rootCmd.AddCommand(ticketsCmd)
}

func runTicketsList(cmd *cobra.Command, args []string) error {
	opts := goatflow.TicketListOptions{
		Page:     listPage,
		PageSize: listPageSize,
		Search:   ticketSearch,
		Tags:     ticketTags,
	}
	for _, s := range ticketStatus {
		opts.Status = append(opts.Status, goatflow.TicketStatus(s))
	}
	for _, p := range ticketPriority {
		opts.Priority = append(opts.Priority, goatflow.TicketPriority(p))
	}
	if ticketQueueID > 0 {
		opts.QueueID = []int64{ticketQueueID}
	}

	list, err := client.Tickets.List(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if len(list.Items) == 0 {
		fmt.Println("No tickets found.")
		return nil
	}

	fmt.Println(strings.Repeat("-", 95))
	fmt.Printf("%-8s %-12s %-45s %-10s %-10s\n", "ID", "NUMBER", "TITLE", "STATUS", "PRIORITY")
	fmt.Println(strings.Repeat("-", 95))
	for _, t := range list.Items {
		title := t.Title
		if len(title) > 43 {
			title = title[:40] + "..."
		}
		fmt.Printf("%-8d %-12s %-45s %-10s %-10s\n", t.ID, t.TicketNumber, title, t.Status, t.Priority)
	}
	fmt.Printf("\nPage %d of %d (%d tickets total)\n", list.Page, list.TotalPages, list.TotalCount)

	return nil
}

func runTicketsGet(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid ticket id %q", args[0])
	}

	ctx := cmd.Context()
	ticket, err := client.Tickets.Get(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s\n", ticket.TicketNumber, ticket.Title)
	fmt.Printf("Status: %s  Priority: %s  Type: %s\n", ticket.Status, ticket.Priority, ticket.Type)
	fmt.Printf("Created: %s  Updated: %s\n", ticket.CreatedAt.Format("2006-01-02 15:04"), ticket.UpdatedAt.Format("2006-01-02 15:04"))
	if ticket.Customer != nil {
		fmt.Printf("Customer: %s <%s>\n", ticket.Customer.FullName(), ticket.Customer.Email)
	}
	if ticket.AssignedUser != nil {
		fmt.Printf("Assigned to: %s\n", ticket.AssignedUser.FullName())
	}
	if len(ticket.Tags) > 0 {
		fmt.Printf("Tags: %s\n", strings.Join(ticket.Tags, ", "))
	}
	if ticket.Description != "" {
		fmt.Printf("\n%s\n", ticket.Description)
	}

	messages, err := client.Tickets.ListMessages(ctx, id)
	if err != nil {
		return err
	}
	if len(messages) > 0 {
		fmt.Printf("\nMessages (%d):\n", len(messages))
		for _, m := range messages {
			fmt.Println(strings.Repeat("-", 60))
			fmt.Printf("[%s] %s\n", m.CreatedAt.Format("2006-01-02 15:04"), m.Content)
		}
	}

	return nil
}

func runTicketsCreate(cmd *cobra.Command, args []string) error {
	req := goatflow.TicketCreateRequest{
		Title:       createTitle,
		Description: createDescription,
		Priority:    goatflow.TicketPriority(createPriority),
		Type:        createType,
		Tags:        createTags,
	}
	if createQueueID > 0 {
		req.QueueID = &createQueueID
	}

	ticket, err := client.Tickets.Create(cmd.Context(), req)
	if err != nil {
		return err
	}

	logger.Info().Int64("id", ticket.ID).Str("number", ticket.TicketNumber).Msg("Ticket created")
	fmt.Printf("Created ticket %s (ID %d)\n", ticket.TicketNumber, ticket.ID)

	return nil
}
