package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/senira34/lolipop-wear/internal/domain"
	"github.com/senira34/lolipop-wear/internal/events"
)

func ordersCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Look up placed orders",
	}
	cmd.AddCommand(ordersListCmd(opts), ordersShowCmd(opts), ordersWatchCmd(opts))
	return cmd
}

func ordersListCmd(opts *globalOptions) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's orders, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()

			if userID == "" {
				userID = a.cfg.Client.UserID
			}
			if userID == "" {
				return errors.New("no user id, pass --user or set client.user_id")
			}

			orders, err := a.client.ListUserOrders(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("list orders: %w", err)
			}
			if a.json {
				return a.printJSON(orders)
			}
			if len(orders) == 0 {
				fmt.Fprintln(a.out, "No orders yet")
				return nil
			}

			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPLACED\tITEMS\tTOTAL\tPAID\tSTATUS")
			for _, o := range orders {
				fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%t\t%s\n",
					o.ID, o.CreatedAt.Format("2006-01-02 15:04"), len(o.OrderItems), o.TotalPrice, o.IsPaid, o.OrderStatus)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id (defaults to client.user_id)")
	return cmd
}

func ordersShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <order-id>",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()

			o, err := a.client.GetOrder(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get order: %w", err)
			}
			if a.json {
				return a.printJSON(o)
			}
			printOrder(a, o)
			return nil
		},
	}
}

func printOrder(a *app, o *domain.Order) {
	fmt.Fprintf(a.out, "Order %s  (%s)\n", o.ID, o.OrderStatus)
	fmt.Fprintf(a.out, "  Placed by: %s\n", o.User)
	if o.ShippingAddress != nil {
		fmt.Fprintf(a.out, "  Ship to:   %s, %s %s\n", o.ShippingAddress.Name, o.ShippingAddress.Street, o.ShippingAddress.City)
	}
	for _, it := range o.OrderItems {
		fmt.Fprintf(a.out, "  %d x %s %s/%s @ %.2f\n", it.Quantity, it.Name, it.Size, it.Color, it.Price)
	}
	fmt.Fprintf(a.out, "  Items %.2f  Shipping %.2f  Tax %.2f  Total %.2f\n", o.ItemsPrice, o.ShippingPrice, o.TaxPrice, o.TotalPrice)
	if o.IsPaid && o.PaidAt != nil {
		fmt.Fprintf(a.out, "  Paid %s via %s (%s)\n", o.PaidAt.Format("2006-01-02 15:04"), o.PaymentMethod, o.PaymentResult.ID)
	}
	if o.IsDelivered && o.DeliveredAt != nil {
		fmt.Fprintf(a.out, "  Delivered %s\n", o.DeliveredAt.Format("2006-01-02 15:04"))
	}
}

func ordersWatchCmd(opts *globalOptions) *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream order events from Kafka until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()

			if len(a.cfg.Kafka.Brokers) == 0 {
				return errors.New("no kafka brokers, set kafka.brokers or KAFKA_BROKERS")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			consumer := events.NewConsumer(a.cfg.Kafka.Topic, group, a.logger, a.cfg.Kafka.Brokers...)
			defer consumer.Close()

			return consumer.Run(ctx, func(_ context.Context, e events.OrderEvent) error {
				if a.json {
					return a.printJSON(e)
				}
				_, err := fmt.Fprintf(a.out, "%s  %-22s %s  user=%s status=%s paid=%t total=%.2f\n",
					e.OccurredAt.Format("15:04:05"), e.Type, e.OrderID, e.User, e.Status, e.IsPaid, e.TotalPrice)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&group, "group", "", "consumer group id; empty reads only new events without committing")
	return cmd
}
