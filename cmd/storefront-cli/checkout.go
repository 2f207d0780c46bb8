package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/senira34/lolipop-wear/internal/checkout"
	"github.com/senira34/lolipop-wear/internal/domain"
	"github.com/senira34/lolipop-wear/internal/payment"
	"github.com/senira34/lolipop-wear/internal/pricing"
)

func checkoutCmd(opts *globalOptions) *cobra.Command {
	var info checkout.ShippingInfo
	var paymentMethod string

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Pay for the cart and place the order",
		Long: `Pay for the cart by card and record the order.

The amount is computed from the cart: items plus a flat shipping fee that is
waived above the free-shipping threshold. If the payment succeeds but the order
cannot be saved, the payment ID is printed so support can reconcile it.`,
		Example: `  lolipop checkout --name "Ann Perera" --email ann@example.com \
    --phone 0771234567 --address "12 Galle Rd" --city Colombo --payment-method pm_card_visa`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.openCart(cmd.Context(), opts.redisSession)
			if err != nil {
				return err
			}

			if !a.json && !c.IsEmpty() {
				fmt.Fprintf(a.out, "Paying %s\n", quoteSummary(a.cfg.PricingRules().Quote(c.Lines())))
			}

			session := checkout.NewSession(c, domain.Registered(a.cfg.Client.UserID), checkout.Deps{
				Intents:   a.client,
				Confirmer: payment.NewStripeConfirmer(a.cfg.Stripe.PublishableKey, a.cfg.PaymentBreaker(), nil),
				Orders:    a.client,
				Rules:     a.cfg.PricingRules(),
				Logger:    a.logger,
			})

			out, err := session.Run(cmd.Context(), info, paymentMethod)
			if out != nil && a.json {
				if jerr := a.printJSON(out); jerr != nil {
					return jerr
				}
			}
			if err != nil {
				var vErr *domain.ValidationError
				switch {
				case errors.Is(err, checkout.ErrEmptyCart):
					return errors.New("your cart is empty")
				case errors.As(err, &vErr):
					return fmt.Errorf("%s: %v", vErr.Message, vErr.Fields)
				case out != nil && out.FailureMessage != "":
					return fmt.Errorf("payment failed: %s", out.FailureMessage)
				}
				return err
			}
			if a.json {
				return nil
			}

			fmt.Fprintf(a.out, "Payment successful. Transaction ID: %s\n", out.TransactionID)
			fmt.Fprintf(a.out, "Charged: %s %s\n", out.Quote.Total.StringFixed(2), a.cfg.Stripe.Currency)
			switch out.State {
			case checkout.StateOrderWriteSucceeded:
				fmt.Fprintf(a.out, "Order placed: %s (%s)\n", out.Order.ID, out.Order.OrderStatus)
			case checkout.StateOrderWriteFailed:
				fmt.Fprintf(a.out, "Warning: %s\n", out.Warning)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&info.FullName, "name", "", "full name (required)")
	cmd.Flags().StringVar(&info.Email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&info.Phone, "phone", "", "phone number (required)")
	cmd.Flags().StringVar(&info.Address, "address", "", "street address (required)")
	cmd.Flags().StringVar(&info.City, "city", "", "city")
	cmd.Flags().StringVar(&info.State, "state", "", "state or province")
	cmd.Flags().StringVar(&info.ZipCode, "zip", "", "postal code")
	cmd.Flags().StringVar(&info.Country, "country", "", "country")
	cmd.Flags().StringVar(&paymentMethod, "payment-method", "pm_card_visa", "card payment method id")

	return cmd
}

func quoteSummary(q pricing.Quote) string {
	return fmt.Sprintf("subtotal %s + shipping %s = %s",
		q.Subtotal.StringFixed(2), q.Shipping.StringFixed(2), q.Total.StringFixed(2))
}
