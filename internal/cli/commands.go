package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/safar/go-sql-storefront/internal/models"
)

type command struct {
	key       string
	label     string
	adminOnly bool
	run       func(ctx context.Context) error
}

func (s *Session) buildCommands() []command {
	return []command{
		{key: "1", label: "View products", run: s.viewProducts},
		{key: "2", label: "View cart", run: s.viewCart},
		{key: "3", label: "Add a product to the cart", run: s.addToCart},
		{key: "4", label: "Remove an item from the cart", run: s.removeFromCart},
		{key: "5", label: "Place an order", run: s.checkout},
		{key: "6", label: "View orders", run: s.viewOrders},
		{key: "7", label: "View order details", run: s.viewOrderDetails},
		{key: "8", label: "View reviews", run: s.viewReviews},
		{key: "9", label: "Write a review", run: s.addReview},
		{key: "10", label: "View all users", adminOnly: true, run: s.viewUsers},
	}
}

func (s *Session) visible(cmd command) bool {
	return !cmd.adminOnly || s.principal.IsAdmin()
}

func (s *Session) lookup(key string) (command, bool) {
	for _, cmd := range s.commands {
		if cmd.key == key && s.visible(cmd) {
			return cmd, true
		}
	}
	return command{}, false
}

func (s *Session) printMenu() {
	s.println()
	s.println("=== Main Menu ===")
	for _, cmd := range s.commands {
		if s.visible(cmd) {
			s.printf("%s. %s\n", cmd.key, cmd.label)
		}
	}
	s.println("0. Exit")
}

func (s *Session) table(header string, rows func(w *tabwriter.Writer)) {
	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, header)
	rows(w)
	w.Flush()
}

func (s *Session) viewProducts(ctx context.Context) error {
	products, err := s.svc.Catalog.ListProducts(ctx)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		s.println("No products found.")
		return nil
	}

	s.table("ID\tNAME\tPRICE", func(w *tabwriter.Writer) {
		for _, p := range products {
			fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, p.Name, p.Price.StringFixed(2))
		}
	})
	return nil
}

func (s *Session) viewCart(ctx context.Context) error {
	lines, err := s.svc.Cart.ViewCart(ctx, s.principal.UserID)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		s.println("Your cart is empty.")
		return nil
	}

	s.table("ENTRY\tPRODUCT\tQTY", func(w *tabwriter.Writer) {
		for _, l := range lines {
			fmt.Fprintf(w, "%d\t%s\t%d\n", l.ID, l.ProductName, l.Quantity)
		}
	})
	return nil
}

func (s *Session) addToCart(ctx context.Context) error {
	productID, err := s.promptID(ctx, "Product ID")
	if err != nil {
		return err
	}

	product, err := s.svc.Catalog.GetProduct(ctx, productID)
	if err != nil {
		return err
	}

	quantity, err := s.promptQuantity(ctx, fmt.Sprintf("Quantity of %s (%s each)", product.Name, product.Price.StringFixed(2)))
	if err != nil {
		return err
	}

	if _, err := s.svc.Cart.AddToCart(ctx, s.principal.UserID, productID, quantity); err != nil {
		return err
	}
	s.println("Product added to cart.")
	return nil
}

func (s *Session) removeFromCart(ctx context.Context) error {
	entryID, err := s.promptID(ctx, "Cart entry ID")
	if err != nil {
		return err
	}

	if err := s.svc.Cart.RemoveFromCart(ctx, s.principal.UserID, entryID); err != nil {
		return err
	}
	s.println("Item removed from cart.")
	return nil
}

func (s *Session) checkout(ctx context.Context) error {
	lines, err := s.svc.Cart.ViewCart(ctx, s.principal.UserID)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		s.println("Your cart is empty.")
		return nil
	}

	var shipping models.ShippingDetails
	fields := []struct {
		label string
		dst   *string
	}{
		{"Name", &shipping.Name},
		{"Email", &shipping.Email},
		{"Address", &shipping.Address},
		{"Address line 2 (optional)", &shipping.Address2},
		{"City", &shipping.City},
		{"State", &shipping.State},
		{"Zip code", &shipping.ZipCode},
		{"Country", &shipping.Country},
	}
	for _, f := range fields {
		v, err := s.prompt(ctx, f.label)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	order, err := s.svc.Orders.Checkout(ctx, s.principal.UserID, shipping)
	if err != nil {
		return err
	}

	s.printf("Order %d created. Total amount: %s\n", order.ID, order.TotalAmount.StringFixed(2))
	return nil
}

func (s *Session) viewOrders(ctx context.Context) error {
	orders, err := s.svc.Orders.ListOrders(ctx, s.principal.UserID)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		s.println("No orders found.")
		return nil
	}

	s.table("ID\tTOTAL\tPAID\tNAME\tCITY\tSTATE", func(w *tabwriter.Writer) {
		for _, o := range orders {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				o.ID, o.TotalAmount.StringFixed(2), yesNo(o.Paid), o.Name, o.City, o.State)
		}
	})
	return nil
}

func (s *Session) viewOrderDetails(ctx context.Context) error {
	orderID, err := s.promptID(ctx, "Order ID")
	if err != nil {
		return err
	}

	order, err := s.svc.Orders.GetOrder(ctx, s.principal.UserID, orderID)
	if err != nil {
		return err
	}
	lines, err := s.svc.Orders.ListOrderLineItems(ctx, s.principal.UserID, orderID)
	if err != nil {
		return err
	}

	sh := order.Shipping
	address := sh.Address
	if sh.Address2 != "" {
		address += ", " + sh.Address2
	}
	s.printf("Order %d for %s <%s>\n", order.ID, sh.Name, sh.Email)
	s.printf("Ship to: %s\n", strings.Join([]string{address, sh.City, sh.State, sh.ZipCode, sh.Country}, ", "))
	s.printf("Total: %s  Paid: %s\n", order.TotalAmount.StringFixed(2), yesNo(order.Paid))

	s.table("PRODUCT\tQTY\tUNIT PRICE", func(w *tabwriter.Writer) {
		for _, l := range lines {
			fmt.Fprintf(w, "%s\t%d\t%s\n", l.ProductName, l.Quantity, l.UnitPrice.StringFixed(2))
		}
	})
	return nil
}

func (s *Session) viewReviews(ctx context.Context) error {
	reviews, err := s.svc.Catalog.ListReviews(ctx)
	if err != nil {
		return err
	}
	if len(reviews) == 0 {
		s.println("No reviews found.")
		return nil
	}

	s.table("ID\tPRODUCT\tREVIEW", func(w *tabwriter.Writer) {
		for _, r := range reviews {
			fmt.Fprintf(w, "%d\t%s\t%s\n", r.ID, r.ProductName, r.Text)
		}
	})
	return nil
}

func (s *Session) addReview(ctx context.Context) error {
	productID, err := s.promptID(ctx, "Product ID")
	if err != nil {
		return err
	}
	text, err := s.prompt(ctx, "Review")
	if err != nil {
		return err
	}

	if _, err := s.svc.Catalog.AddReview(ctx, productID, text); err != nil {
		return err
	}
	s.println("Review added.")
	return nil
}

func (s *Session) viewUsers(ctx context.Context) error {
	users, err := s.svc.Auth.ListUsers(ctx, s.principal)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		s.println("No users found.")
		return nil
	}

	s.table("ID\tUSERNAME\tEMAIL\tROLE", func(w *tabwriter.Writer) {
		for _, u := range users {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, models.RoleFromAdminFlag(u.IsAdmin))
		}
	})
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
