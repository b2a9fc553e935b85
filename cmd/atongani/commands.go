package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/atongani/market-client/internal/core/domain"
	"github.com/atongani/market-client/internal/core/ports"
	"github.com/atongani/market-client/internal/core/service"
	"github.com/atongani/market-client/internal/session"
)

const (
	loginFailed        = "Login failed. Check username/password."
	registrationFailed = "Registration failed. Try a different username/email."
)

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("login")
	username := fs.StringP("username", "u", "", "account username")
	password := fs.StringP("password", "p", "", "account password (prompted without echo when omitted)")
	passwordFile := fs.String("password-file", "", "read the password from the first line of a file")
	if err := parseFlags(fs, args, "login [-u username] [-p password | --password-file path]"); err != nil {
		return err
	}

	if *password == "" && *passwordFile != "" {
		pw, err := readPasswordFile(*passwordFile)
		if err != nil {
			return exitErr(exitFailure, err.Error())
		}
		*password = pw
	}
	if *username == "" {
		u, err := a.prompt.Line("Username: ")
		if err != nil {
			return err
		}
		*username = u
	}
	if *password == "" {
		pw, err := a.prompt.Password("Password: ")
		if err != nil {
			return err
		}
		*password = pw
	}
	if *username == "" || *password == "" {
		return exitErr(exitFailure, "username and password are required")
	}

	user, err := a.auth.Login(ctx, ports.Credentials{Username: *username, Password: *password})
	if err != nil {
		if errors.Is(err, domain.ErrIdentityUnconfirmed) {
			return exitErr(exitFailure, "Logged in, but your profile could not be loaded. Run 'atongani whoami' to retry.")
		}
		return exitErr(exitFailure, domain.Summary(err, loginFailed))
	}

	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", user.Username, user.Role.Label())
	return nil
}

func runRegister(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("register")
	var form service.RegistrationForm
	fs.StringVar(&form.Username, "username", "", "username")
	fs.StringVar(&form.Email, "email", "", "email address")
	fs.StringVar(&form.FirstName, "first-name", "", "first name")
	fs.StringVar(&form.LastName, "last-name", "", "last name")
	fs.StringVar(&form.FarmName, "farm-name", "", "farm name (farmers only)")
	fs.StringVar(&form.Password, "password", "", "password, at least 8 characters")
	fs.StringVar(&form.ConfirmPassword, "confirm-password", "", "password again")
	usage := "register customer|farmer --username u --email e --first-name f --last-name l [--farm-name n] [--password p --confirm-password p]"
	if err := parseFlags(fs, args, usage); err != nil {
		return err
	}

	var role domain.Role
	switch strings.ToLower(fs.Arg(0)) {
	case "customer":
		role = domain.RoleCustomer
	case "farmer":
		role = domain.RoleFarmer
	default:
		return exitErr(exitFailure, "usage: atongani "+usage)
	}

	if form.Password == "" {
		pw, err := a.prompt.Password("Password: ")
		if err != nil {
			return err
		}
		confirm, err := a.prompt.Password("Confirm password: ")
		if err != nil {
			return err
		}
		form.Password, form.ConfirmPassword = pw, confirm
	}

	user, err := a.auth.Register(ctx, form, role)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return exitErr(exitFailure, ve.Message)
		}
		return exitErr(exitFailure, domain.FieldSummary(err, registrationFailed))
	}

	fmt.Fprintf(a.out, "Welcome, %s! Your %s account is ready.\n", user.Username, strings.ToLower(user.Role.Label()))
	return nil
}

func runLogout(ctx context.Context, a *app, _ []string) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func runWhoAmI(ctx context.Context, a *app, _ []string) error {
	user, err := a.enterDashboard(ctx)
	if err != nil {
		return err
	}
	tabs := user.Tabs()
	names := make([]string, len(tabs))
	for i, t := range tabs {
		names[i] = string(t)
	}
	fmt.Fprintf(a.out, "%s (%s)\n", user.Username, user.Role.Label())
	if user.Email != "" {
		fmt.Fprintf(a.out, "Email:   %s\n", user.Email)
	}
	if !user.JoinedAt.IsZero() {
		fmt.Fprintf(a.out, "Joined:  %s\n", user.JoinedAt.Local().Format("Jan 2, 2006"))
	}
	fmt.Fprintf(a.out, "Tabs:    %s\n", strings.Join(names, ", "))
	return nil
}

// runStatus reports what is stored locally and whether the backend answers.
// It never calls who-am-I, so it does not clear a rejected session.
func runStatus(ctx context.Context, a *app, _ []string) error {
	fmt.Fprintf(a.out, "Backend: %s", a.cfg.API.BaseURL)
	if err := a.api.Ping(ctx); err != nil {
		fmt.Fprintf(a.out, " (unreachable: %v)\n", err)
	} else {
		fmt.Fprintln(a.out, " (reachable)")
	}
	fmt.Fprintf(a.out, "Session: %s backend, ", a.cfg.Session.Backend)

	if !a.session.Present() {
		fmt.Fprintln(a.out, "not logged in")
		return nil
	}
	info, err := session.Inspect(a.session.Token())
	if err != nil {
		fmt.Fprintln(a.out, "token stored (opaque)")
		return nil
	}
	fmt.Fprint(a.out, "token stored")
	if info.UserID != "" {
		fmt.Fprintf(a.out, " for user %s", info.UserID)
	}
	if !info.ExpiresAt.IsZero() {
		if info.Expired(time.Now()) {
			fmt.Fprintf(a.out, ", expired %s", info.ExpiresAt.Local().Format(time.RFC1123))
		} else {
			fmt.Fprintf(a.out, ", expires %s", info.ExpiresAt.Local().Format(time.RFC1123))
		}
	}
	fmt.Fprintln(a.out)
	return nil
}

func runOrders(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("orders")
	watch := fs.BoolP("watch", "w", false, "keep the list live in a terminal view")
	asJSON := fs.Bool("json", false, "print orders as JSON")
	if err := parseFlags(fs, args, "orders [--watch] [--json]"); err != nil {
		return err
	}

	user, err := a.enterDashboard(ctx)
	if err != nil {
		return err
	}
	if err := requireRole(user, domain.RoleCustomer); err != nil {
		return err
	}

	if *watch {
		return watchOrders(ctx, a)
	}

	orders, err := a.orders.MyOrders(ctx)
	if err != nil {
		return exitErr(exitFailure, "Failed to load orders")
	}
	if *asJSON {
		return printJSON(a, orders)
	}
	printOrders(a, orders, "You have not placed any orders yet.")
	return nil
}

func runPending(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("pending")
	asJSON := fs.Bool("json", false, "print orders as JSON")
	if err := parseFlags(fs, args, "pending [--json]"); err != nil {
		return err
	}

	user, err := a.enterDashboard(ctx)
	if err != nil {
		return err
	}
	if err := requireRole(user, domain.RoleFarmer); err != nil {
		return err
	}

	orders, err := a.orders.PendingOrders(ctx)
	if err != nil {
		return exitErr(exitFailure, domain.Summary(err, "Failed to load pending orders"))
	}
	if *asJSON {
		return printJSON(a, orders)
	}
	printOrders(a, orders, "No orders are waiting for you.")
	return nil
}

func runOrder(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("order")
	asJSON := fs.Bool("json", false, "print the order as JSON")
	if err := parseFlags(fs, args, "order <id> [--json]"); err != nil {
		return err
	}
	id, err := orderArg(fs.Arg(0), "order <id>")
	if err != nil {
		return err
	}

	if _, err := a.enterDashboard(ctx); err != nil {
		return err
	}

	order, err := a.orders.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return exitErr(exitFailure, fmt.Sprintf("order %d not found", id))
		}
		return exitErr(exitFailure, domain.Summary(err, "Failed to load order"))
	}
	if *asJSON {
		return printJSON(a, order)
	}
	printOrderDetail(a, *order)
	return nil
}

func runCheckout(ctx context.Context, a *app, _ []string) error {
	user, err := a.enterDashboard(ctx)
	if err != nil {
		return err
	}
	if err := requireRole(user, domain.RoleCustomer); err != nil {
		return err
	}

	order, err := a.orders.Checkout(ctx)
	if err != nil {
		return exitErr(exitFailure, domain.Summary(err, "Checkout failed"))
	}
	fmt.Fprintf(a.out, "Order #%d placed (%s, %s).\n", order.ID, order.Status.Display(), domain.FormatAmount(order.TotalAmount))
	if note := order.Status.Display().Note(); note != "" {
		fmt.Fprintln(a.out, note)
	}
	return nil
}

func runApprove(ctx context.Context, a *app, args []string) error {
	id, err := orderArg(firstArg(args), "approve <id>")
	if err != nil {
		return err
	}
	user, err := a.enterDashboard(ctx)
	if err != nil {
		return err
	}
	if err := requireRole(user, domain.RoleFarmer); err != nil {
		return err
	}

	if err := a.orders.Approve(ctx, id); err != nil {
		return exitErr(exitFailure, domain.Summary(err, "Failed to approve order"))
	}
	fmt.Fprintf(a.out, "Order #%d approved.\n", id)
	return nil
}

func runReject(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("reject")
	reason := fs.StringP("reason", "r", "", "reason shown to the customer")
	if err := parseFlags(fs, args, "reject <id> --reason text"); err != nil {
		return err
	}
	id, err := orderArg(fs.Arg(0), "reject <id> --reason text")
	if err != nil {
		return err
	}
	user, err := a.enterDashboard(ctx)
	if err != nil {
		return err
	}
	if err := requireRole(user, domain.RoleFarmer); err != nil {
		return err
	}

	if err := a.orders.Reject(ctx, id, *reason); err != nil {
		return exitErr(exitFailure, domain.Summary(err, "Failed to reject order"))
	}
	fmt.Fprintf(a.out, "Order #%d rejected.\n", id)
	return nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func orderArg(raw, usage string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, exitErr(exitFailure, "usage: atongani "+usage)
	}
	return id, nil
}

func printJSON(a *app, v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printOrders(a *app, orders []domain.Order, empty string) {
	if len(orders) == 0 {
		fmt.Fprintln(a.out, empty)
		return
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tSTATUS\tPLACED\tTOTAL\tITEMS")
	for _, o := range orders {
		status := o.Status.Display()
		fmt.Fprintf(w, "#%d\t%s %s\t%s\t%s\t%d\n",
			o.ID, status.Icon(), status, o.CreatedAt.Local().Format("Jan 2, 2006"), domain.FormatAmount(o.TotalAmount), len(o.Items))
	}
	_ = w.Flush()
}

func printOrderDetail(a *app, o domain.Order) {
	status := o.Status.Display()
	fmt.Fprintf(a.out, "Order #%d  %s %s\n", o.ID, status.Icon(), status)
	fmt.Fprintf(a.out, "Placed:  %s\n", o.CreatedAt.Local().Format("Jan 2, 2006 15:04"))
	fmt.Fprintf(a.out, "Total:   %s\n", domain.FormatAmount(o.TotalAmount))
	for _, it := range o.Items {
		fmt.Fprintf(a.out, "  • %s (%s) %g %s  %s\n", it.PostTitle, it.FarmerName, it.Quantity, it.Unit, domain.FormatAmount(it.TotalPrice))
	}
	if reason := o.Rejection(); reason != "" {
		fmt.Fprintf(a.out, "Reason:  %s\n", reason)
	}
	if note := status.Note(); note != "" {
		fmt.Fprintln(a.out, note)
	}
}
