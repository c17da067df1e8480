package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"fatura/internal/aggregation"
	"fatura/internal/billing"
	"fatura/internal/client"
	"fatura/internal/config"
	"fatura/internal/core"
	"fatura/internal/installments"
	"fatura/internal/state"
)

// app is what the online commands share: an API client whose token comes
// from the hydrated snapshot.
type app struct {
	api   *client.Client
	store *state.Store
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	store := state.NewStore(state.NewFilePersister(cfg.StatePath))
	snapshot := store.Hydrate(ctx)

	api, err := client.New(cfg.APIBaseURL,
		client.WithTimeout(cfg.ClientTimeout),
		client.WithToken(snapshot.Token))
	if err != nil {
		return nil, err
	}
	return &app{api: api, store: store}, nil
}

// fail records err in the snapshot. A rejected token also ends the session.
func (a *app) fail(err error) error {
	if client.IsUnauthorized(err) && a.store.State().Authenticated() {
		_, _ = a.store.Dispatch(state.LoggedOut{})
		err = fmt.Errorf("%w (session ended, run login again)", err)
	}
	_, _ = a.store.Dispatch(state.Failed{Message: err.Error()})
	return err
}

func (a *app) login(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	register := fs.Bool("register", false, "create the account first")
	name := fs.String("name", "", "display name when registering")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("%w: -email and -password are required", errUsage)
	}

	var (
		token string
		err   error
	)
	if *register {
		token, err = a.api.Register(ctx, *email, *name, *password)
	} else {
		token, err = a.api.Login(ctx, *email, *password)
	}
	if err != nil {
		return a.fail(err)
	}
	if _, err := a.store.Dispatch(state.LoggedIn{Token: token, Email: strings.ToLower(strings.TrimSpace(*email))}); err != nil {
		return err
	}
	fmt.Fprintf(out, "logged in as %s\n", a.store.State().Email)
	return nil
}

func (a *app) logout(out io.Writer) error {
	if _, err := a.store.Dispatch(state.LoggedOut{}); err != nil {
		return err
	}
	fmt.Fprintln(out, "logged out")
	return nil
}

func (a *app) status(out io.Writer) error {
	s := a.store.State()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if s.Authenticated() {
		fmt.Fprintf(w, "session\t%s\n", s.Email)
	} else {
		fmt.Fprintf(w, "session\tnone\n")
	}
	fmt.Fprintf(w, "accounts\t%d\n", len(s.Accounts))
	fmt.Fprintf(w, "transactions\t%d\n", len(s.Transactions))
	fmt.Fprintf(w, "bills\t%d\n", len(s.Bills))
	fmt.Fprintf(w, "categories\t%d\n", len(s.Categories))
	if s.SyncedAt != "" {
		fmt.Fprintf(w, "synced at\t%s\n", s.SyncedAt)
	}
	if s.LastError != "" {
		fmt.Fprintf(w, "last error\t%s\n", s.LastError)
	}
	return w.Flush()
}

func (a *app) sync(ctx context.Context, out io.Writer) error {
	if !a.store.State().Authenticated() {
		return fmt.Errorf("not logged in")
	}

	var synced state.Synced
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		synced.Accounts, err = a.api.ListAccounts(gctx)
		return err
	})
	g.Go(func() (err error) {
		synced.Transactions, err = a.api.ListTransactions(gctx, client.TransactionQuery{})
		return err
	})
	g.Go(func() (err error) {
		synced.Bills, err = a.api.ListBills(gctx)
		return err
	})
	g.Go(func() (err error) {
		synced.Categories, err = a.api.ListCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return a.fail(err)
	}
	synced.At = time.Now().UTC().Format(time.RFC3339)

	s, err := a.store.Dispatch(synced)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "synced %d accounts, %d transactions, %d bills, %d categories\n",
		len(s.Accounts), len(s.Transactions), len(s.Bills), len(s.Categories))
	return nil
}

func (a *app) summary(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	year := fs.Int("year", 0, "baseline year (default: current)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	sum, err := a.api.MonthlySummary(ctx, *year)
	if err != nil {
		return a.fail(err)
	}
	_, _ = a.store.Dispatch(state.ErrorCleared{})
	return printTable(out, sum.Table)
}

func printTable(out io.Writer, table [][]string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, row := range table {
		fmt.Fprintln(w, strings.Join(row, "\t")+"\t")
	}
	return w.Flush()
}

func runSplit(args []string, out io.Writer) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: split <total> <n>", errUsage)
	}
	total, err := core.ParseAmount(args[0])
	if err != nil {
		return fmt.Errorf("invalid total %q: %w", args[0], err)
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 1 {
		return fmt.Errorf("invalid installment count %q: must be a positive integer", args[1])
	}

	for i, part := range installments.SplitCents(total, n) {
		fmt.Fprintf(out, "%d/%d\t%s\n", i+1, n, aggregation.Format(part, true))
	}
	return nil
}

func runInvoiceMonth(args []string, out io.Writer) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: invoice-month <date> <cutoff>", errUsage)
	}
	cutoff, err := strconv.Atoi(args[1])
	if err != nil || cutoff < 0 || cutoff > 31 {
		return fmt.Errorf("invalid cutoff day %q: must be between 0 and 31", args[1])
	}
	month := billing.InvoiceMonth(args[0], cutoff)
	if month == "" {
		return fmt.Errorf("invalid purchase date %q: %w", args[0], core.ErrInvalidDate)
	}
	fmt.Fprintf(out, "invoice %s (purchases of %s)\n", month, billing.ReferenceMonth(month))
	return nil
}

func (a *app) installments(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("installments", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	account := fs.String("account", "", "card account id")
	desc := fs.String("desc", "", "description")
	date := fs.String("date", time.Now().Format(core.DateLayout), "purchase date (YYYY-MM-DD)")
	dryRun := fs.Bool("dry-run", false, "preview without saving")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("%w: installments [flags] <total> <n>", errUsage)
	}
	total, err := core.ParseDecimalToCents(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid total %q: %w", fs.Arg(0), err)
	}
	n, err := strconv.Atoi(fs.Arg(1))
	if err != nil || n < 1 {
		return fmt.Errorf("invalid installment count %q: must be a positive integer", fs.Arg(1))
	}

	template := core.Transaction{
		AccountID:    *account,
		PurchaseDate: *date,
		Description:  *desc,
		Amount:       core.Cents(total),
		Direction:    core.Expense,
	}
	var plan []core.Transaction
	if *dryRun {
		plan, err = a.api.PreviewInstallments(ctx, template, n)
	} else {
		plan, err = a.api.CreateInstallments(ctx, template, n)
	}
	if err != nil {
		return a.fail(err)
	}
	if !*dryRun {
		if _, err := a.store.Dispatch(state.TransactionsSaved{Transactions: plan}); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, t := range plan {
		label := ""
		if t.Installment != nil {
			label = fmt.Sprintf("%d/%d", t.Installment.Current, t.Installment.Total)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", label, core.MonthOf(t.InvoiceMonth), t.ChargeDate, aggregation.Format(t.Amount.Cents, false))
	}
	return w.Flush()
}

// remove deletes one item of a collection on the server, then locally.
func (a *app) remove(ctx context.Context, args []string, out io.Writer) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: rm <account|transaction|bill|category> <id>", errUsage)
	}
	kind, id := args[0], args[1]

	var (
		del    func(context.Context, string) error
		action state.Action
	)
	switch kind {
	case "account":
		del, action = a.api.DeleteAccount, state.AccountDeleted{ID: id}
	case "transaction":
		del, action = a.api.DeleteTransaction, state.TransactionDeleted{ID: id}
	case "bill":
		del, action = a.api.DeleteBill, state.BillDeleted{ID: id}
	case "category":
		del, action = a.api.DeleteCategory, state.CategoryDeleted{ID: id}
	default:
		return fmt.Errorf("%w: unknown collection %q", errUsage, kind)
	}

	if err := del(ctx, id); err != nil {
		return a.fail(err)
	}
	if _, err := a.store.Dispatch(action); err != nil {
		return err
	}
	fmt.Fprintf(out, "deleted %s %s\n", kind, id)
	return nil
}
