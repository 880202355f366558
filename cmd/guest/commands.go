package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"finance-tracker/internal/client"
	"finance-tracker/internal/domain"
	"finance-tracker/internal/export"
	"finance-tracker/internal/guest"
	"finance-tracker/internal/ledger"
	"finance-tracker/internal/reconcile"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const usage = `usage: guest <command> [flags]

commands:
  init                       seed the default categories
  add                        record a transaction
  edit <id>                  change a transaction
  delete <id>                remove a transaction
  list                       list transactions (-month, -type, -category, -sort)
  summary                    monthly summary (-month, default current)
  categories                 list categories
  category-add               create a local category
  category-off <id>          deactivate a category
  assets                     list investment assets and allocation
  asset-add                  record an asset
  asset-delete <id>          remove an asset
  export                     write data (-format json|csv|xlsx, -o file)
  import <file>              replace local data with an exported blob
  clear                      drop all local data
  sync                       upload local data to an account (-username, -password)
`

type app struct {
	repo   *guest.Repository
	out    io.Writer
	apiURL string
	now    func() time.Time
}

func newApp(repo *guest.Repository, out io.Writer, apiURL string) *app {
	return &app{repo: repo, out: out, apiURL: apiURL, now: time.Now}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return nil
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "init":
		return a.seed(ctx)
	case "add":
		return a.add(ctx, rest)
	case "edit":
		return a.edit(ctx, rest)
	case "delete":
		return a.withID(rest, func(id string) error { return a.repo.DeleteTransaction(ctx, id) })
	case "list":
		return a.list(ctx, rest)
	case "summary":
		return a.summary(ctx, rest)
	case "categories":
		return a.categories(ctx)
	case "category-add":
		return a.categoryAdd(ctx, rest)
	case "category-off":
		return a.withID(rest, func(id string) error { return a.categoryOff(ctx, id) })
	case "assets":
		return a.assets(ctx)
	case "asset-add":
		return a.assetAdd(ctx, rest)
	case "asset-delete":
		return a.withID(rest, func(id string) error { return a.repo.DeleteAsset(ctx, id) })
	case "export":
		return a.export(ctx, rest)
	case "import":
		return a.withID(rest, func(path string) error { return a.importFile(ctx, path) })
	case "clear":
		return a.repo.Clear(ctx)
	case "sync":
		return a.sync(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) withID(args []string, fn func(string) error) error {
	if len(args) != 1 || args[0] == "" {
		return errors.New("expected exactly one argument")
	}
	return fn(args[0])
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (a *app) seed(ctx context.Context) error {
	data, err := a.repo.Init(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d categories, %d transactions, %d assets\n",
		len(data.Categories), len(data.Transactions), len(data.Assets))
	return nil
}

// === Transactions ===

type txnFlags struct {
	kind, amount, date, category, note string
}

func (f *txnFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.kind, "type", "", "INCOME or EXPENSE")
	fs.StringVar(&f.amount, "amount", "", "positive amount, e.g. 45.90")
	fs.StringVar(&f.date, "date", "", "YYYY-MM-DD")
	fs.StringVar(&f.category, "category", "", "category name or id")
	fs.StringVar(&f.note, "note", "", "optional note")
}

// apply overlays the flags that were set onto t.
func (f *txnFlags) apply(data guest.Data, t *guest.Transaction) error {
	if f.kind != "" {
		t.Kind = domain.Kind(strings.ToUpper(f.kind))
	}
	if f.amount != "" {
		amount, err := decimal.NewFromString(strings.Replace(f.amount, ",", ".", 1))
		if err != nil {
			return fmt.Errorf("invalid amount %q", f.amount)
		}
		t.Amount = amount
	}
	if f.date != "" {
		t.Date = f.date
	}
	if f.category != "" {
		c, ok := findCategory(data, f.category)
		if !ok {
			return fmt.Errorf("unknown category %q", f.category)
		}
		t.CategoryID = c.ID
	}
	if f.note != "" {
		t.Note = f.note
	}
	return nil
}

func findCategory(data guest.Data, ref string) (guest.Category, bool) {
	if c, ok := data.Category(ref); ok {
		return c, true
	}
	for _, c := range data.Categories {
		if strings.EqualFold(c.Name, ref) {
			return c, true
		}
	}
	return guest.Category{}, false
}

func (a *app) add(ctx context.Context, args []string) error {
	var f txnFlags
	fs := newFlags("add")
	f.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	data, err := a.repo.Load(ctx)
	if err != nil {
		return err
	}
	t := guest.Transaction{Kind: domain.Expense, Date: a.now().UTC().Format(domain.DateLayout)}
	if err := f.apply(data, &t); err != nil {
		return err
	}
	t, err = a.repo.AddTransaction(ctx, t)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, t.ID)
	return nil
}

func (a *app) edit(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("edit needs a transaction id")
	}
	id := args[0]
	var f txnFlags
	fs := newFlags("edit")
	f.register(fs)
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	data, err := a.repo.Load(ctx)
	if err != nil {
		return err
	}
	for _, t := range data.Transactions {
		if t.ID != id {
			continue
		}
		if err := f.apply(data, &t); err != nil {
			return err
		}
		return a.repo.UpdateTransaction(ctx, t)
	}
	return fmt.Errorf("transaction %s: %w", id, guest.ErrNotFound)
}

type listFlags struct {
	month, kind, category, sort string
}

func (a *app) query(data guest.Data, f listFlags) (ledger.Query, error) {
	q := ledger.Query{Month: f.month, Sort: ledger.ParseSort(f.sort)}
	if f.month != "" {
		if _, err := ledger.ParseMonth(f.month); err != nil {
			return q, err
		}
	}
	if k := domain.Kind(strings.ToUpper(f.kind)); k != "" && k != "ALL" {
		if !k.Valid() {
			return q, fmt.Errorf("invalid type %q", f.kind)
		}
		q.Kind = k
	}
	if f.category != "" {
		c, ok := findCategory(data, f.category)
		if !ok {
			return q, fmt.Errorf("unknown category %q", f.category)
		}
		q.CategoryID = guest.ID(c.ID)
	}
	return q, nil
}

// transactions lists matching transactions with their categories attached.
func (a *app) transactions(data guest.Data, f listFlags) ([]domain.Transaction, error) {
	q, err := a.query(data, f)
	if err != nil {
		return nil, err
	}
	txns, err := data.Filtered(q)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]domain.Category, len(data.Categories))
	for _, c := range data.Categories {
		dc := c.Domain()
		byID[dc.ID] = dc
	}
	for i := range txns {
		if c, ok := byID[txns[i].CategoryID]; ok {
			txns[i].Category = &c
		}
	}
	return txns, nil
}

func (a *app) list(ctx context.Context, args []string) error {
	var f listFlags
	fs := newFlags("list")
	fs.StringVar(&f.month, "month", "", "YYYY-MM")
	fs.StringVar(&f.kind, "type", "", "INCOME, EXPENSE or ALL")
	fs.StringVar(&f.category, "category", "", "category name or id")
	fs.StringVar(&f.sort, "sort", "", "date_desc, date_asc, amount_desc, amount_asc")
	if err := fs.Parse(args); err != nil {
		return err
	}
	data, err := a.repo.Load(ctx)
	if err != nil {
		return err
	}
	txns, err := a.transactions(data, f)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTYPE\tAMOUNT\tCATEGORY\tNOTE")
	for _, t := range txns {
		name := ""
		if t.Category != nil {
			name = t.Category.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.Day(), t.Kind, t.Amount.StringFixed(2), name, t.Note)
	}
	return tw.Flush()
}

func (a *app) summary(ctx context.Context, args []string) error {
	fs := newFlags("summary")
	month := fs.String("month", "", "YYYY-MM")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *month == "" {
		*month = ledger.CurrentMonth(a.now())
	} else if _, err := ledger.ParseMonth(*month); err != nil {
		return err
	}
	data, err := a.repo.Load(ctx)
	if err != nil {
		return err
	}
	s, err := data.Summary(*month)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s\nincome  %s\nexpense %s\nbalance %s\n",
		s.Month, s.Totals.Income.StringFixed(2), s.Totals.Expense.StringFixed(2), s.Totals.Balance.StringFixed(2))
	if len(s.ByCategory) > 0 {
		fmt.Fprintln(a.out)
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		for _, c := range s.ByCategory {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", c.CategoryName, c.Group, c.Total.StringFixed(2))
		}
		return tw.Flush()
	}
	return nil
}

// === Categories ===

func (a *app) categories(ctx context.Context) error {
	data, err := a.repo.Load(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tGROUP\tACTIVE\tGLOBAL")
	for _, c := range data.Categories {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\n", c.ID, c.Name, c.Group, c.IsActive, c.IsGlobal)
	}
	return tw.Flush()
}

func (a *app) categoryAdd(ctx context.Context, args []string) error {
	fs := newFlags("category-add")
	name := fs.String("name", "", "category name")
	group := fs.String("group", string(domain.GroupOutros), "category group")
	icon := fs.String("icon", domain.DefaultIcon, "icon tag")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c, err := a.repo.AddCategory(ctx, guest.Category{
		Name:     strings.TrimSpace(*name),
		Group:    domain.Group(strings.ToUpper(*group)),
		Icon:     *icon,
		IsActive: true,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, c.ID)
	return nil
}

func (a *app) categoryOff(ctx context.Context, id string) error {
	data, err := a.repo.Load(ctx)
	if err != nil {
		return err
	}
	c, ok := data.Category(id)
	if !ok {
		return fmt.Errorf("category %s: %w", id, guest.ErrNotFound)
	}
	c.IsActive = false
	return a.repo.UpdateCategory(ctx, c)
}

// === Assets ===

func (a *app) assets(ctx context.Context) error {
	data, err := a.repo.Load(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tASSET\tTYPE\tQUANTITY\tAVG PRICE\tVALUE")
	for _, as := range data.Assets {
		d := as.Domain()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			as.ID, as.SymbolOrName, as.AssetType, as.Quantity, as.AvgPrice.StringFixed(2), d.MarketValue().StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	p := data.Portfolio()
	fmt.Fprintf(a.out, "\ntotal invested %s\n", p.TotalInvested.StringFixed(2))
	for _, slice := range p.ByType {
		fmt.Fprintf(a.out, "  %-13s %s\n", slice.AssetType, slice.Total.StringFixed(2))
	}
	return nil
}

func (a *app) assetAdd(ctx context.Context, args []string) error {
	fs := newFlags("asset-add")
	name := fs.String("name", "", "symbol or name")
	kind := fs.String("type", string(domain.AssetOther), "STOCK, FII, CRYPTO, FIXED_INCOME or OTHER")
	qty := fs.String("qty", "", "quantity")
	price := fs.String("price", "", "average price")
	if err := fs.Parse(args); err != nil {
		return err
	}
	quantity, err := decimal.NewFromString(*qty)
	if err != nil {
		return fmt.Errorf("invalid quantity %q", *qty)
	}
	avg, err := decimal.NewFromString(*price)
	if err != nil {
		return fmt.Errorf("invalid price %q", *price)
	}
	as, err := a.repo.AddAsset(ctx, guest.Asset{
		SymbolOrName: strings.TrimSpace(*name),
		AssetType:    domain.AssetType(strings.ToUpper(*kind)),
		Quantity:     quantity,
		AvgPrice:     avg,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, as.ID)
	return nil
}

// === Export / Import ===

// Without -month, csv and xlsx cover every transaction and the xlsx summary
// sheet aggregates all of them.
func (a *app) export(ctx context.Context, args []string) (err error) {
	fs := newFlags("export")
	format := fs.String("format", "json", "json, csv or xlsx")
	month := fs.String("month", "", "YYYY-MM, csv and xlsx only")
	path := fs.String("o", "", "output file, stdout when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}

	w := a.out
	if *path != "" {
		f, cerr := os.Create(*path)
		if cerr != nil {
			return fmt.Errorf("create %s: %w", *path, cerr)
		}
		defer closeInto(&err, f, *path)
		w = f
	}

	if *format == "json" {
		return a.repo.Export(ctx, w)
	}

	data, err := a.repo.Load(ctx)
	if err != nil {
		return err
	}
	txns, err := a.transactions(data, listFlags{month: *month, sort: string(ledger.SortDateAsc)})
	if err != nil {
		return err
	}
	switch *format {
	case "csv":
		return export.WriteCSV(w, txns)
	case "xlsx":
		s, err := data.Summary(*month)
		if err != nil {
			return err
		}
		return export.WriteXLSX(w, txns, s)
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
}

// closeInto closes c and reports its error through err unless err is already set.
func closeInto(err *error, c io.Closer, name string) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("close %s: %w", name, cerr)
	}
}

func (a *app) importFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	data, err := a.repo.Import(ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "imported %d categories, %d transactions, %d assets\n",
		len(data.Categories), len(data.Transactions), len(data.Assets))
	return nil
}

// === Sync ===

func (a *app) sync(ctx context.Context, args []string) error {
	fs := newFlags("sync")
	username := fs.String("username", "", "account username")
	password := fs.String("password", "", "account password")
	register := fs.Bool("register", false, "create the account first")
	fallback := fs.String("fallback", "", "create (default), skip or first")
	if err := fs.Parse(args); err != nil {
		return err
	}
	policy, err := reconcile.ParseFallback(*fallback)
	if err != nil {
		return err
	}
	if *username == "" || *password == "" {
		return errors.New("sync needs -username and -password")
	}

	data, err := a.repo.Load(ctx)
	if err != nil {
		return err
	}

	c := client.New(a.apiURL, nil)
	var remote *client.Client
	if *register {
		remote, err = c.Register(ctx, *username, *password)
	} else {
		remote, err = c.Login(ctx, *username, *password)
	}
	if err != nil {
		return err
	}

	report, err := reconcile.Sync(ctx, data, remote, reconcile.Options{Fallback: policy, Logger: slog.Default()})
	fmt.Fprintf(a.out, "categories: %d created, %d matched\ntransactions: %d created, %d skipped\nassets: %d created\n",
		report.CategoriesCreated, report.CategoriesMatched,
		report.TransactionsCreated, report.TransactionsSkipped, report.AssetsCreated)
	for _, c := range report.Conflicts {
		fmt.Fprintf(a.out, "  skipped %s (%s): %s\n", c.TransactionID, c.Category, c.Reason)
	}
	return err
}
