package cli

import (
	"context"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

var (
	accountHeaders     = []string{"ID", "Name", "Type", "Currency", "Initial", "Balance"}
	categoryHeaders    = []string{"ID", "Name", "Type", "Description"}
	transactionHeaders = []string{"ID", "Date", "Account", "Category", "Type", "Amount", "Description"}
)

func (a *App) runAccount(ctx context.Context, args []string) error {
	sub, rest, err := subcommand(args, "account", "add", "list", "update", "delete")
	if err != nil {
		return err
	}
	store, err := a.Service.Store()
	if err != nil {
		return err
	}
	fs := a.newFlags("account " + sub)

	switch sub {
	case "add":
		name := fs.String("name", "", "account name")
		typ := fs.String("type", string(core.Debit), "debit or credit")
		balance := fs.String("balance", "0", "initial balance")
		currency := fs.String("currency", a.Config.DefaultCurrency, "3-letter currency code")
		if ok, err := parse(fs, rest); !ok {
			return err
		}
		at, err := core.ParseAccountType(*typ)
		if err != nil {
			return err
		}
		initial, err := parseMoney(*balance)
		if err != nil {
			return err
		}
		acct, err := store.CreateAccount(ctx, core.Account{Name: *name, Type: at, InitialBalance: initial, Currency: *currency})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "Created account %d: %s\n", acct.ID, acct)
		return nil

	case "list":
		typ := fs.String("type", "", "only debit or credit accounts")
		if ok, err := parse(fs, rest); !ok {
			return err
		}
		var accounts []core.Account
		if *typ == "" {
			accounts, err = store.ListAccounts(ctx)
		} else {
			var at core.AccountType
			if at, err = core.ParseAccountType(*typ); err == nil {
				accounts, err = store.ListAccountsByType(ctx, at)
			}
		}
		if err != nil {
			return err
		}
		renderTable(a.Out, accountHeaders, accountRows(accounts), 4, 5)
		return nil

	case "update":
		id := fs.Int64("id", 0, "account id")
		name := fs.String("name", "", "new name")
		typ := fs.String("type", "", "new type")
		balance := fs.String("balance", "", "new initial balance")
		currency := fs.String("currency", "", "new currency")
		if ok, err := parse(fs, rest); !ok {
			return err
		}
		if err := required("id", *id > 0); err != nil {
			return err
		}
		acct, err := store.GetAccount(ctx, *id)
		if err != nil {
			return err
		}
		set := visited(fs)
		if set["name"] {
			acct.Name = *name
		}
		if set["type"] {
			if acct.Type, err = core.ParseAccountType(*typ); err != nil {
				return err
			}
		}
		if set["balance"] {
			if acct.InitialBalance, err = parseMoney(*balance); err != nil {
				return err
			}
		}
		if set["currency"] {
			acct.Currency = *currency
		}
		updated, err := store.UpdateAccount(ctx, acct)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "Updated account %d: %s\n", updated.ID, updated)
		return nil

	default: // delete
		id := fs.Int64("id", 0, "account id")
		if ok, err := parse(fs, rest); !ok {
			return err
		}
		if err := required("id", *id > 0); err != nil {
			return err
		}
		if err := store.DeleteAccount(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "Deleted account %d and its transactions\n", *id)
		return nil
	}
}

func (a *App) runCategory(ctx context.Context, args []string) error {
	sub, rest, err := subcommand(args, "category", "add", "list", "update", "delete")
	if err != nil {
		return err
	}
	store, err := a.Service.Store()
	if err != nil {
		return err
	}
	fs := a.newFlags("category " + sub)

	switch sub {
	case "add":
		name := fs.String("name", "", "category name")
		typ := fs.String("type", string(core.Expense), "income or expense")
		desc := fs.String("desc", "", "description")
		if ok, err := parse(fs, rest); !ok {
			return err
		}
		tt, err := core.ParseTransactionType(*typ)
		if err != nil {
			return err
		}
		c, err := store.CreateCategory(ctx, core.Category{Name: *name, Type: tt, Description: *desc})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "Created category %d: %s (%s)\n", c.ID, c.Name, c.Type)
		return nil

	case "list":
		typ := fs.String("type", "", "only income or expense categories")
		if ok, err := parse(fs, rest); !ok {
			return err
		}
		var categories []core.Category
		if *typ == "" {
			categories, err = store.ListCategories(ctx)
		} else {
			var tt core.TransactionType
			if tt, err = core.ParseTransactionType(*typ); err == nil {
				categories, err = store.ListCategoriesByType(ctx, tt)
			}
		}
		if err != nil {
			return err
		}
		renderTable(a.Out, categoryHeaders, categoryRows(categories))
		return nil

	case "update":
		id := fs.Int64("id", 0, "category id")
		name := fs.String("name", "", "new name")
		typ := fs.String("type", "", "new type")
		desc := fs.String("desc", "", "new description")
		if ok, err := parse(fs, rest); !ok {
			return err
		}
		if err := required("id", *id > 0); err != nil {
			return err
		}
		c, err := store.GetCategory(ctx, *id)
		if err != nil {
			return err
		}
		set := visited(fs)
		if set["name"] {
			c.Name = *name
		}
		if set["type"] {
			if c.Type, err = core.ParseTransactionType(*typ); err != nil {
				return err
			}
		}
		if set["desc"] {
			c.Description = *desc
		}
		if err := store.UpdateCategory(ctx, c); err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "Updated category %d\n", c.ID)
		return nil

	default: // delete
		id := fs.Int64("id", 0, "category id")
		if ok, err := parse(fs, rest); !ok {
			return err
		}
		if err := required("id", *id > 0); err != nil {
			return err
		}
		if err := store.DeleteCategory(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "Deleted category %d\n", *id)
		return nil
	}
}

func (a *App) runTransaction(ctx context.Context, args []string) error {
	sub, rest, err := subcommand(args, "tx", "add", "list", "update", "delete")
	if err != nil {
		return err
	}
	store, err := a.Service.Store()
	if err != nil {
		return err
	}
	fs := a.newFlags("tx " + sub)

	switch sub {
	case "add":
		account := fs.Int64("account", 0, "account id")
		category := fs.String("category", "", "category name or id")
		amount := fs.String("amount", "", "positive amount")
		typ := fs.String("type", string(core.Expense), "income or expense")
		date := fs.String("date", "", "transaction date (default today)")
		desc := fs.String("desc", "", "description")
		if ok, err := parse(fs, rest); !ok {
			return err
		}
		if err := required("account", *account > 0); err != nil {
			return err
		}
		if err := required("category", *category != ""); err != nil {
			return err
		}
		t, err := a.buildTransaction(ctx, core.Transaction{AccountID: *account, Description: *desc},
			*category, *amount, *typ, *date)
		if err != nil {
			return err
		}
		created, err := store.CreateTransaction(ctx, t)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "Created transaction %d: %s %s on %s\n", created.ID, created.Type, created.Amount, created.Date)
		return nil

	case "list":
		account := fs.Int64("account", 0, "only this account")
		category := fs.String("category", "", "only this category (name or id)")
		from := fs.String("from", "", "first date, inclusive")
		to := fs.String("to", "", "last date, inclusive")
		limit := fs.Int("limit", 50, "maximum rows, 0 for all")
		if ok, err := parse(fs, rest); !ok {
			return err
		}
		filter := storage.TransactionFilter{AccountID: *account, Limit: *limit}
		if *category != "" {
			if filter.CategoryID, err = a.resolveCategory(ctx, *category); err != nil {
				return err
			}
		}
		if filter.From, err = parseOptionalDate(*from); err != nil {
			return err
		}
		if filter.To, err = parseOptionalDate(*to); err != nil {
			return err
		}
		txs, err := store.ListTransactions(ctx, filter)
		if err != nil {
			return err
		}
		renderTable(a.Out, transactionHeaders, transactionRows(txs), 5)
		return nil

	case "update":
		id := fs.Int64("id", 0, "transaction id")
		account := fs.Int64("account", 0, "new account id")
		category := fs.String("category", "", "new category name or id")
		amount := fs.String("amount", "", "new amount")
		typ := fs.String("type", "", "new type")
		date := fs.String("date", "", "new date")
		desc := fs.String("desc", "", "new description")
		if ok, err := parse(fs, rest); !ok {
			return err
		}
		if err := required("id", *id > 0); err != nil {
			return err
		}
		t, err := store.GetTransaction(ctx, *id)
		if err != nil {
			return err
		}
		set := visited(fs)
		if set["account"] {
			t.AccountID = *account
		}
		if set["category"] {
			if t.CategoryID, err = a.resolveCategory(ctx, *category); err != nil {
				return err
			}
		}
		if set["amount"] {
			if t.Amount, err = parseMoney(*amount); err != nil {
				return err
			}
		}
		if set["type"] {
			if t.Type, err = core.ParseTransactionType(*typ); err != nil {
				return err
			}
		}
		if set["date"] {
			if t.Date, err = core.ParseDate(*date); err != nil {
				return fmt.Errorf("date %q: %w", *date, err)
			}
		}
		if set["desc"] {
			t.Description = *desc
		}
		updated, err := store.UpdateTransaction(ctx, t)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "Updated transaction %d\n", updated.ID)
		return nil

	default: // delete
		id := fs.Int64("id", 0, "transaction id")
		if ok, err := parse(fs, rest); !ok {
			return err
		}
		if err := required("id", *id > 0); err != nil {
			return err
		}
		if err := store.DeleteTransaction(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "Deleted transaction %d\n", *id)
		return nil
	}
}

// buildTransaction fills category, amount, type and date from flag text onto t.
func (a *App) buildTransaction(ctx context.Context, t core.Transaction, category, amount, typ, date string) (core.Transaction, error) {
	var err error
	if t.CategoryID, err = a.resolveCategory(ctx, category); err != nil {
		return t, err
	}
	if t.Amount, err = parseMoney(amount); err != nil {
		return t, err
	}
	if t.Type, err = core.ParseTransactionType(typ); err != nil {
		return t, err
	}
	if date == "" {
		t.Date = core.DateOf(a.now())
		return t, nil
	}
	if t.Date, err = core.ParseDate(date); err != nil {
		return t, fmt.Errorf("date %q: %w", date, err)
	}
	return t, nil
}
