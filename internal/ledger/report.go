package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shehabalqudiry/vend/domain"
)

// Window selects the date range for report aggregation.
type Window string

const (
	WindowToday     Window = "today"
	WindowLast7Days Window = "week"
	WindowThisMonth Window = "month"
)

// historyLimit bounds the combined SALE/COLLECTION history view. Numeric
// summaries stay unbounded.
const historyLimit = 20

// lowStockThreshold flags products that are about to run out.
const lowStockThreshold = 5

func ParseWindow(raw string) (Window, error) {
	switch Window(raw) {
	case WindowToday, WindowLast7Days, WindowThisMonth:
		return Window(raw), nil
	case "":
		return WindowToday, nil
	}
	return "", fmt.Errorf("%w: unknown window %q", ErrValidation, raw)
}

// clause returns a SQL condition fragment for a date column plus its
// arguments. Today matches the UTC calendar-day prefix; the other windows are
// range comparisons over the RFC 3339 strings the engine writes.
func (w Window) clause(now time.Time) (string, []any) {
	switch w {
	case WindowLast7Days:
		return ">= ?", []any{timestamp(now.Add(-7 * 24 * time.Hour))}
	case WindowThisMonth:
		firstOfMonth := time.Date(now.UTC().Year(), now.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
		return ">= ?", []any{timestamp(firstOfMonth)}
	default:
		return "LIKE ?", []any{now.UTC().Format("2006-01-02") + "%"}
	}
}

// Summary partitions the window's sales by payment method and reports debt
// collections alongside. CollectedAmount is an independent axis: it is never
// subtracted from TotalSales.
type Summary struct {
	TotalSales      decimal.Decimal `json:"total_sales"`
	CashAmount      decimal.Decimal `json:"cash_amount"`
	CreditAmount    decimal.Decimal `json:"credit_amount"`
	CollectedAmount decimal.Decimal `json:"collected_amount"`
}

// Summarize aggregates committed sales and payments inside the window.
// Read-only; sums run through decimals in Go for exact totals.
func (s *Store) Summarize(ctx context.Context, window Window) (*Summary, error) {
	cond, args := window.clause(time.Now())

	var sales []struct {
		Method string          `db:"payment_method"`
		Amount decimal.Decimal `db:"total_amount"`
	}
	if err := s.db.SelectContext(ctx, &sales,
		`SELECT payment_method, total_amount FROM sales WHERE date `+cond, args...); err != nil {
		return nil, err
	}

	var collections []decimal.Decimal
	if err := s.db.SelectContext(ctx, &collections,
		`SELECT amount_paid FROM debt_payments WHERE payment_date `+cond, args...); err != nil {
		return nil, err
	}

	summary := Summary{
		TotalSales:      decimal.Zero,
		CashAmount:      decimal.Zero,
		CreditAmount:    decimal.Zero,
		CollectedAmount: decimal.Zero,
	}
	for _, sale := range sales {
		summary.TotalSales = summary.TotalSales.Add(sale.Amount)
		switch sale.Method {
		case domain.PaymentCash:
			summary.CashAmount = summary.CashAmount.Add(sale.Amount)
		case domain.PaymentCredit:
			summary.CreditAmount = summary.CreditAmount.Add(sale.Amount)
		}
	}
	for _, amount := range collections {
		summary.CollectedAmount = summary.CollectedAmount.Add(amount)
	}
	return &summary, nil
}

// HistoryEntry is one row of the combined sale/collection feed.
type HistoryEntry struct {
	Type             string          `db:"type" json:"type"` // SALE or COLLECTION
	ID               int64           `db:"id" json:"id"`
	Amount           decimal.Decimal `db:"amount" json:"amount"`
	Method           string          `db:"method" json:"method"`
	Date             string          `db:"date" json:"date"`
	CounterpartyName *string         `db:"counterparty_name" json:"counterparty_name,omitempty"`
}

// History merges sales and collections inside the window, newest first,
// capped at the most recent entries.
func (s *Store) History(ctx context.Context, window Window) ([]HistoryEntry, error) {
	cond, args := window.clause(time.Now())

	query := fmt.Sprintf(`
        SELECT 'SALE' AS type, s.id AS id, s.total_amount AS amount, s.payment_method AS method, s.date AS date, c.name AS counterparty_name
        FROM sales s LEFT JOIN customers c ON c.id = s.customer_id
        WHERE s.date %s
        UNION ALL
        SELECT 'COLLECTION' AS type, p.id AS id, p.amount_paid AS amount, 'cash' AS method, p.payment_date AS date, c.name AS counterparty_name
        FROM debt_payments p JOIN customers c ON c.id = p.customer_id
        WHERE p.payment_date %s
        ORDER BY date DESC LIMIT %d`, cond, cond, historyLimit)

	entries := []HistoryEntry{}
	err := s.db.SelectContext(ctx, &entries, query, append(args, args...)...)
	return entries, err
}

// DashboardSummary backs the home screen tiles.
type DashboardSummary struct {
	TodaySales      decimal.Decimal `json:"today_sales"`
	OutstandingDebt decimal.Decimal `json:"outstanding_debt"`
	LowStockCount   int64           `json:"low_stock_count"`
}

// Dashboard reports today's sales, the outstanding debt across all customers
// and how many products are close to running out.
func (s *Store) Dashboard(ctx context.Context) (*DashboardSummary, error) {
	today, err := s.Summarize(ctx, WindowToday)
	if err != nil {
		return nil, err
	}

	var balances []decimal.Decimal
	if err := s.db.SelectContext(ctx, &balances, `SELECT total_debt FROM customers`); err != nil {
		return nil, err
	}
	outstanding := decimal.Zero
	for _, balance := range balances {
		outstanding = outstanding.Add(balance)
	}

	var lowStock int64
	if err := s.db.GetContext(ctx, &lowStock,
		`SELECT COUNT(*) FROM products WHERE stock < ?`, lowStockThreshold); err != nil {
		return nil, err
	}

	return &DashboardSummary{
		TodaySales:      today.TotalSales,
		OutstandingDebt: outstanding,
		LowStockCount:   lowStock,
	}, nil
}
