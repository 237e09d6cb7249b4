package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shehabalqudiry/vend/domain"
	"github.com/shehabalqudiry/vend/internal/ledger"
)

func TestFindByBarcode(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	created := mustCreateProduct(t, s, "Cola", "9.5", "6291041500213", 24)

	found, err := s.FindByBarcode(ctx, "6291041500213")
	if err != nil {
		t.Fatalf("find by barcode: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatalf("expected product %d, got %+v", created.ID, found)
	}

	missing, err := s.FindByBarcode(ctx, "0000000000000")
	if err != nil {
		t.Fatalf("find unknown barcode: %v", err)
	}
	if missing != nil {
		t.Fatalf("unknown barcode should yield nil, got %+v", missing)
	}
}

func TestDuplicateBarcodeRejected(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	mustCreateProduct(t, s, "Cola", "9.5", "6291041500213", 24)

	_, err := s.CreateProduct(ctx, ledger.ProductInput{
		Name:    "Cola Zero",
		Price:   dec("9.5"),
		Barcode: "6291041500213",
	})
	if !errors.Is(err, ledger.ErrConstraint) {
		t.Fatalf("expected constraint violation, got %v", err)
	}
}

func TestEmptyBarcodesDoNotCollide(t *testing.T) {
	s, _ := setupTestStore(t)

	mustCreateProduct(t, s, "Loose rice", "4", "", 50)
	mustCreateProduct(t, s, "Loose sugar", "5", "", 50)

	products, err := s.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
}

func TestListProductsNewestFirst(t *testing.T) {
	s, _ := setupTestStore(t)

	first := mustCreateProduct(t, s, "First", "1", "", 1)
	second := mustCreateProduct(t, s, "Second", "2", "", 1)

	products, err := s.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 2 || products[0].ID != second.ID || products[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", products)
	}
}

func TestDeleteProductWithSaleHistoryForbidden(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	p := mustCreateProduct(t, s, "Juice", "6", "", 12)
	if _, err := s.CommitSale(ctx, []ledger.SaleLine{
		{ProductID: p.ID, Quantity: 1, UnitPrice: dec("6")},
	}, domain.PaymentCash, nil); err != nil {
		t.Fatalf("commit sale: %v", err)
	}

	if err := s.DeleteProduct(ctx, p.ID); !errors.Is(err, ledger.ErrConstraint) {
		t.Fatalf("expected constraint violation, got %v", err)
	}

	// The product must still resolve for historical receipts.
	if _, err := s.GetProduct(ctx, p.ID); err != nil {
		t.Fatalf("product should survive rejected delete: %v", err)
	}
}

func TestDeleteUnsoldProduct(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	p := mustCreateProduct(t, s, "Sponge", "3", "", 5)
	if err := s.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	if _, err := s.GetProduct(ctx, p.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}

	if err := s.DeleteProduct(ctx, p.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected not found for second delete, got %v", err)
	}
}

func TestResetStock(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	p := mustCreateProduct(t, s, "Matches", "1", "", 40)
	if err := s.ResetStock(ctx, p.ID); err != nil {
		t.Fatalf("reset stock: %v", err)
	}
	after, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if after.Stock != 0 {
		t.Fatalf("expected stock 0 got %d", after.Stock)
	}

	if err := s.ResetStock(ctx, 555); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProductValidation(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateProduct(ctx, ledger.ProductInput{Price: dec("5")}); !errors.Is(err, ledger.ErrValidation) {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}
	if _, err := s.CreateProduct(ctx, ledger.ProductInput{Name: "Gum", Price: dec("-1")}); !errors.Is(err, ledger.ErrValidation) {
		t.Fatalf("expected validation error for negative price, got %v", err)
	}
}

func TestListCustomersByOutstandingDebt(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	p := mustCreateProduct(t, s, "Rice", "10", "", 100)
	small := mustCreateCustomer(t, s, "Small")
	big := mustCreateCustomer(t, s, "Big")

	if _, err := s.CommitSale(ctx, []ledger.SaleLine{
		{ProductID: p.ID, Quantity: 1, UnitPrice: dec("10")},
	}, domain.PaymentCredit, ptr(small.ID)); err != nil {
		t.Fatalf("commit sale: %v", err)
	}
	if _, err := s.CommitSale(ctx, []ledger.SaleLine{
		{ProductID: p.ID, Quantity: 5, UnitPrice: dec("10")},
	}, domain.PaymentCredit, ptr(big.ID)); err != nil {
		t.Fatalf("commit sale: %v", err)
	}

	customers, err := s.ListCustomers(ctx)
	if err != nil {
		t.Fatalf("list customers: %v", err)
	}
	if len(customers) != 2 || customers[0].ID != big.ID {
		t.Fatalf("expected largest debtor first, got %+v", customers)
	}
}
