package backend_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"farmcal/internal/backend"
	"farmcal/internal/model"
)

// recorder answers every request with body and remembers what it saw.
type recorder struct {
	mu    sync.Mutex
	calls []string
	query []string
	body  string
}

func (rec *recorder) client(t *testing.T, body string) *backend.Client {
	t.Helper()
	rec.respond(body)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		rec.calls = append(rec.calls, r.Method+" "+r.URL.Path)
		rec.query = append(rec.query, r.URL.RawQuery)
		body := rec.body
		rec.mu.Unlock()
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c, err := backend.NewClient(srv.URL+"/api", 0)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func (rec *recorder) respond(body string) {
	rec.mu.Lock()
	rec.body = body
	rec.mu.Unlock()
}

func (rec *recorder) last() (string, string) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.calls) == 0 {
		return "", ""
	}
	return rec.calls[len(rec.calls)-1], rec.query[len(rec.query)-1]
}

func TestExpenseRepository(t *testing.T) {
	rec := &recorder{}
	repo := backend.NewExpenseRepository(rec.client(t, `{"results":[{"id":3,"name":"Feed","cost":1250.5,"createdAt":"2026-01-22T09:00:00"}]}`))
	ctx := context.Background()

	resp, err := repo.List(ctx, url.Values{"date": {"2026-01-22"}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if call, q := rec.last(); call != "GET /api/Expenses/all-expenses-records" || q != "date=2026-01-22" {
		t.Errorf("list = %s ?%s", call, q)
	}
	if len(resp.Results) != 1 || resp.Results[0].Cost != 1250.5 {
		t.Errorf("Results = %+v", resp.Results)
	}

	if _, err := repo.Create(ctx, model.CreateExpense{Name: "Vitamins", Cost: 300}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if call, _ := rec.last(); call != "POST /api/Expenses/add-expense-record" {
		t.Errorf("create = %s", call)
	}

	if err := repo.Delete(ctx, "3"); !errors.Is(err, backend.ErrUnsupported) {
		t.Errorf("Delete err = %v, want ErrUnsupported", err)
	}
}

func TestCreateRejectsInvalidPayload(t *testing.T) {
	rec := &recorder{}
	c := rec.client(t, `{}`)
	ctx := context.Background()

	if _, err := backend.NewExpenseRepository(c).Create(ctx, model.CreateExpense{Cost: -1}); !errors.Is(err, backend.ErrInvalidPayload) {
		t.Errorf("expense err = %v, want ErrInvalidPayload", err)
	}
	if _, err := backend.NewEggRepository(c).Create(ctx, model.CreateEgg{HarvestBy: "Lito", EggSize: "Jumbo", EggCount: 12}); !errors.Is(err, backend.ErrInvalidPayload) {
		t.Errorf("egg err = %v, want ErrInvalidPayload", err)
	}
	if _, err := backend.NewSalesRepository(c).Create(ctx, model.CreateSale{TransactedBy: "Ana", EggSize: "Large", Quantity: 101}); !errors.Is(err, backend.ErrInvalidPayload) {
		t.Errorf("sale err = %v, want ErrInvalidPayload", err)
	}
	if call, _ := rec.last(); call != "" {
		t.Errorf("invalid payload reached the backend: %s", call)
	}
}

func TestEggAndOrderRepositories(t *testing.T) {
	rec := &recorder{}
	c := rec.client(t, `{"results":[{"id":1,"harvestBy":"Lito","eggSize":"Medium","eggCount":30}]}`)
	ctx := context.Background()

	eggs, err := backend.NewEggRepository(c).ListAll(ctx, nil, 1)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if call, _ := rec.last(); call != "GET /api/Inventory/all-egg-records" || len(eggs) != 1 || eggs[0].EggCount != 30 {
		t.Errorf("eggs = %s %+v", call, eggs)
	}
	if _, err := backend.NewEggRepository(c).Create(ctx, model.CreateEgg{HarvestBy: "Lito", EggSize: "Small", EggCount: 0}); err != nil {
		t.Fatalf("egg Create: %v", err)
	}
	if call, _ := rec.last(); call != "POST /api/Inventory/add-egg-record" {
		t.Errorf("egg create = %s", call)
	}

	orders := backend.NewOrderRepository(c)
	rec.respond(``)
	if _, err := orders.Create(ctx, model.CreateOrder{CustomerName: "Aling Nena", EggSize: "Large", Quantity: 5}); err != nil {
		t.Fatalf("order Create: %v", err)
	}
	if call, _ := rec.last(); call != "POST /api/Order/create-order" {
		t.Errorf("order create = %s", call)
	}
	if _, err := orders.List(ctx, nil); !errors.Is(err, backend.ErrUnsupported) {
		t.Errorf("order List err = %v, want ErrUnsupported", err)
	}
}

func TestSalesRepository(t *testing.T) {
	rec := &recorder{}
	repo := backend.NewSalesRepository(rec.client(t, `{"results":["Ana","Ben"]}`))
	ctx := context.Background()

	names, err := repo.TransactedByNames(ctx)
	if err != nil {
		t.Fatalf("TransactedByNames: %v", err)
	}
	if call, _ := rec.last(); call != "GET /api/Sales/all-transactedby-names" || len(names) != 2 || names[1] != "Ben" {
		t.Errorf("names = %s %v", call, names)
	}

	q, err := backend.SalesFilter{TransactedBy: "Ana", FromDate: "2026-01-01", ToDate: "2026-01-31"}.Values()
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	rec.respond(`{"results":[{"id":4,"transactedBy":"Ana","eggSize":"Large","quantity":12,"totalSales":96}]}`)
	sales, err := repo.List(ctx, q)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	call, raw := rec.last()
	if call != "GET /api/Sales/all-sales" || raw != "fromDate=2026-01-01&toDate=2026-01-31&transactedBy=Ana" {
		t.Errorf("list = %s ?%s", call, raw)
	}
	if len(sales.Results) != 1 || sales.Results[0].TotalSales != 96 {
		t.Errorf("Results = %+v", sales.Results)
	}

	if _, err := (backend.SalesFilter{FromDate: "01/01/2026"}).Values(); err == nil {
		t.Error("Values(bad fromDate) = nil error")
	}
	if q, _ := (backend.SalesFilter{}).Values(); len(q) != 0 {
		t.Errorf("empty filter = %v", q)
	}
}

func TestNotificationRepository(t *testing.T) {
	rec := &recorder{}
	repo := backend.NewNotificationRepository(rec.client(t, `{"results":[{"id":5,"message":"Low feed stock","isRead":false}]}`))
	ctx := context.Background()

	resp, err := repo.List(ctx, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Message != "Low feed stock" {
		t.Errorf("Results = %+v", resp.Results)
	}

	rec.respond(``)
	if err := repo.MarkRead(ctx, "5"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if call, _ := rec.last(); call != "PUT /api/Notification/markNotificationAsRead/5" {
		t.Errorf("mark read = %s", call)
	}
	if err := repo.Delete(ctx, "5"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if call, _ := rec.last(); call != "DELETE /api/Notification/deleteNotification/5" {
		t.Errorf("delete = %s", call)
	}
}
