package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"farmcal/internal/model"
)

// ExpenseEndpoints are the expense ledger routes. Listing filters by
// "date" (YYYY-MM-DD).
var ExpenseEndpoints = Endpoints{
	List:   "/Expenses/all-expenses-records",
	Create: "/Expenses/add-expense-record",
}

type ExpenseRepository = Repository[model.Expense, model.CreateExpense]

func NewExpenseRepository(client *Client) *ExpenseRepository {
	return NewRepository[model.Expense, model.CreateExpense](client, ExpenseEndpoints)
}

// EggEndpoints are the egg inventory routes.
var EggEndpoints = Endpoints{
	List:   "/Inventory/all-egg-records",
	Create: "/Inventory/add-egg-record",
}

type EggRepository = Repository[model.Egg, model.CreateEgg]

func NewEggRepository(client *Client) *EggRepository {
	return NewRepository[model.Egg, model.CreateEgg](client, EggEndpoints)
}

// OrderEndpoints are the order routes; the backend only accepts new orders.
var OrderEndpoints = Endpoints{
	Create: "/Order/create-order",
}

type OrderRepository = Repository[model.Order, model.CreateOrder]

func NewOrderRepository(client *Client) *OrderRepository {
	return NewRepository[model.Order, model.CreateOrder](client, OrderEndpoints)
}

// SalesEndpoints are the sales routes.
var SalesEndpoints = Endpoints{
	List:   "/Sales/all-sales",
	Create: "/Sales/add-sales-record",
}

const salesNamesPath = "/Sales/all-transactedby-names"

// SalesRepository adds the seller-name lookup to the generic sales routes.
type SalesRepository struct {
	*Repository[model.Sale, model.CreateSale]
}

func NewSalesRepository(client *Client) *SalesRepository {
	return &SalesRepository{NewRepository[model.Sale, model.CreateSale](client, SalesEndpoints)}
}

// TransactedByNames lists everyone who has recorded a sale.
func (r *SalesRepository) TransactedByNames(ctx context.Context) ([]string, error) {
	var out FetchResponse[string]
	if err := r.client.do(ctx, http.MethodGet, salesNamesPath, nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Results == nil {
		return []string{}, nil
	}
	return out.Results, nil
}

// SalesFilter narrows a sales listing. Empty fields are not sent.
type SalesFilter struct {
	TransactedBy string
	FromDate     string `validate:"omitempty,datetime=2006-01-02"`
	ToDate       string `validate:"omitempty,datetime=2006-01-02"`
}

// Values validates f and renders it as list query parameters.
func (f SalesFilter) Values() (url.Values, error) {
	if err := model.Validate(f); err != nil {
		return nil, fmt.Errorf("sales filter: %w", err)
	}
	q := url.Values{}
	if f.TransactedBy != "" {
		q.Set("transactedBy", f.TransactedBy)
	}
	if f.FromDate != "" {
		q.Set("fromDate", f.FromDate)
	}
	if f.ToDate != "" {
		q.Set("toDate", f.ToDate)
	}
	return q, nil
}

// NotificationEndpoints are the notification routes. Update marks a
// notification read.
var NotificationEndpoints = Endpoints{
	List:   "/Notification/notifications",
	Update: "/Notification/markNotificationAsRead",
	Delete: "/Notification/deleteNotification",
}

// NotificationRepository adds MarkRead to the generic notification routes.
type NotificationRepository struct {
	*Repository[model.Notification, model.Notification]
}

func NewNotificationRepository(client *Client) *NotificationRepository {
	return &NotificationRepository{NewRepository[model.Notification, model.Notification](client, NotificationEndpoints)}
}

// MarkRead flags one notification as read. The backend takes no body.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	return r.client.do(ctx, http.MethodPut, r.ep.Update+"/"+url.PathEscape(id), nil, nil, nil)
}
