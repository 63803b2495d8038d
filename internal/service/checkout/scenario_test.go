package checkout_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/service/checkout"
	"github.com/vladislavdragonenkov/checkout/internal/service/payment"
	"github.com/vladislavdragonenkov/checkout/internal/storage/memory"
)

// CheckoutScenarioTestSuite прогоняет заказы через склад в памяти и mock-шлюз.
type CheckoutScenarioTestSuite struct {
	suite.Suite
	ctx       context.Context
	inventory domain.Inventory
	gateway   *payment.MockGateway
	timeline  domain.TimelineRepository
	logger    *log.Entry
	seq       int
}

func TestCheckoutScenarioTestSuite(t *testing.T) {
	suite.Run(t, new(CheckoutScenarioTestSuite))
}

func (suite *CheckoutScenarioTestSuite) SetupTest() {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel) // Уменьшаем шум в тестах
	suite.logger = baseLogger.WithField("component", "checkout-test")

	inv, err := memory.NewInventory([]domain.Item{
		{Code: "ITEM001", Name: "Super Widget", UnitPrice: decimal.RequireFromString("19.99"), Stock: 10},
		{Code: "ITEM002", Name: "Mega Gadget", UnitPrice: decimal.RequireFromString("29.99"), Stock: 5},
		{Code: "ITEM003", Name: "Basic Thingamajig", UnitPrice: decimal.RequireFromString("9.99"), Stock: 20},
	})
	require.NoError(suite.T(), err)

	suite.ctx = context.Background()
	suite.inventory = inv
	suite.gateway = payment.NewMockGateway()
	suite.timeline = memory.NewTimelineRepository()
	suite.seq = 0
}

func (suite *CheckoutScenarioTestSuite) newProcessor(customer domain.Customer) *checkout.Processor {
	suite.seq++
	id := fmt.Sprintf("ORD-TEST-%d", suite.seq)
	return checkout.New(suite.inventory, customer, suite.gateway,
		checkout.WithLogger(suite.logger),
		checkout.WithTimeline(suite.timeline),
		checkout.WithIDGenerator(func() string { return id }),
	)
}

func (suite *CheckoutScenarioTestSuite) item(code string) domain.Item {
	item, err := suite.inventory.FindItem(suite.ctx, code)
	require.NoError(suite.T(), err)
	return item
}

func validCustomer() domain.Customer {
	return domain.Customer{Name: "John Doe", Email: "john.doe@example.com", Address: "123 Main St, Anytown, USA"}
}

func validCard() domain.Card {
	return domain.Card{Number: "1234567890123456", ExpiryDate: "12/25", CVV: "123"}
}

func (suite *CheckoutScenarioTestSuite) TestScenarioA_SuccessfulCheckout() {
	p := suite.newProcessor(validCustomer())

	require.NoError(suite.T(), p.AddItem(suite.ctx, "ITEM001", 2))
	require.NoError(suite.T(), p.AddItem(suite.ctx, "ITEM003", 1))

	require.NoError(suite.T(), p.CompleteOrder(suite.ctx, validCard()))
	require.Equal(suite.T(), domain.OrderStatusPaid, p.Status())

	totals := p.Totals()
	require.True(suite.T(), decimal.RequireFromString("49.97").Equal(totals.Subtotal), totals.Subtotal.String())
	require.True(suite.T(), decimal.RequireFromString("3.4979").Equal(totals.Tax), totals.Tax.String())
	require.True(suite.T(), decimal.RequireFromString("53.4679").Equal(totals.Total), totals.Total.String())

	require.Equal(suite.T(), 8, suite.item("ITEM001").Stock)
	require.Equal(suite.T(), 0, suite.item("ITEM001").Reserved)
	require.Equal(suite.T(), 19, suite.item("ITEM003").Stock)
	require.Equal(suite.T(), 0, suite.item("ITEM003").Reserved)

	require.Equal(suite.T(), 1, suite.gateway.Calls())
	require.True(suite.T(), totals.Total.Equal(suite.gateway.LastAmount))

	summary, err := p.Summary()
	require.NoError(suite.T(), err)
	require.Contains(suite.T(), summary.String(), "Order Summary for Order ID: ORD-TEST-1")
	require.Contains(suite.T(), summary.String(), "Total: $53.47")
}

func (suite *CheckoutScenarioTestSuite) TestScenarioB_DeclinedCard() {
	p := suite.newProcessor(validCustomer())
	require.NoError(suite.T(), p.AddItem(suite.ctx, "ITEM001", 2))
	require.NoError(suite.T(), p.AddItem(suite.ctx, "ITEM003", 1))

	suite.gateway.ChargeErr = domain.ErrPaymentDeclined
	err := p.CompleteOrder(suite.ctx, domain.Card{Number: domain.DeclineCardNumber})
	require.ErrorIs(suite.T(), err, domain.ErrPaymentDeclined)
	require.True(suite.T(), domain.IsRetryable(err))
	require.Equal(suite.T(), domain.OrderStatusPaymentFailed, p.Status())

	// Остаток не списан, резерв удерживается до повторной попытки или отмены.
	require.Equal(suite.T(), 10, suite.item("ITEM001").Stock)
	require.Equal(suite.T(), 20, suite.item("ITEM003").Stock)
	require.Equal(suite.T(), 2, suite.item("ITEM001").Reserved)

	_, err = p.Summary()
	require.ErrorIs(suite.T(), err, domain.ErrSummaryUnavailable)
}

func (suite *CheckoutScenarioTestSuite) TestScenarioB_RetryWithNewCardAfterDecline() {
	p := suite.newProcessor(validCustomer())
	require.NoError(suite.T(), p.AddItem(suite.ctx, "ITEM002", 1))

	suite.gateway.ChargeErr = domain.ErrPaymentDeclined
	require.Error(suite.T(), p.CompleteOrder(suite.ctx, domain.Card{Number: domain.DeclineCardNumber}))

	// После отказа корзину можно дополнить.
	require.NoError(suite.T(), p.AddItem(suite.ctx, "ITEM003", 1))

	suite.gateway.ChargeErr = nil
	require.NoError(suite.T(), p.CompleteOrder(suite.ctx, validCard()))
	require.Equal(suite.T(), domain.OrderStatusPaid, p.Status())
	require.Equal(suite.T(), 4, suite.item("ITEM002").Stock)
	require.Equal(suite.T(), 19, suite.item("ITEM003").Stock)
	require.Equal(suite.T(), 2, suite.gateway.Calls())
}

func (suite *CheckoutScenarioTestSuite) TestScenarioC_BlankAddressSkipsPayment() {
	customer := validCustomer()
	customer.Address = "   "
	p := suite.newProcessor(customer)
	require.NoError(suite.T(), p.AddItem(suite.ctx, "ITEM001", 1))

	err := p.CompleteOrder(suite.ctx, validCard())
	require.ErrorIs(suite.T(), err, domain.ErrValidation)

	var validationErr *domain.ValidationError
	require.True(suite.T(), errors.As(err, &validationErr))
	require.Equal(suite.T(), "address", validationErr.Field)

	require.Equal(suite.T(), domain.OrderStatusValidationFailed, p.Status())
	require.Equal(suite.T(), 0, suite.gateway.Calls())
	require.Equal(suite.T(), 10, suite.item("ITEM001").Stock)

	// Корзина после validation_failed заблокирована.
	require.ErrorIs(suite.T(), p.AddItem(suite.ctx, "ITEM003", 1), domain.ErrInvalidState)
}

func (suite *CheckoutScenarioTestSuite) TestScenarioD_InsufficientStockThenEmptyCart() {
	p := suite.newProcessor(validCustomer())

	err := p.AddItem(suite.ctx, "ITEM002", 6)
	require.ErrorIs(suite.T(), err, domain.ErrInsufficientStock)

	var stockErr *domain.InsufficientStockError
	require.True(suite.T(), errors.As(err, &stockErr))
	require.Equal(suite.T(), "insufficient stock for Mega Gadget. Available: 5, Requested: 6", stockErr.Error())

	order := p.Order()
	require.True(suite.T(), order.Cart.Empty())
	require.Equal(suite.T(), 0, suite.item("ITEM002").Reserved)

	err = p.CompleteOrder(suite.ctx, validCard())
	require.ErrorIs(suite.T(), err, domain.ErrEmptyCart)
	require.Equal(suite.T(), domain.OrderStatusPending, p.Status())
	require.Equal(suite.T(), 0, suite.gateway.Calls())
}

func (suite *CheckoutScenarioTestSuite) TestReservationPreventsOverdraw() {
	first := suite.newProcessor(validCustomer())
	second := suite.newProcessor(domain.Customer{Name: "Jane Smith", Email: "jane.smith@example.com", Address: "456 Oak Ave, Otherville, USA"})

	require.NoError(suite.T(), first.AddItem(suite.ctx, "ITEM002", 4))
	require.ErrorIs(suite.T(), second.AddItem(suite.ctx, "ITEM002", 2), domain.ErrInsufficientStock)
	require.NoError(suite.T(), second.AddItem(suite.ctx, "ITEM002", 1))

	require.NoError(suite.T(), first.CompleteOrder(suite.ctx, validCard()))
	require.NoError(suite.T(), second.CompleteOrder(suite.ctx, validCard()))

	item := suite.item("ITEM002")
	require.Equal(suite.T(), 0, item.Stock)
	require.Equal(suite.T(), 0, item.Reserved)
}

func (suite *CheckoutScenarioTestSuite) TestCancelReleasesReservation() {
	p := suite.newProcessor(validCustomer())
	require.NoError(suite.T(), p.AddItem(suite.ctx, "ITEM001", 3))
	require.Equal(suite.T(), 7, suite.item("ITEM001").Available())

	require.NoError(suite.T(), p.Cancel(suite.ctx, "customer changed mind"))
	require.Equal(suite.T(), domain.OrderStatusCanceled, p.Status())
	require.Equal(suite.T(), 10, suite.item("ITEM001").Available())

	require.ErrorIs(suite.T(), p.CompleteOrder(suite.ctx, validCard()), domain.ErrInvalidState)
	require.ErrorIs(suite.T(), p.Cancel(suite.ctx, "again"), domain.ErrInvalidState)
}

func (suite *CheckoutScenarioTestSuite) TestPaidOrderIsFinal() {
	p := suite.newProcessor(validCustomer())
	require.NoError(suite.T(), p.AddItem(suite.ctx, "ITEM003", 2))
	require.NoError(suite.T(), p.CompleteOrder(suite.ctx, validCard()))

	require.ErrorIs(suite.T(), p.AddItem(suite.ctx, "ITEM003", 1), domain.ErrInvalidState)
	require.ErrorIs(suite.T(), p.CompleteOrder(suite.ctx, validCard()), domain.ErrInvalidState)
	require.ErrorIs(suite.T(), p.Cancel(suite.ctx, "too late"), domain.ErrInvalidState)
	require.Equal(suite.T(), 1, suite.gateway.Calls())
	require.Equal(suite.T(), 18, suite.item("ITEM003").Stock)
}

func (suite *CheckoutScenarioTestSuite) TestStockNeverNegative() {
	card := validCard()
	for i := 0; i < 8; i++ {
		p := suite.newProcessor(validCustomer())
		if err := p.AddItem(suite.ctx, "ITEM002", 2); err != nil {
			require.ErrorIs(suite.T(), err, domain.ErrInsufficientStock)
			continue
		}
		require.NoError(suite.T(), p.CompleteOrder(suite.ctx, card))
	}

	items, err := suite.inventory.Items(suite.ctx)
	require.NoError(suite.T(), err)
	for _, item := range items {
		require.GreaterOrEqual(suite.T(), item.Stock, 0, item.Code)
		require.GreaterOrEqual(suite.T(), item.Available(), 0, item.Code)
	}
	require.Equal(suite.T(), 1, suite.item("ITEM002").Stock)
}

func (suite *CheckoutScenarioTestSuite) TestTimelineRecordsLifecycle() {
	p := suite.newProcessor(validCustomer())
	require.NoError(suite.T(), p.AddItem(suite.ctx, "ITEM001", 1))
	require.Error(suite.T(), p.AddItem(suite.ctx, "MISSING", 1))
	require.NoError(suite.T(), p.CompleteOrder(suite.ctx, validCard()))

	events, err := p.Timeline()
	require.NoError(suite.T(), err)

	types := make([]string, 0, len(events))
	for _, event := range events {
		types = append(types, event.Type)
	}
	require.Equal(suite.T(), []string{
		domain.TimelineOrderCreated,
		domain.TimelineItemAdded,
		domain.TimelineItemRejected,
		domain.TimelineStatusChanged,
		domain.TimelineInventoryCommitted,
		domain.TimelineConfirmationSent,
	}, types)
}
