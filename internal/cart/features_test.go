package cart

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/farroshouse/ordering/internal/menu"
	"github.com/farroshouse/ordering/internal/pricing"
)

type cartFeature struct {
	items  []menu.Item
	engine *Engine
	err    error
}

func (f *cartFeature) reset() {
	f.items = nil
	f.engine = nil
	f.err = nil
}

func (f *cartFeature) aMenuWithItemPriced(id, price string) error {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	f.items = append(f.items, menu.Item{ID: id, Name: "Item " + id, UnitPrice: p})
	return nil
}

func (f *cartFeature) anEmptyCart() error {
	c, err := menu.New(f.items)
	if err != nil {
		return err
	}
	f.engine = New(c, pricing.DefaultPolicy())
	return nil
}

func (f *cartFeature) iAddOf(quantity int, id string) error {
	f.err = f.engine.AddItem(context.Background(), id, quantity, "")
	return nil
}

func (f *cartFeature) iRemove(id string) error {
	f.err = f.engine.RemoveItem(context.Background(), id)
	return nil
}

func (f *cartFeature) iSetTheQuantityOfTo(id string, quantity int) error {
	f.err = f.engine.SetQuantity(context.Background(), id, quantity)
	return nil
}

func (f *cartFeature) iChoose(orderType string) error {
	f.err = f.engine.SetOrderType(context.Background(), pricing.OrderType(orderType))
	return nil
}

func (f *cartFeature) iClearTheCart() error {
	f.err = f.engine.Clear(context.Background())
	return nil
}

func (f *cartFeature) theCartHasLines(n int) error {
	if got := len(f.engine.Snapshot().Lines); got != n {
		return fmt.Errorf("expected %d lines, got %d", n, got)
	}
	return nil
}

func (f *cartFeature) theCartIsEmpty() error {
	return f.theCartHasLines(0)
}

func (f *cartFeature) theQuantityOfIs(id string, n int) error {
	for _, l := range f.engine.Snapshot().Lines {
		if l.ItemID == id {
			if l.Quantity != n {
				return fmt.Errorf("expected quantity %d of %q, got %d", n, id, l.Quantity)
			}
			return nil
		}
	}
	return fmt.Errorf("no line for %q", id)
}

func money(field string, got decimal.Decimal, want string) error {
	if got.StringFixed(2) != want {
		return fmt.Errorf("expected %s %s, got %s", field, want, got.StringFixed(2))
	}
	return nil
}

func (f *cartFeature) theSubtotalIs(want string) error {
	return money("subtotal", f.engine.Snapshot().Subtotal, want)
}

func (f *cartFeature) theTaxIs(want string) error {
	return money("tax", f.engine.Snapshot().Tax, want)
}

func (f *cartFeature) theDeliveryFeeIs(want string) error {
	return money("delivery fee", f.engine.Snapshot().DeliveryFee, want)
}

func (f *cartFeature) theTotalIs(want string) error {
	return money("total", f.engine.Snapshot().Total, want)
}

func (f *cartFeature) allTotalsAreZero() error {
	s := f.engine.Snapshot()
	for name, v := range map[string]decimal.Decimal{
		"subtotal": s.Subtotal, "tax": s.Tax, "delivery fee": s.DeliveryFee, "total": s.Total,
	} {
		if !v.IsZero() {
			return fmt.Errorf("expected %s to be zero, got %s", name, v)
		}
	}
	return nil
}

func (f *cartFeature) theOperationFailsWith(msg string) error {
	if f.err == nil {
		return fmt.Errorf("expected an error containing %q", msg)
	}
	if !strings.Contains(f.err.Error(), msg) {
		return fmt.Errorf("expected error containing %q, got %q", msg, f.err.Error())
	}
	return nil
}

func initializeCartScenario(ctx *godog.ScenarioContext) {
	f := &cartFeature{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		f.reset()
		return ctx, nil
	})

	ctx.Step(`^a menu with item "([^"]*)" priced (\d+\.\d+)$`, f.aMenuWithItemPriced)
	ctx.Step(`^an empty cart$`, f.anEmptyCart)

	ctx.Step(`^I add (-?\d+) of "([^"]*)"$`, f.iAddOf)
	ctx.Step(`^I remove "([^"]*)"$`, f.iRemove)
	ctx.Step(`^I set the quantity of "([^"]*)" to (-?\d+)$`, f.iSetTheQuantityOfTo)
	ctx.Step(`^I choose "([^"]*)"$`, f.iChoose)
	ctx.Step(`^I clear the cart$`, f.iClearTheCart)

	ctx.Step(`^the cart has (\d+) lines?$`, f.theCartHasLines)
	ctx.Step(`^the cart is empty$`, f.theCartIsEmpty)
	ctx.Step(`^the quantity of "([^"]*)" is (\d+)$`, f.theQuantityOfIs)
	ctx.Step(`^the subtotal is (\d+\.\d{2})$`, f.theSubtotalIs)
	ctx.Step(`^the tax is (\d+\.\d{2})$`, f.theTaxIs)
	ctx.Step(`^the delivery fee is (\d+\.\d{2})$`, f.theDeliveryFeeIs)
	ctx.Step(`^the total is (\d+\.\d{2})$`, f.theTotalIs)
	ctx.Step(`^all totals are zero$`, f.allTotalsAreZero)
	ctx.Step(`^the operation fails with "([^"]*)"$`, f.theOperationFailsWith)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeCartScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/cart.feature"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
