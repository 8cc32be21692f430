package httpx

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/farroshouse/ordering/internal/cart"
	"github.com/farroshouse/ordering/internal/checkout"
	"github.com/farroshouse/ordering/internal/menu"
	"github.com/farroshouse/ordering/internal/pricing"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type MenuItemResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Price          float64  `json:"price"`
	Image          string   `json:"image"`
	Category       string   `json:"category"`
	Popular        bool     `json:"popular"`
	Vegetarian     bool     `json:"vegetarian"`
	GlutenFree     bool     `json:"glutenFree"`
	SpiceLevel     int      `json:"spiceLevel,omitempty"`
	SpiceLevelText string   `json:"spiceLevelText,omitempty"`
	Allergens      []string `json:"allergens,omitempty"`
}

type MenuResponse struct {
	Success bool               `json:"success"`
	Items   []MenuItemResponse `json:"items"`
	Count   int                `json:"count"`
}

type CategoriesResponse struct {
	Success    bool     `json:"success"`
	Categories []string `json:"categories"`
}

// AddItemRequest takes quantity as a JSON number so fractional values can be
// rejected rather than truncated. A missing quantity adds one.
type AddItemRequest struct {
	ItemID              string   `json:"itemId"`
	Quantity            *float64 `json:"quantity"`
	SpecialInstructions string   `json:"specialInstructions"`
}

type SetQuantityRequest struct {
	Quantity *float64 `json:"quantity"`
}

type OrderTypeRequest struct {
	OrderType string `json:"orderType"`
}

type CartLineResponse struct {
	ItemID              string  `json:"itemId"`
	Name                string  `json:"name"`
	Description         string  `json:"description,omitempty"`
	Image               string  `json:"image,omitempty"`
	Price               float64 `json:"price"`
	Quantity            int     `json:"quantity"`
	SpecialInstructions string  `json:"specialInstructions,omitempty"`
	Amount              float64 `json:"amount"`
}

type CartResponse struct {
	Success     bool               `json:"success"`
	Items       []CartLineResponse `json:"items"`
	ItemCount   int                `json:"itemCount"`
	OrderType   string             `json:"orderType"`
	Subtotal    float64            `json:"subtotal"`
	Tax         float64            `json:"tax"`
	DeliveryFee float64            `json:"deliveryFee"`
	Total       float64            `json:"total"`
	Locked      bool               `json:"checkoutInProgress"`
}

type AddressDTO struct {
	Street   string `json:"street"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
	Country  string `json:"country,omitempty"`
}

type CustomerInfoDTO struct {
	Name    string     `json:"name"`
	Email   string     `json:"email"`
	Phone   string     `json:"phone"`
	Address AddressDTO `json:"address"`
}

type DetailsRequest struct {
	CustomerInfo        CustomerInfoDTO `json:"customerInfo"`
	OrderType           string          `json:"orderType"`
	SpecialInstructions string          `json:"specialInstructions"`
}

type PayRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

type DetailsResponse struct {
	CustomerInfo        CustomerInfoDTO `json:"customerInfo"`
	OrderType           string          `json:"orderType"`
	SpecialInstructions string          `json:"specialInstructions,omitempty"`
}

type OrderResponse struct {
	ID                  string             `json:"id"`
	Items               []CartLineResponse `json:"items"`
	ItemCount           int                `json:"itemCount"`
	Subtotal            float64            `json:"subtotal"`
	Tax                 float64            `json:"tax"`
	DeliveryFee         float64            `json:"deliveryFee"`
	Total               float64            `json:"total"`
	CustomerInfo        CustomerInfoDTO    `json:"customerInfo"`
	OrderType           string             `json:"orderType"`
	SpecialInstructions string             `json:"specialInstructions,omitempty"`
	PaymentMethod       string             `json:"paymentMethod"`
	SessionID           string             `json:"sessionId"`
	CheckoutURL         string             `json:"checkoutUrl,omitempty"`
	Status              string             `json:"status"`
	EstimatedTime       string             `json:"estimatedTime"`
	ReadyBy             string             `json:"readyBy"`
	CreatedAt           string             `json:"createdAt"`
}

type CheckoutResponse struct {
	Success bool             `json:"success"`
	Step    string           `json:"step"`
	Details *DetailsResponse `json:"details,omitempty"`
	Order   *OrderResponse   `json:"order,omitempty"`
}

type PaymentSessionResponse struct {
	Success       bool    `json:"success"`
	ID            string  `json:"id"`
	PaymentStatus string  `json:"paymentStatus"`
	CustomerEmail string  `json:"customerEmail,omitempty"`
	AmountTotal   float64 `json:"amountTotal"`
	OrderID       string  `json:"orderId,omitempty"`
	OrderType     string  `json:"orderType,omitempty"`
}

type ErrorResponse struct {
	Success   bool              `json:"success"`
	Error     string            `json:"error"`
	Details   string            `json:"details,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Retryable bool              `json:"retryable,omitempty"`
}

// quantity converts a JSON number to a whole quantity.
func quantity(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, cart.ErrInvalidQuantity
	}
	return int(v), nil
}

func money(d decimal.Decimal) float64 { return d.InexactFloat64() }

func mapMenuItem(it menu.Item) MenuItemResponse {
	out := MenuItemResponse{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Price:       money(it.UnitPrice),
		Image:       it.Image,
		Category:    it.Category,
		Popular:     it.Flags.Popular,
		Vegetarian:  it.Flags.Vegetarian,
		GlutenFree:  it.Flags.GlutenFree,
		SpiceLevel:  it.SpiceLevel,
		Allergens:   it.Allergens,
	}
	if it.SpiceLevel > 0 {
		out.SpiceLevelText = menu.SpiceLevelText(it.SpiceLevel)
	}
	return out
}

func mapLines(lines []cart.PricedLine) []CartLineResponse {
	out := make([]CartLineResponse, len(lines))
	for i, l := range lines {
		out[i] = CartLineResponse{
			ItemID:              l.ItemID,
			Name:                l.Name,
			Description:         l.Description,
			Image:               l.Image,
			Price:               money(l.UnitPrice),
			Quantity:            l.Quantity,
			SpecialInstructions: l.SpecialInstructions,
			Amount:              money(l.Amount),
		}
	}
	return out
}

func mapCart(s cart.Snapshot, locked bool) CartResponse {
	return CartResponse{
		Success:     true,
		Items:       mapLines(s.Lines),
		ItemCount:   s.ItemCount(),
		OrderType:   string(s.OrderType),
		Subtotal:    money(s.Subtotal),
		Tax:         money(s.Tax),
		DeliveryFee: money(s.DeliveryFee),
		Total:       money(s.Total),
		Locked:      locked,
	}
}

func (req DetailsRequest) toDetails() checkout.Details {
	c := req.CustomerInfo
	return checkout.Details{
		Customer: checkout.CustomerInfo{
			Name:  c.Name,
			Email: c.Email,
			Phone: c.Phone,
			Address: checkout.Address{
				Street:   c.Address.Street,
				City:     c.Address.City,
				Postcode: c.Address.Postcode,
				Country:  c.Address.Country,
			},
		},
		OrderType:           pricing.OrderType(req.OrderType),
		SpecialInstructions: req.SpecialInstructions,
	}
}

func mapCustomer(c checkout.CustomerInfo) CustomerInfoDTO {
	return CustomerInfoDTO{
		Name:  c.Name,
		Email: c.Email,
		Phone: c.Phone,
		Address: AddressDTO{
			Street:   c.Address.Street,
			City:     c.Address.City,
			Postcode: c.Address.Postcode,
			Country:  c.Address.Country,
		},
	}
}

func mapOrder(o *checkout.Order) *OrderResponse {
	return &OrderResponse{
		ID:                  o.ID,
		Items:               mapLines(o.Lines),
		ItemCount:           o.ItemCount(),
		Subtotal:            money(o.Totals.Subtotal),
		Tax:                 money(o.Totals.Tax),
		DeliveryFee:         money(o.Totals.DeliveryFee),
		Total:               money(o.Totals.Total),
		CustomerInfo:        mapCustomer(o.Customer),
		OrderType:           string(o.OrderType),
		SpecialInstructions: o.SpecialInstructions,
		PaymentMethod:       o.PaymentMethod,
		SessionID:           o.SessionID,
		CheckoutURL:         o.CheckoutURL,
		Status:              o.Status,
		EstimatedTime:       o.EstimatedTime,
		ReadyBy:             o.ReadyBy.Format(time.RFC3339),
		CreatedAt:           o.CreatedAt.Format(time.RFC3339),
	}
}

func mapState(s checkout.State) CheckoutResponse {
	out := CheckoutResponse{Success: true, Step: string(s.Step)}
	if s.Details != nil {
		out.Details = &DetailsResponse{
			CustomerInfo:        mapCustomer(s.Details.Customer),
			OrderType:           string(s.Details.OrderType),
			SpecialInstructions: s.Details.SpecialInstructions,
		}
	}
	if s.Order != nil {
		out.Order = mapOrder(s.Order)
	}
	return out
}
