package http

import (
	"cncraft/internal/cart"
	"cncraft/internal/models"
	"cncraft/internal/service"
)

type lineResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

type totalsResponse struct {
	Lines             []lineResponse `json:"lines"`
	Total             string         `json:"total"`
	DeliveryCost      string         `json:"delivery_cost"`
	FreeDeliveryDelta string         `json:"free_delivery_delta,omitempty"`
	GrandTotal        string         `json:"grand_total"`
	ProductCount      int            `json:"product_count"`
}

type countResponse struct {
	ProductCount int `json:"product_count"`
	LineCount    int `json:"line_count"`
}

type orderItemResponse struct {
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	ProductSize   string `json:"product_size,omitempty"`
	Quantity      int    `json:"quantity"`
	LineitemTotal string `json:"lineitem_total"`
}

type orderResponse struct {
	OrderNumber    string              `json:"order_number"`
	FullName       string              `json:"full_name"`
	Email          string              `json:"email"`
	PhoneNumber    string              `json:"phone_number"`
	Country        string              `json:"country"`
	Postcode       string              `json:"postcode,omitempty"`
	TownOrCity     string              `json:"town_or_city"`
	StreetAddress1 string              `json:"street_address1"`
	StreetAddress2 string              `json:"street_address2,omitempty"`
	County         string              `json:"county,omitempty"`
	Date           string              `json:"date"`
	DeliveryCost   string              `json:"delivery_cost"`
	OrderTotal     string              `json:"order_total"`
	GrandTotal     string              `json:"grand_total"`
	Items          []orderItemResponse `json:"items"`
}

func toTotalsResponse(t *cart.Totals) totalsResponse {
	resp := totalsResponse{
		Lines:        make([]lineResponse, 0, len(t.Lines)),
		Total:        t.Total.StringFixed(2),
		DeliveryCost: t.Delivery.StringFixed(2),
		GrandTotal:   t.GrandTotal.StringFixed(2),
		ProductCount: t.ProductCount,
	}
	if t.FreeDeliveryDelta.IsPositive() {
		resp.FreeDeliveryDelta = t.FreeDeliveryDelta.StringFixed(2)
	}
	for _, l := range t.Lines {
		resp.Lines = append(resp.Lines, lineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			Size:      l.Size,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.StringFixed(2),
			LineTotal: l.Subtotal.StringFixed(2),
		})
	}
	return resp
}

func toOrderResponse(o *models.Order) orderResponse {
	resp := orderResponse{
		OrderNumber:    o.OrderNumber,
		FullName:       o.FullName,
		Email:          o.Email,
		PhoneNumber:    o.PhoneNumber,
		Country:        o.Country,
		Postcode:       deref(o.Postcode),
		TownOrCity:     o.TownOrCity,
		StreetAddress1: o.StreetAddress1,
		StreetAddress2: deref(o.StreetAddress2),
		County:         deref(o.County),
		Date:           o.Date.UTC().Format("2006-01-02T15:04:05Z"),
		DeliveryCost:   o.DeliveryCost.StringFixed(2),
		OrderTotal:     o.OrderTotal.StringFixed(2),
		GrandTotal:     o.GrandTotal.StringFixed(2),
		Items:          make([]orderItemResponse, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		item := orderItemResponse{
			ProductID:     it.ProductID.String(),
			ProductSize:   deref(it.ProductSize),
			Quantity:      it.Quantity,
			LineitemTotal: it.LineitemTotal.StringFixed(2),
		}
		if it.Product != nil {
			item.ProductName = it.Product.Name
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}

type profileResponse struct {
	DefaultPhoneNumber    string `json:"default_phone_number,omitempty"`
	DefaultCountry        string `json:"default_country,omitempty"`
	DefaultPostcode       string `json:"default_postcode,omitempty"`
	DefaultTownOrCity     string `json:"default_town_or_city,omitempty"`
	DefaultStreetAddress1 string `json:"default_street_address1,omitempty"`
	DefaultStreetAddress2 string `json:"default_street_address2,omitempty"`
	DefaultCounty         string `json:"default_county,omitempty"`
	EmailNotifications    bool   `json:"email_notifications"`
}

func toProfileResponse(p *models.UserProfile) profileResponse {
	return profileResponse{
		DefaultPhoneNumber:    deref(p.DefaultPhoneNumber),
		DefaultCountry:        deref(p.DefaultCountry),
		DefaultPostcode:       deref(p.DefaultPostcode),
		DefaultTownOrCity:     deref(p.DefaultTownOrCity),
		DefaultStreetAddress1: deref(p.DefaultStreetAddress1),
		DefaultStreetAddress2: deref(p.DefaultStreetAddress2),
		DefaultCounty:         deref(p.DefaultCounty),
		EmailNotifications:    p.EmailNotifications,
	}
}

type orderDetailsRequest struct {
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phone_number"`
	Country        string `json:"country"`
	Postcode       string `json:"postcode"`
	TownOrCity     string `json:"town_or_city"`
	StreetAddress1 string `json:"street_address1"`
	StreetAddress2 string `json:"street_address2"`
	County         string `json:"county"`
	SaveInfo       bool   `json:"save_info"`
}

func (r orderDetailsRequest) toDetails() service.OrderDetails {
	return service.OrderDetails{
		FullName:       r.FullName,
		Email:          r.Email,
		PhoneNumber:    r.PhoneNumber,
		Country:        r.Country,
		Postcode:       r.Postcode,
		TownOrCity:     r.TownOrCity,
		StreetAddress1: r.StreetAddress1,
		StreetAddress2: r.StreetAddress2,
		County:         r.County,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
