package pos

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go-sales-agent/internal/models"
)

// saleResponse is one page of the Sale endpoint. "Sale" is a bare object when
// exactly one record matches and an array otherwise.
type saleResponse struct {
	Attributes struct {
		Next  string `json:"next"`
		Count string `json:"count"`
	} `json:"@attributes"`
	Sales oneOrMany[sale] `json:"Sale"`
}

type sale struct {
	SaleID       string    `json:"saleID"`
	CompleteTime string    `json:"completeTime"`
	Voided       flexBool  `json:"voided"`
	Total        flexFloat `json:"total"`
	CalcSubtotal flexFloat `json:"calcSubtotal"`
	CustomerID   string    `json:"customerID"`
	Customer     *customer `json:"Customer"`
	SaleLines    saleLines `json:"SaleLines"`
}

type saleLines struct {
	SaleLine oneOrMany[saleLine] `json:"SaleLine"`
}

func (s *saleLines) UnmarshalJSON(data []byte) error {
	type plain saleLines
	return decodeObject(data, (*plain)(s))
}

type customer struct {
	CustomerID string `json:"customerID"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
}

func (c *customer) UnmarshalJSON(data []byte) error {
	type plain customer
	return decodeObject(data, (*plain)(c))
}

// decodeObject decodes data into v only when it is a JSON object; any other
// shape leaves v at its zero value.
func decodeObject(data []byte, v any) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil
	}
	return json.Unmarshal(data, v)
}

type saleLine struct {
	ItemID       string    `json:"itemID"`
	UnitQuantity flexFloat `json:"unitQuantity"`
	CalcSubtotal flexFloat `json:"calcSubtotal"`
	FifoCost     flexFloat `json:"fifoCost"`
	AvgCost      flexFloat `json:"avgCost"`
	Item         *struct {
		Description string `json:"description"`
	} `json:"Item"`
}

// oneOrMany accepts a JSON array, a single object, or nothing at all.
type oneOrMany[T any] []T

func (o *oneOrMany[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*o = nil
		return nil
	case data[0] == '[':
		var many []T
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		*o = many
		return nil
	case data[0] == '{':
		var one T
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*o = []T{one}
		return nil
	default:
		// An empty relation sometimes arrives as "".
		*o = nil
		return nil
	}
}

// flexFloat reads numbers that the POS may send either as JSON numbers or strings.
type flexFloat struct {
	Value float64
	Set   bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		*f = flexFloat{}
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*f = flexFloat{}
		return nil
	}
	*f = flexFloat{Value: v, Set: true}
	return nil
}

type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	raw := strings.ToLower(strings.Trim(strings.TrimSpace(string(data)), `"`))
	*b = flexBool(raw == "true" || raw == "1")
	return nil
}

// toTransaction converts a decoded sale. An unparseable completeTime leaves
// CompleteTime zero and is reported through err; the sale is still usable.
func (s sale) toTransaction() (txn models.Transaction, err error) {
	txn = models.Transaction{
		ID:       s.SaleID,
		Voided:   bool(s.Voided),
		Total:    s.Total.Value,
		Subtotal: s.CalcSubtotal.Value,
	}
	if t, perr := time.Parse(time.RFC3339, s.CompleteTime); perr == nil {
		txn.CompleteTime = t
	} else {
		err = perr
	}
	if s.Customer != nil && s.CustomerID != "0" {
		txn.Customer = &models.Customer{
			ID:        s.Customer.CustomerID,
			FirstName: s.Customer.FirstName,
			LastName:  s.Customer.LastName,
		}
	}

	txn.Lines = make([]models.LineItem, 0, len(s.SaleLines.SaleLine))
	for _, l := range s.SaleLines.SaleLine {
		txn.Lines = append(txn.Lines, l.toLineItem())
	}
	return txn, err
}

func (l saleLine) toLineItem() models.LineItem {
	unitCost := l.AvgCost.Value
	if l.FifoCost.Set {
		unitCost = l.FifoCost.Value
	}
	item := models.LineItem{
		ItemID:   l.ItemID,
		Quantity: l.UnitQuantity.Value,
		Subtotal: l.CalcSubtotal.Value,
		UnitCost: unitCost,
	}
	if l.Item != nil {
		item.Description = l.Item.Description
	}
	return item
}
