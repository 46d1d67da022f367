package cart

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/mmdatafocus/shop_backend/sessions"
	"github.com/mmdatafocus/shop_backend/utils"
	"github.com/shopspring/decimal"
)

// SessionKey is where the cart lives inside the session.
const SessionKey = "cart"

type Product interface {
	GetId() int
	GetPrice() decimal.Decimal
}

// Item holds the quantity and the unit price captured on the first add.
type Item struct {
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

// Items maps product id (as string) to its cart entry.
type Items map[string]*Item

type Line struct {
	ProductId int
	Quantity  int
	Price     decimal.Decimal
}

type Cart struct {
	session *sessions.Session
	items   Items
}

// New returns the session's cart, creating an empty one when the session has none.
func New(sess *sessions.Session) (*Cart, error) {
	items, err := load(sess)
	if err != nil {
		return nil, err
	}
	return &Cart{session: sess, items: items}, nil
}

func load(sess *sessions.Session) (Items, error) {
	value, ok := sess.Get(SessionKey)
	if !ok {
		items := Items{}
		sess.Set(SessionKey, items)
		return items, nil
	}
	switch v := value.(type) {
	case Items:
		return v, nil
	case json.RawMessage:
		items := Items{}
		if err := json.Unmarshal(v, &items); err != nil {
			return nil, err
		}
		if items == nil {
			items = Items{}
		}
		for key, item := range items {
			if item == nil {
				delete(items, key)
				continue
			}
			if _, err := decimal.NewFromString(item.Price); err != nil {
				return nil, fmt.Errorf("cart item %s: invalid price %q: %w", key, item.Price, err)
			}
		}
		// keep the decoded map in the session so later reads share it
		sess.Set(SessionKey, items)
		return items, nil
	default:
		items := Items{}
		sess.Set(SessionKey, items)
		return items, nil
	}
}

// attach re-registers the cart in the session after Clear.
func (c *Cart) attach() error {
	if c.items != nil {
		return nil
	}
	items, err := load(c.session)
	if err != nil {
		return err
	}
	c.items = items
	return nil
}

func productKey(product Product) string {
	return strconv.Itoa(product.GetId())
}

// Items is the mapping stored in the session, not a copy.
func (c *Cart) Items() Items {
	if err := c.attach(); err != nil {
		return Items{}
	}
	return c.items
}

// Add inserts the product or increments its quantity. The price of an existing entry is kept.
func (c *Cart) Add(product Product, quantity int) error {
	if quantity < 1 {
		return utils.NewValidationError("quantity", "quantity has to be at least 1")
	}
	if err := c.attach(); err != nil {
		return err
	}
	key := productKey(product)
	if item, ok := c.items[key]; ok {
		item.Quantity += quantity
	} else {
		c.items[key] = &Item{Quantity: quantity, Price: product.GetPrice().StringFixed(2)}
	}
	c.session.MarkModified()
	return nil
}

// Subtract lowers the quantity only when 0 < quantity < current; anything else is a no-op.
func (c *Cart) Subtract(product Product, quantity int) {
	item, ok := c.items[productKey(product)]
	if !ok || quantity <= 0 || quantity >= item.Quantity {
		return
	}
	item.Quantity -= quantity
	c.session.MarkModified()
}

func (c *Cart) Remove(product Product) {
	key := productKey(product)
	if _, ok := c.items[key]; !ok {
		return
	}
	delete(c.items, key)
	c.session.MarkModified()
}

// Len is the total quantity across entries.
func (c *Cart) Len() int {
	count := 0
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Cost())
	}
	return total
}

// Clear drops the cart from the session; a later Add starts a fresh one.
func (c *Cart) Clear() {
	c.session.Delete(SessionKey)
	c.items = nil
}

// Lines lists the entries ordered by product id.
func (c *Cart) Lines() []Line {
	lines := make([]Line, 0, len(c.items))
	for key, item := range c.items {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		lines = append(lines, Line{ProductId: id, Quantity: item.Quantity, Price: item.UnitPrice()})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductId < lines[j].ProductId })
	return lines
}

func (item Item) UnitPrice() decimal.Decimal {
	price, err := decimal.NewFromString(item.Price)
	if err != nil {
		return decimal.Zero
	}
	return price
}

func (item Item) Cost() decimal.Decimal {
	return item.UnitPrice().Mul(decimal.NewFromInt(int64(item.Quantity)))
}
