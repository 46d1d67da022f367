package models

import (
	"errors"
	"strings"
)

type OrderStatusType string

const (
	OrderStatusCreated   OrderStatusType = "C"
	OrderStatusAccepted  OrderStatusType = "A"
	OrderStatusSent      OrderStatusType = "S"
	OrderStatusDelivered OrderStatusType = "D"
	OrderStatusClosed    OrderStatusType = "L"
	OrderStatusCancelled OrderStatusType = "X"
)

var orderStatusNames = map[OrderStatusType]string{
	OrderStatusCreated:   "Created",
	OrderStatusAccepted:  "Accepted",
	OrderStatusSent:      "Sent",
	OrderStatusDelivered: "Delivered",
	OrderStatusClosed:    "Closed",
	OrderStatusCancelled: "Cancelled",
}

// TerminalOrderStatuses end an order's lifecycle; nothing may be appended after them.
var TerminalOrderStatuses = []OrderStatusType{OrderStatusClosed, OrderStatusCancelled}

func (s OrderStatusType) IsValid() bool {
	_, ok := orderStatusNames[s]
	return ok
}

func (s OrderStatusType) IsTerminal() bool {
	return s == OrderStatusClosed || s == OrderStatusCancelled
}

// Name is the display name, e.g. "Delivered".
func (s OrderStatusType) Name() string {
	return orderStatusNames[s]
}

// ParseOrderStatus accepts either the one-letter code ("D") or the name ("delivered").
func ParseOrderStatus(raw string) (OrderStatusType, error) {
	str := strings.TrimSpace(raw)
	if s := OrderStatusType(strings.ToUpper(str)); s.IsValid() {
		return s, nil
	}
	for code, name := range orderStatusNames {
		if strings.EqualFold(name, str) {
			return code, nil
		}
	}
	return "", errors.New("invalid order status: " + raw)
}
