package oanda

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request and response bodies of the v20 REST API. Only the fields the bridge
// reads or writes are declared.

type priceDetails struct {
	Price string `json:"price"`
}

type marketOrder struct {
	Type             string        `json:"type"`
	Instrument       string        `json:"instrument"`
	Units            string        `json:"units"`
	TimeInForce      string        `json:"timeInForce"`
	PositionFill     string        `json:"positionFill"`
	StopLossOnFill   *priceDetails `json:"stopLossOnFill,omitempty"`
	TakeProfitOnFill *priceDetails `json:"takeProfitOnFill,omitempty"`
}

type marketOrderRequest struct {
	Order marketOrder `json:"order"`
}

type stopLossOrder struct {
	Type        string `json:"type"`
	TradeID     string `json:"tradeID"`
	Price       string `json:"price"`
	TimeInForce string `json:"timeInForce"`
}

type stopLossOrderRequest struct {
	Order stopLossOrder `json:"order"`
}

type transaction struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	OrderID      string `json:"orderID"`
	TradeID      string `json:"tradeID"`
	Reason       string `json:"reason"`
	RejectReason string `json:"rejectReason"`
	TradeOpened  *struct {
		TradeID string `json:"tradeID"`
	} `json:"tradeOpened"`
}

type orderCreateResponse struct {
	OrderCreateTransaction *transaction `json:"orderCreateTransaction"`
	OrderFillTransaction   *transaction `json:"orderFillTransaction"`
	OrderCancelTransaction *transaction `json:"orderCancelTransaction"`
	OrderRejectTransaction *transaction `json:"orderRejectTransaction"`
	LastTransactionID      string       `json:"lastTransactionID"`
	ErrorCode              string       `json:"errorCode"`
	ErrorMessage           string       `json:"errorMessage"`
}

type openTrade struct {
	ID           string          `json:"id"`
	Instrument   string          `json:"instrument"`
	Price        decimal.Decimal `json:"price"`
	OpenTime     time.Time       `json:"openTime"`
	CurrentUnits decimal.Decimal `json:"currentUnits"`
	State        string          `json:"state"`
}

type openTradesResponse struct {
	Trades            []openTrade `json:"trades"`
	LastTransactionID string      `json:"lastTransactionID"`
}

type errorResponse struct {
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}
