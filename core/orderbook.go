package core

// OrderBook field ids (spec.md §3).
const (
	orderBookFieldOrders         uint16 = 0
	orderBookFieldOrderIDCounter uint16 = 1
)

// orderBookAddress is the OrderBook contract's own synthetic address;
// escrowed order collateral is held there.
var orderBookAddress = ContractAddress(ContractIDOrderBook)

// OrderType distinguishes a limit buy from a limit sell (spec.md §3).
type OrderType uint8

const (
	OrderTypeBuy OrderType = iota
	OrderTypeSell
)

// Order is a resting limit order in the base token (spec.md §3).
type Order struct {
	ID     uint64
	Type   OrderType
	Sender Address
	Token  Address
	Amount uint64
	Price  uint64
}

func getOrders(db *Db) []Order {
	return GetValue[[]Order](db, ContractIDOrderBook, orderBookFieldOrders)
}

func setOrders(db *Db, orders []Order) {
	SetValue(db, ContractIDOrderBook, orderBookFieldOrders, orders)
}

// Orders returns every open order (spec.md §3).
func Orders(db *Db) []Order {
	return getOrders(db)
}

func nextOrderID(db *Db) uint64 {
	id := GetValue[uint64](db, ContractIDOrderBook, orderBookFieldOrderIDCounter)
	SetValue(db, ContractIDOrderBook, orderBookFieldOrderIDCounter, id+1)
	return id
}

func findOrder(db *Db, orderID uint64) (Order, int, bool) {
	orders := getOrders(db)
	for i, o := range orders {
		if o.ID == orderID {
			return o, i, true
		}
	}
	return Order{}, -1, false
}

// escrowAmount is the amount an order holds against the book: the base
// token cost for a buy, the token itself for a sell (spec.md §4.F).
func escrowAmount(o Order) (token Address, amount uint64) {
	if o.Type == OrderTypeBuy {
		return BaseToken, mulDiv(o.Amount, o.Price, BaseFactor)
	}
	return o.Token, o.Amount
}

// CreateOrder opens a new limit order, escrowing the offered asset from
// sender (spec.md §4.F).
func CreateOrder(db *Db, sender Address, orderType OrderType, token Address, amount, price uint64) (uint64, error) {
	o := Order{Type: orderType, Sender: sender, Token: token, Amount: amount, Price: price}
	escrowToken, escrowAmt := escrowAmount(o)
	if err := Transfer(db, sender, orderBookAddress, escrowAmt, escrowToken); err != nil {
		return 0, err
	}
	o.ID = nextOrderID(db)
	setOrders(db, append(getOrders(db), o))
	return o.ID, nil
}

// CancelOrder removes orderID and refunds its escrow to the original
// sender; only the order's own sender may cancel it (spec.md §4.F).
func CancelOrder(db *Db, sender Address, orderID uint64) error {
	o, idx, ok := findOrder(db, orderID)
	if !ok {
		return ErrOrderNotFound
	}
	if o.Sender != sender {
		return ErrNotAuthorized
	}
	escrowToken, escrowAmt := escrowAmount(o)
	if err := Transfer(db, orderBookAddress, o.Sender, escrowAmt, escrowToken); err != nil {
		return err
	}
	removeOrderAt(db, idx)
	return nil
}

// FillOrder has filler take the other side of orderID: filler pays the
// escrowed asset's counterpart and receives the escrow (spec.md §4.F).
func FillOrder(db *Db, filler Address, orderID uint64) error {
	o, idx, ok := findOrder(db, orderID)
	if !ok {
		return ErrOrderNotFound
	}
	escrowToken, escrowAmt := escrowAmount(o)
	var counterToken Address
	var counterAmt uint64
	if o.Type == OrderTypeBuy {
		counterToken, counterAmt = o.Token, o.Amount
	} else {
		counterToken, counterAmt = BaseToken, mulDiv(o.Amount, o.Price, BaseFactor)
	}
	if err := Transfer(db, filler, o.Sender, counterAmt, counterToken); err != nil {
		return err
	}
	if err := Transfer(db, orderBookAddress, filler, escrowAmt, escrowToken); err != nil {
		return err
	}
	removeOrderAt(db, idx)
	return nil
}

func removeOrderAt(db *Db, idx int) {
	orders := getOrders(db)
	orders = append(orders[:idx], orders[idx+1:]...)
	setOrders(db, orders)
}
