package domain

// Customer holds display attributes for a sales entity.
type Customer struct {
	CustomerID   string // stable external identifier
	Name         string
	City         string
	FirstChannel Channel // channel of the first recorded sale
	FirstSeen    int64   // Unix ms of first recorded sale
}
