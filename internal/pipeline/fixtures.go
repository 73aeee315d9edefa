package pipeline

import (
	"context"

	"github.com/shopspring/decimal"

	"sales-kpi-lab/internal/domain"
	"sales-kpi-lab/internal/idhash"
	"sales-kpi-lab/internal/storage"
)

// LoadFixtures populates stores with demo data for report demonstration.
// Periods 1998, 1999 and 2001 carry enough overlap that a handful of
// customers stay in the top ranks across all three.
func LoadFixtures(
	ctx context.Context,
	saleStore storage.SaleStore,
	customerStore storage.CustomerStore,
) error {
	if err := loadCustomers(ctx, customerStore); err != nil {
		return err
	}
	return loadSales(ctx, saleStore)
}

func loadCustomers(ctx context.Context, store storage.CustomerStore) error {
	customers := []*domain.Customer{
		{CustomerID: "cust_001", Name: "Atelier Nord", City: "Hamburg", FirstChannel: domain.ChannelOnline, FirstSeen: 883612800000}, // 1998-01-01
		{CustomerID: "cust_002", Name: "Baltic Trade", City: "Gdansk", FirstChannel: domain.ChannelOnline, FirstSeen: 883699200000},  // 1998-01-02
		{CustomerID: "cust_003", Name: "Cobalt Works", City: "Lyon", FirstChannel: domain.ChannelOnline, FirstSeen: 883785600000},    // 1998-01-03
		{CustomerID: "cust_004", Name: "Delta Retail", City: "Madrid", FirstChannel: domain.ChannelStore, FirstSeen: 884736000000},   // 1998-01-14
		{CustomerID: "cust_005", Name: "Everlane Sud", City: "Milano", FirstChannel: domain.ChannelStore, FirstSeen: 917481600000},   // 1999-01-28
		{CustomerID: "cust_006", Name: "Fjord Supply", City: "Bergen", FirstChannel: domain.ChannelOnline, FirstSeen: 978307200000},  // 2001-01-01
	}

	for _, c := range customers {
		if err := store.Insert(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

type fixtureSale struct {
	customerID string
	channel    domain.Channel
	period     int
	soldAt     int64
	amount     string
}

func loadSales(ctx context.Context, store storage.SaleStore) error {
	// cust_001 and cust_002 lead ONLINE in all three periods; cust_003
	// drops out of the top in 1999; cust_004..006 fill out the field.
	fixtures := []fixtureSale{
		// 1998 ONLINE
		{"cust_001", domain.ChannelOnline, 1998, 883612800000, "1200.00"},
		{"cust_001", domain.ChannelOnline, 1998, 886291200000, "300.00"},
		{"cust_002", domain.ChannelOnline, 1998, 883699200000, "1100.00"},
		{"cust_003", domain.ChannelOnline, 1998, 883785600000, "1000.00"},
		{"cust_004", domain.ChannelOnline, 1998, 888710400000, "200.00"},

		// 1999 ONLINE
		{"cust_001", domain.ChannelOnline, 1999, 915148800000, "900.00"},
		{"cust_002", domain.ChannelOnline, 1999, 915235200000, "850.00"},
		{"cust_004", domain.ChannelOnline, 1999, 915321600000, "800.00"},
		{"cust_003", domain.ChannelOnline, 1999, 917913600000, "100.00"},
		{"cust_005", domain.ChannelOnline, 1999, 920332800000, "50.00"},

		// 2001 ONLINE
		{"cust_001", domain.ChannelOnline, 2001, 978307200000, "700.00"},
		{"cust_002", domain.ChannelOnline, 2001, 978393600000, "700.00"},
		{"cust_003", domain.ChannelOnline, 2001, 978480000000, "650.00"},
		{"cust_006", domain.ChannelOnline, 2001, 981158400000, "400.00"},

		// STORE channel, only two periods covered. cust_004 and cust_005
		// enter through STORE before their first ONLINE sale.
		{"cust_004", domain.ChannelStore, 1998, 884736000000, "500.00"},
		{"cust_004", domain.ChannelStore, 1999, 920937600000, "450.00"},
		{"cust_005", domain.ChannelStore, 1999, 917481600000, "300.00"},
		{"cust_005", domain.ChannelStore, 2001, 981244800000, "250.00"},
	}

	for _, f := range fixtures {
		amount := decimal.RequireFromString(f.amount)
		sale := &domain.SaleRecord{
			SaleID:     idhash.ComputeSaleID(f.customerID, f.channel, f.period, f.soldAt, amount.String()),
			CustomerID: f.customerID,
			Channel:    f.channel,
			Period:     f.period,
			SoldAt:     f.soldAt,
			Amount:     amount,
			Currency:   "USD",
		}
		if err := store.Insert(ctx, sale); err != nil {
			return err
		}
	}
	return nil
}
