package storemock

import (
	"time"

	"github.com/google/uuid"
)

// seedNamespace — пространство имён для детерминированных UUID демо-данных.
var seedNamespace = uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8")

// SeedCustomerID возвращает стабильный UUID демо-покупателя по email.
func SeedCustomerID(email string) string {
	return uuid.NewSHA1(seedNamespace, []byte("customer:"+email)).String()
}

// SeedOrderID возвращает стабильный UUID демо-заказа.
func SeedOrderID(name string) string {
	return uuid.NewSHA1(seedNamespace, []byte("order:"+name)).String()
}

// NewSeededStore создаёт магазин с демо-каталогом, покупателями и заказами.
func NewSeededStore() *Store {
	s := NewStore()

	for _, p := range []Product{
		{SKU: "SKU123", Name: "Gaming Laptop", Category: "Computers", Price: 999, Stock: 5,
			Specs: "15.6in 165Hz display, RTX 4060, 16GB RAM, 1TB SSD"},
		{SKU: "SKU124", Name: "Ultrabook Pro 14", Category: "Computers", Price: 1299, Stock: 8,
			Specs: "14in OLED, 32GB RAM, 1TB SSD, 1.2kg"},
		{SKU: "SKU125", Name: "Office Desktop Tower", Category: "Computers", Price: 649, Stock: 12,
			Specs: "Core i5, 16GB RAM, 512GB SSD, Wi-Fi 6"},
		{SKU: "SKU200", Name: "27in 4K Monitor", Category: "Monitors", Price: 349, Stock: 20,
			Specs: "IPS, 60Hz, USB-C 65W power delivery"},
		{SKU: "SKU201", Name: "34in Curved Gaming Monitor", Category: "Monitors", Price: 499, Stock: 0,
			Specs: "VA ultrawide, 144Hz, 1ms"},
		{SKU: "SKU300", Name: "Color Laser Printer", Category: "Printers", Price: 279, Stock: 7,
			Specs: "duplex, wireless, 24ppm"},
		{SKU: "SKU400", Name: "Wireless Mouse", Category: "Accessories", Price: 29, Stock: 150,
			Specs: "2.4GHz wireless and Bluetooth, 70 day battery"},
		{SKU: "SKU401", Name: "Mechanical Keyboard", Category: "Accessories", Price: 89, Stock: 40,
			Specs: "hot-swap switches, RGB, wireless"},
	} {
		s.AddProduct(p)
	}

	alice := s.AddCustomer(Customer{
		ID: SeedCustomerID("alice@example.com"), Name: "Alice Johnson", Email: "alice@example.com",
		PIN: "1234", Address: "12 Elm Street, Springfield",
	})
	bob := s.AddCustomer(Customer{
		ID: SeedCustomerID("bob@example.com"), Name: "Bob Smith", Email: "bob@example.com",
		PIN: "9876", Address: "400 Harbor Road, Portsmouth",
	})

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s.AddOrder(Order{
		ID: SeedOrderID("alice-1"), CustomerID: alice.ID, Status: StatusFulfilled, CreatedAt: base,
		Items: []OrderItem{{SKU: "SKU123", Quantity: 1, UnitPrice: 999}, {SKU: "SKU400", Quantity: 1, UnitPrice: 29}},
	})
	s.AddOrder(Order{
		ID: SeedOrderID("alice-2"), CustomerID: alice.ID, Status: StatusPending, CreatedAt: base.AddDate(0, 1, 0),
		Items: []OrderItem{{SKU: "SKU200", Quantity: 2, UnitPrice: 349}},
	})
	s.AddOrder(Order{
		ID: SeedOrderID("bob-1"), CustomerID: bob.ID, Status: StatusCancelled, CreatedAt: base.AddDate(0, 0, 10),
		Items: []OrderItem{{SKU: "SKU300", Quantity: 1, UnitPrice: 279}},
	})

	return s
}
