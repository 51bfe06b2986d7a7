package storemock

import (
	"fmt"
	"strings"
)

// Форматы ответов инструментов: короткий текст, который модель пересказывает пользователю.

func formatProducts(products []Product) string {
	lines := make([]string, 0, len(products))
	for _, p := range products {
		lines = append(lines, formatProduct(p))
	}
	return strings.Join(lines, "\n")
}

// formatProduct — одна строка вида "SKU123: Gaming Laptop, $999, 5 in stock".
func formatProduct(p Product) string {
	stock := fmt.Sprintf("%d in stock", p.Stock)
	if p.Stock == 0 {
		stock = "out of stock"
	}
	return fmt.Sprintf("%s: %s, %s, %s", p.SKU, p.Name, formatPrice(p.Price), stock)
}

func formatProductDetails(p Product) string {
	return fmt.Sprintf("%s\nCategory: %s\nSpecs: %s", formatProduct(p), p.Category, p.Specs)
}

func formatCustomer(c Customer) string {
	return fmt.Sprintf("%s <%s>\nAddress: %s\nCustomer ID: %s", c.Name, c.Email, c.Address, c.ID)
}

func formatOrderSummary(o Order) string {
	return fmt.Sprintf("%s: %s, %d item(s), total %s, placed %s",
		o.ID, o.Status, len(o.Items), formatPrice(o.Total()), o.CreatedAt.Format("2006-01-02"))
}

func formatOrderDetails(o Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order %s (%s), placed %s\n", o.ID, o.Status, o.CreatedAt.Format("2006-01-02"))
	for _, it := range o.Items {
		fmt.Fprintf(&b, "- %s x%d @ %s\n", it.SKU, it.Quantity, formatPrice(it.UnitPrice))
	}
	fmt.Fprintf(&b, "Total: %s", formatPrice(o.Total()))
	return b.String()
}

// formatPrice печатает целые суммы без копеек: $999, $12.50.
func formatPrice(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("$%d", int64(v))
	}
	return fmt.Sprintf("$%.2f", v)
}
