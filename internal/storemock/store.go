// Package storemock — демо-магазин в памяти, отдаваемый как MCP streamable HTTP endpoint.
//
// Используется для локальных end-to-end запусков и в тестах.
package storemock

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidPIN        = errors.New("invalid email or PIN")
	ErrNotVerified       = errors.New("customer is not verified, call verify_customer_pin first")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrEmptyOrder        = errors.New("order must contain at least one item")
)

// Статусы заказов.
const (
	StatusPending   = "pending"
	StatusFulfilled = "fulfilled"
	StatusCancelled = "cancelled"
)

type Product struct {
	SKU      string
	Name     string
	Category string
	Price    float64
	Stock    int
	Specs    string
}

type Customer struct {
	ID      string
	Name    string
	Email   string
	PIN     string
	Address string
}

type OrderItem struct {
	SKU       string
	Quantity  int
	UnitPrice float64
}

type Order struct {
	ID         string
	CustomerID string
	Status     string
	Items      []OrderItem
	CreatedAt  time.Time
}

// Total возвращает сумму заказа.
func (o Order) Total() float64 {
	var total float64
	for _, it := range o.Items {
		total += it.UnitPrice * float64(it.Quantity)
	}
	return total
}

// Store — потокобезопасное хранилище магазина.
type Store struct {
	mu        sync.RWMutex
	products  map[string]Product
	customers map[string]Customer
	orders    map[string]Order
	verified  map[string]bool
	now       func() time.Time
}

// NewStore создаёт пустой магазин.
func NewStore() *Store {
	return &Store{
		products:  make(map[string]Product),
		customers: make(map[string]Customer),
		orders:    make(map[string]Order),
		verified:  make(map[string]bool),
		now:       time.Now,
	}
}

func (s *Store) AddProduct(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.SKU] = p
}

// AddCustomer добавляет покупателя. Пустой ID генерируется.
func (s *Store) AddCustomer(c Customer) Customer {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.ID] = c
	return c
}

func (s *Store) AddOrder(o Order) Order {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
	return o
}

// ListProducts возвращает товары категории (без учёта регистра), отсортированные по SKU.
// Пустая категория означает все товары.
func (s *Store) ListProducts(category string) []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Product
	for _, p := range s.products {
		if category == "" || strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	sortProducts(out)
	return out
}

// SearchProducts ищет товары, в имени, категории или характеристиках
// которых есть все слова запроса.
func (s *Store) SearchProducts(query string) []Product {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Product
	for _, p := range s.products {
		haystack := strings.ToLower(p.Name + " " + p.Category + " " + p.Specs)
		matched := true
		for _, w := range words {
			if !strings.Contains(haystack, w) {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, p)
		}
	}
	sortProducts(out)
	return out
}

func (s *Store) Product(sku string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[strings.ToUpper(strings.TrimSpace(sku))]
	if !ok {
		return Product{}, fmt.Errorf("product %s: %w", sku, ErrNotFound)
	}
	return p, nil
}

func (s *Store) Customer(id string) (Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return Customer{}, fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	return c, nil
}

// VerifyPIN проверяет email и PIN. Успешная проверка разрешает покупателю заказы.
func (s *Store) VerifyPIN(email, pin string) (Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.customers {
		if strings.EqualFold(c.Email, strings.TrimSpace(email)) && c.PIN == pin {
			s.verified[c.ID] = true
			return c, nil
		}
	}
	return Customer{}, ErrInvalidPIN
}

// Orders возвращает заказы покупателя, новые первыми. Пустой status означает все статусы.
func (s *Store) Orders(customerID, status string) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.customers[customerID]; !ok {
		return nil, fmt.Errorf("customer %s: %w", customerID, ErrNotFound)
	}

	var out []Order
	for _, o := range s.orders {
		if o.CustomerID != customerID {
			continue
		}
		if status != "" && !strings.EqualFold(o.Status, status) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) Order(id string) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return Order{}, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return o, nil
}

// CreateOrder оформляет заказ проверенного покупателя и списывает остатки.
//
// Все строки проверяются до списания: заказ создаётся целиком или не создаётся.
func (s *Store) CreateOrder(customerID string, items []OrderItem) (Order, error) {
	if len(items) == 0 {
		return Order{}, ErrEmptyOrder
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[customerID]; !ok {
		return Order{}, fmt.Errorf("customer %s: %w", customerID, ErrNotFound)
	}
	if !s.verified[customerID] {
		return Order{}, ErrNotVerified
	}

	need := make(map[string]int, len(items))
	lines := make([]OrderItem, 0, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			return Order{}, fmt.Errorf("%s: %w", it.SKU, ErrInvalidQuantity)
		}
		sku := strings.ToUpper(strings.TrimSpace(it.SKU))
		p, ok := s.products[sku]
		if !ok {
			return Order{}, fmt.Errorf("product %s: %w", it.SKU, ErrNotFound)
		}
		need[sku] += it.Quantity
		if need[sku] > p.Stock {
			return Order{}, fmt.Errorf("%s: requested %d, %d in stock: %w", sku, need[sku], p.Stock, ErrInsufficientStock)
		}
		lines = append(lines, OrderItem{SKU: sku, Quantity: it.Quantity, UnitPrice: p.Price})
	}

	for sku, qty := range need {
		p := s.products[sku]
		p.Stock -= qty
		s.products[sku] = p
	}

	order := Order{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Status:     StatusPending,
		Items:      lines,
		CreatedAt:  s.now(),
	}
	s.orders[order.ID] = order
	return order, nil
}

func sortProducts(list []Product) {
	sort.Slice(list, func(i, j int) bool { return list[i].SKU < list[j].SKU })
}
