package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/ahmetcoskunkizilkaya/foodgram/internal/metrics"
	"gorm.io/gorm"
)

const shoppingListHeading = "Shopping list for cooking:"

// ShoppingRow is one recipe-ingredient quantity reachable from a cart.
type ShoppingRow struct {
	Name            string
	MeasurementUnit string
	Amount          int
}

// ShoppingItem is one consolidated line of the shopping list.
type ShoppingItem struct {
	Name            string
	MeasurementUnit string
	Total           int64
}

type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Rows returns every ingredient quantity of every recipe in the user's cart,
// ordered by cart insertion and then by recipe ingredient order.
func (s *ShoppingListService) Rows(ctx context.Context, userID uint) ([]ShoppingRow, error) {
	var rows []ShoppingRow
	err := s.db.WithContext(ctx).
		Table("shopping_carts AS sc").
		Select("i.name AS name, i.measurement_unit AS measurement_unit, ri.amount AS amount").
		Joins("JOIN recipe_ingredients AS ri ON ri.recipe_id = sc.recipe_id").
		Joins("JOIN ingredients AS i ON i.id = ri.ingredient_id").
		Where("sc.user_id = ?", userID).
		Order("sc.id, ri.id").
		Scan(&rows).Error
	return rows, err
}

// Build renders the user's shopping list as plain text.
func (s *ShoppingListService) Build(ctx context.Context, userID uint) (string, error) {
	rows, err := s.Rows(ctx, userID)
	if err != nil {
		return "", err
	}
	metrics.RecordShoppingListDownload()
	return RenderShoppingList(AggregateShoppingList(rows)), nil
}

// AggregateShoppingList sums amounts per ingredient name, keeping the order in
// which names first appear. The unit of the first row for a name is used.
func AggregateShoppingList(rows []ShoppingRow) []ShoppingItem {
	index := make(map[string]int, len(rows))
	items := make([]ShoppingItem, 0, len(rows))
	for _, r := range rows {
		if i, ok := index[r.Name]; ok {
			items[i].Total += int64(r.Amount)
			continue
		}
		index[r.Name] = len(items)
		items = append(items, ShoppingItem{
			Name:            r.Name,
			MeasurementUnit: r.MeasurementUnit,
			Total:           int64(r.Amount),
		})
	}
	return items
}

func RenderShoppingList(items []ShoppingItem) string {
	var b strings.Builder
	b.WriteString(shoppingListHeading)
	b.WriteString("\n\n")
	for _, it := range items {
		b.WriteString(it.Name)
		b.WriteString(" - ")
		b.WriteString(strconv.FormatInt(it.Total, 10))
		b.WriteByte(' ')
		b.WriteString(it.MeasurementUnit)
		b.WriteByte('\n')
	}
	return b.String()
}
