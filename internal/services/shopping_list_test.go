package services

import (
	"context"
	"testing"
)

func TestAggregateShoppingList(t *testing.T) {
	tests := []struct {
		name string
		rows []ShoppingRow
		want string
	}{
		{
			name: "empty cart renders heading only",
			rows: nil,
			want: "Shopping list for cooking:\n\n",
		},
		{
			name: "sums by name in first-seen order",
			rows: []ShoppingRow{
				{Name: "Salt", MeasurementUnit: "g", Amount: 5},
				{Name: "Flour", MeasurementUnit: "g", Amount: 200},
				{Name: "Salt", MeasurementUnit: "g", Amount: 3},
			},
			want: "Shopping list for cooking:\n\nSalt - 8 g\nFlour - 200 g\n",
		},
		{
			name: "single row",
			rows: []ShoppingRow{{Name: "Milk", MeasurementUnit: "ml", Amount: 250}},
			want: "Shopping list for cooking:\n\nMilk - 250 ml\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderShoppingList(AggregateShoppingList(tt.rows))
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAggregateDoesNotOverflowLargeTotals(t *testing.T) {
	rows := make([]ShoppingRow, 0, 100)
	for i := 0; i < 100; i++ {
		rows = append(rows, ShoppingRow{Name: "Water", MeasurementUnit: "ml", Amount: 32767})
	}
	items := AggregateShoppingList(rows)
	if len(items) != 1 || items[0].Total != 3276700 {
		t.Fatalf("items = %+v", items)
	}
}

func TestBuildShoppingListFromCart(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createUser(t, db, "alice")
	salt := createIngredient(t, db, "Salt", "g")
	saltAgain := createIngredient(t, db, "Salt", "g")
	eggs := createIngredient(t, db, "Eggs", "pcs")

	r1 := createRecipe(t, db, user.ID, "Omelette", map[uint]int{salt.ID: 5})
	r2 := createRecipe(t, db, user.ID, "Bread", map[uint]int{saltAgain.ID: 3})
	createRecipe(t, db, user.ID, "Not in cart", map[uint]int{eggs.ID: 12})

	cart := NewShoppingCart(db)
	for _, id := range []uint{r1.ID, r2.ID} {
		if err := cart.Add(ctx, user.ID, id); err != nil {
			t.Fatal(err)
		}
	}

	got, err := NewShoppingListService(db).Build(ctx, user.ID)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	want := "Shopping list for cooking:\n\nSalt - 8 g\n"
	if got != want {
		t.Fatalf("Build() = %q, want %q", got, want)
	}
}

func TestBuildShoppingListEmptyCart(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "alice")

	got, err := NewShoppingListService(db).Build(context.Background(), user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Shopping list for cooking:\n\n" {
		t.Fatalf("Build() = %q", got)
	}
}
